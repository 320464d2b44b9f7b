package domain

import "errors"

// Sentinel errors shared across the core and its adapters.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAppointmentNotFound indicates the appointment being synced does not
	// exist in the booking domain. This is the only error that aborts a whole
	// sync call rather than a single connection.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrNotConnected indicates the tenant has no active connection for the
	// requested provider.
	ErrNotConnected = errors.New("calendar not connected")

	// ErrMissingRefreshToken indicates a token refresh is required but the
	// connection holds no refresh token.
	ErrMissingRefreshToken = errors.New("missing refresh token")

	// ErrMissingCredentials indicates no OAuth client credentials could be
	// resolved for a token refresh, neither on the connection nor process-wide.
	ErrMissingCredentials = errors.New("missing oauth client credentials")

	// ErrRefreshFailed indicates the provider's token endpoint rejected the
	// refresh request or was unreachable.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrProviderAPI indicates a provider calendar API call failed.
	ErrProviderAPI = errors.New("provider api error")

	// ErrUnsupportedProvider indicates a connection references a provider with
	// no registered adapter.
	ErrUnsupportedProvider = errors.New("unsupported provider")
)
