package google

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Error types for Google Calendar API responses.
var (
	// ErrUnauthorised indicates the access token is invalid or expired.
	ErrUnauthorised = errors.New("google: unauthorised")

	// ErrForbidden indicates the user lacks permission for the calendar.
	ErrForbidden = errors.New("google: forbidden")

	// ErrNotFound indicates the requested event or calendar does not exist.
	ErrNotFound = errors.New("google: not found")

	// ErrRateLimited indicates the request was throttled.
	ErrRateLimited = errors.New("google: rate limited")

	// ErrServerError indicates a server-side error from the Calendar API.
	ErrServerError = errors.New("google: server error")
)

// WrapError converts a Calendar API error into an appropriate sentinel,
// preserving the original error for context.
func WrapError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Code {
	case http.StatusUnauthorized:
		return errors.Join(ErrUnauthorised, err)
	case http.StatusForbidden:
		return errors.Join(ErrForbidden, err)
	case http.StatusNotFound:
		return errors.Join(ErrNotFound, err)
	case http.StatusTooManyRequests:
		return errors.Join(ErrRateLimited, err)
	default:
		if apiErr.Code >= 500 {
			return errors.Join(ErrServerError, err)
		}
		return err
	}
}

// IsUnauthorized checks whether the error is an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized
}

// IsRateLimited checks whether the error is a quota rejection.
func IsRateLimited(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests
}
