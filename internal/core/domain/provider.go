package domain

// ProviderType identifies an external calendar provider.
type ProviderType string

const (
	// ProviderGoogle is Google Calendar (v3 REST API).
	ProviderGoogle ProviderType = "google"
	// ProviderMicrosoft is Microsoft 365 calendars via Microsoft Graph.
	ProviderMicrosoft ProviderType = "microsoft"
)

// Valid reports whether the provider is one of the supported types.
func (p ProviderType) Valid() bool {
	return p == ProviderGoogle || p == ProviderMicrosoft
}
