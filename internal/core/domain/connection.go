package domain

import "time"

// CalendarConnection is a tenant's stored OAuth link to one external calendar
// provider. Connections are addressed by the compound key (TenantID, Provider);
// a tenant may hold one connection per provider.
//
// Connections are created by the OAuth-callback collaborator. The token
// manager mutates AccessToken and TokenExpiry in place on refresh.
type CalendarConnection struct {
	TenantID           string
	Provider           ProviderType
	ExternalCalendarID string
	AccessToken        string
	RefreshToken       string
	TokenExpiry        time.Time
	IsActive           bool

	// Optional per-connection OAuth client credentials. When empty, the
	// process-wide credentials for the provider apply.
	ClientID     string
	ClientSecret string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenExpiresWithin reports whether the access token expires within the given
// margin of now (or already has). Used to decide when a refresh is required.
func (c *CalendarConnection) TokenExpiresWithin(margin time.Duration, now time.Time) bool {
	return !c.TokenExpiry.Add(-margin).After(now)
}
