package driven

import (
	"context"
	"time"

	"github.com/bookline/calsync/internal/core/domain"
)

// TokenProvider hands out a currently valid access token for a tenant's
// provider connection, refreshing it against the provider's token endpoint
// when it is expired or near expiry.
type TokenProvider interface {
	// GetValidAccessToken returns a usable bearer token. Fails with
	// domain.ErrNotConnected, domain.ErrMissingRefreshToken,
	// domain.ErrMissingCredentials or domain.ErrRefreshFailed.
	GetValidAccessToken(ctx context.Context, tenantID string, provider domain.ProviderType) (string, error)
}

// TokenResponse is the decoded body of an OAuth2 token-endpoint response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`

	// Expiry is computed from ExpiresIn after decoding.
	Expiry time.Time `json:"-"`
}

// TokenRefresher performs the provider-specific refresh-token grant.
// Each connector package contributes one implementation; the token manager
// resolves the refresher per provider once at construction.
type TokenRefresher interface {
	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, clientID, clientSecret, refreshToken string) (*TokenResponse, error)
}
