// Package auth manages the OAuth token lifecycle for tenant calendar
// connections: it hands out currently valid access tokens and refreshes
// expired ones against the provider's token endpoint.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/bookline/calsync/internal/core/domain"
	"github.com/bookline/calsync/internal/core/ports/driven"
	"github.com/bookline/calsync/internal/logger"
)

// refreshMargin is how long before expiry a token is already treated as
// expired, so a token is never handed out that dies mid-request.
const refreshMargin = 5 * time.Minute

// defaultTokenLifetime is assumed when the token endpoint omits expires_in.
const defaultTokenLifetime = time.Hour

// Ensure TokenManager implements the interface.
var _ driven.TokenProvider = (*TokenManager)(nil)

// CredentialsSource resolves process-wide OAuth client credentials for a
// provider, used when a connection stores none of its own.
type CredentialsSource interface {
	Credentials(provider domain.ProviderType) (clientID, clientSecret string)
}

// TokenManager returns valid access tokens for tenant connections, refreshing
// and persisting them as needed. Refreshers are resolved per provider once at
// construction.
//
// Concurrent refreshes for the same connection may race; both outcomes are
// independently valid tokens, so no locking is used.
type TokenManager struct {
	connections driven.ConnectionRegistry
	refreshers  map[domain.ProviderType]driven.TokenRefresher
	credentials CredentialsSource
	now         func() time.Time
}

// NewTokenManager creates a token manager with one refresher per supported
// provider.
func NewTokenManager(
	connections driven.ConnectionRegistry,
	refreshers map[domain.ProviderType]driven.TokenRefresher,
	credentials CredentialsSource,
) *TokenManager {
	return &TokenManager{
		connections: connections,
		refreshers:  refreshers,
		credentials: credentials,
		now:         time.Now,
	}
}

// GetValidAccessToken returns a usable bearer token for (tenant, provider).
// A token not near expiry is returned as stored with zero network calls.
func (m *TokenManager) GetValidAccessToken(
	ctx context.Context, tenantID string, provider domain.ProviderType,
) (string, error) {
	conn, err := m.connections.GetConnection(ctx, tenantID, provider)
	if err != nil {
		return "", fmt.Errorf("%w: tenant %s has no %s connection", domain.ErrNotConnected, tenantID, provider)
	}
	if !conn.IsActive {
		return "", fmt.Errorf("%w: %s connection for tenant %s is inactive", domain.ErrNotConnected, provider, tenantID)
	}

	if !conn.TokenExpiresWithin(refreshMargin, m.now()) {
		return conn.AccessToken, nil
	}

	return m.refresh(ctx, conn)
}

// refresh performs the refresh-token grant and persists the result.
func (m *TokenManager) refresh(ctx context.Context, conn *domain.CalendarConnection) (string, error) {
	if conn.RefreshToken == "" {
		return "", fmt.Errorf("%w: %s connection for tenant %s", domain.ErrMissingRefreshToken, conn.Provider, conn.TenantID)
	}

	clientID, clientSecret := m.resolveCredentials(conn)
	if clientID == "" {
		return "", fmt.Errorf("%w: provider %s", domain.ErrMissingCredentials, conn.Provider)
	}

	refresher, ok := m.refreshers[conn.Provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, conn.Provider)
	}

	resp, err := refresher.Refresh(ctx, clientID, clientSecret, conn.RefreshToken)
	if err != nil {
		logger.Warn("token refresh failed for tenant %s provider %s: %v", conn.TenantID, conn.Provider, err)
		return "", fmt.Errorf("%w: %w", domain.ErrRefreshFailed, err)
	}

	expiry := resp.Expiry
	if expiry.IsZero() {
		expiry = m.now().Add(defaultTokenLifetime)
	}

	// Some providers rotate the refresh token on every refresh; keep the old
	// one when the response carries none.
	refreshToken := resp.RefreshToken
	if refreshToken == "" {
		refreshToken = conn.RefreshToken
	}

	if err := m.connections.UpdateTokens(ctx, conn.TenantID, conn.Provider, resp.AccessToken, refreshToken, expiry); err != nil {
		return "", fmt.Errorf("persist refreshed token: %w", err)
	}

	logger.Debug("refreshed %s token for tenant %s, expires %s", conn.Provider, conn.TenantID, expiry.Format(time.RFC3339))
	return resp.AccessToken, nil
}

// resolveCredentials prefers connection-stored client credentials over the
// process-wide ones.
func (m *TokenManager) resolveCredentials(conn *domain.CalendarConnection) (string, string) {
	if conn.ClientID != "" {
		return conn.ClientID, conn.ClientSecret
	}
	if m.credentials == nil {
		return "", ""
	}
	return m.credentials.Credentials(conn.Provider)
}
