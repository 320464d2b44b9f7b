package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline/calsync/internal/core/domain"
	"github.com/bookline/calsync/internal/core/ports/driven"
)

// fakeRegistry holds a single connection and records UpdateTokens calls.
type fakeRegistry struct {
	conn    *domain.CalendarConnection
	updated bool
}

func (r *fakeRegistry) GetConnection(_ context.Context, tenantID string, provider domain.ProviderType) (*domain.CalendarConnection, error) {
	if r.conn != nil && r.conn.TenantID == tenantID && r.conn.Provider == provider {
		return r.conn, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeRegistry) ListActiveConnections(_ context.Context, _ string) ([]*domain.CalendarConnection, error) {
	return nil, nil
}

func (r *fakeRegistry) SaveConnection(_ context.Context, _ *domain.CalendarConnection) error {
	return nil
}

func (r *fakeRegistry) UpdateTokens(_ context.Context, _ string, _ domain.ProviderType, accessToken, refreshToken string, expiry time.Time) error {
	r.updated = true
	r.conn.AccessToken = accessToken
	r.conn.RefreshToken = refreshToken
	r.conn.TokenExpiry = expiry
	return nil
}

func (r *fakeRegistry) SetConnectionActive(_ context.Context, _ string, _ domain.ProviderType, _ bool) error {
	return nil
}

// fakeRefresher returns a canned token response and counts calls.
type fakeRefresher struct {
	calls int
	resp  *driven.TokenResponse
	err   error
}

func (f *fakeRefresher) Refresh(_ context.Context, _, _, _ string) (*driven.TokenResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type stubCredentials struct {
	id, secret string
}

func (s *stubCredentials) Credentials(_ domain.ProviderType) (string, string) {
	return s.id, s.secret
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(conn *domain.CalendarConnection, refresher *fakeRefresher) (*TokenManager, *fakeRegistry) {
	registry := &fakeRegistry{conn: conn}
	m := NewTokenManager(
		registry,
		map[domain.ProviderType]driven.TokenRefresher{conn.Provider: refresher},
		&stubCredentials{id: "client-id", secret: "client-secret"},
	)
	m.now = func() time.Time { return testNow }
	return m, registry
}

func TestGetValidAccessToken_FreshTokenNoRefresh(t *testing.T) {
	refresher := &fakeRefresher{}
	m, registry := newTestManager(&domain.CalendarConnection{
		TenantID:     "tenant-1",
		Provider:     domain.ProviderGoogle,
		AccessToken:  "stored-token",
		RefreshToken: "refresh-token",
		TokenExpiry:  testNow.Add(time.Hour),
		IsActive:     true,
	}, refresher)

	token, err := m.GetValidAccessToken(context.Background(), "tenant-1", domain.ProviderGoogle)

	require.NoError(t, err)
	assert.Equal(t, "stored-token", token)
	assert.Equal(t, 0, refresher.calls)
	assert.False(t, registry.updated)
}

func TestGetValidAccessToken_RefreshesNearExpiry(t *testing.T) {
	refresher := &fakeRefresher{resp: &driven.TokenResponse{
		AccessToken: "new-token",
		ExpiresIn:   3600,
		Expiry:      testNow.Add(time.Hour),
	}}
	m, registry := newTestManager(&domain.CalendarConnection{
		TenantID:     "tenant-1",
		Provider:     domain.ProviderGoogle,
		AccessToken:  "stale-token",
		RefreshToken: "refresh-token",
		TokenExpiry:  testNow.Add(2 * time.Minute), // inside the 5 minute margin
		IsActive:     true,
	}, refresher)

	token, err := m.GetValidAccessToken(context.Background(), "tenant-1", domain.ProviderGoogle)

	require.NoError(t, err)
	assert.Equal(t, "new-token", token)
	assert.Equal(t, 1, refresher.calls)
	assert.True(t, registry.updated)
	assert.Equal(t, "new-token", registry.conn.AccessToken)
	assert.Equal(t, testNow.Add(time.Hour), registry.conn.TokenExpiry)
}

func TestGetValidAccessToken_RefreshesExpiredToken(t *testing.T) {
	refresher := &fakeRefresher{resp: &driven.TokenResponse{
		AccessToken: "new-token",
		Expiry:      testNow.Add(time.Hour),
	}}
	m, _ := newTestManager(&domain.CalendarConnection{
		TenantID:     "tenant-1",
		Provider:     domain.ProviderGoogle,
		AccessToken:  "expired-token",
		RefreshToken: "refresh-token",
		TokenExpiry:  testNow.Add(-time.Hour),
		IsActive:     true,
	}, refresher)

	token, err := m.GetValidAccessToken(context.Background(), "tenant-1", domain.ProviderGoogle)

	require.NoError(t, err)
	assert.Equal(t, "new-token", token)
	assert.Equal(t, 1, refresher.calls)
}

func TestGetValidAccessToken_KeepsOldRefreshToken(t *testing.T) {
	// Google does not rotate refresh tokens; the response carries none.
	refresher := &fakeRefresher{resp: &driven.TokenResponse{
		AccessToken: "new-token",
		Expiry:      testNow.Add(time.Hour),
	}}
	m, registry := newTestManager(&domain.CalendarConnection{
		TenantID:     "tenant-1",
		Provider:     domain.ProviderGoogle,
		RefreshToken: "original-refresh",
		TokenExpiry:  testNow.Add(-time.Minute),
		IsActive:     true,
	}, refresher)

	_, err := m.GetValidAccessToken(context.Background(), "tenant-1", domain.ProviderGoogle)

	require.NoError(t, err)
	assert.Equal(t, "original-refresh", registry.conn.RefreshToken)
}

func TestGetValidAccessToken_StoresRotatedRefreshToken(t *testing.T) {
	// Microsoft rotates the refresh token on every refresh.
	refresher := &fakeRefresher{resp: &driven.TokenResponse{
		AccessToken:  "new-token",
		RefreshToken: "rotated-refresh",
		Expiry:       testNow.Add(time.Hour),
	}}
	m, registry := newTestManager(&domain.CalendarConnection{
		TenantID:     "tenant-1",
		Provider:     domain.ProviderMicrosoft,
		RefreshToken: "original-refresh",
		TokenExpiry:  testNow.Add(-time.Minute),
		IsActive:     true,
	}, refresher)

	_, err := m.GetValidAccessToken(context.Background(), "tenant-1", domain.ProviderMicrosoft)

	require.NoError(t, err)
	assert.Equal(t, "rotated-refresh", registry.conn.RefreshToken)
}

func TestGetValidAccessToken_DefaultExpiryWhenOmitted(t *testing.T) {
	refresher := &fakeRefresher{resp: &driven.TokenResponse{AccessToken: "new-token"}}
	m, registry := newTestManager(&domain.CalendarConnection{
		TenantID:     "tenant-1",
		Provider:     domain.ProviderGoogle,
		RefreshToken: "refresh-token",
		TokenExpiry:  testNow.Add(-time.Minute),
		IsActive:     true,
	}, refresher)

	_, err := m.GetValidAccessToken(context.Background(), "tenant-1", domain.ProviderGoogle)

	require.NoError(t, err)
	assert.Equal(t, testNow.Add(time.Hour), registry.conn.TokenExpiry)
}

func TestGetValidAccessToken_MissingRefreshToken(t *testing.T) {
	refresher := &fakeRefresher{}
	m, _ := newTestManager(&domain.CalendarConnection{
		TenantID:    "tenant-1",
		Provider:    domain.ProviderGoogle,
		TokenExpiry: testNow.Add(-time.Minute),
		IsActive:    true,
	}, refresher)

	_, err := m.GetValidAccessToken(context.Background(), "tenant-1", domain.ProviderGoogle)

	assert.ErrorIs(t, err, domain.ErrMissingRefreshToken)
	assert.Equal(t, 0, refresher.calls)
}

func TestGetValidAccessToken_MissingCredentials(t *testing.T) {
	refresher := &fakeRefresher{}
	registry := &fakeRegistry{conn: &domain.CalendarConnection{
		TenantID:     "tenant-1",
		Provider:     domain.ProviderGoogle,
		RefreshToken: "refresh-token",
		TokenExpiry:  testNow.Add(-time.Minute),
		IsActive:     true,
	}}
	m := NewTokenManager(
		registry,
		map[domain.ProviderType]driven.TokenRefresher{domain.ProviderGoogle: refresher},
		&stubCredentials{},
	)
	m.now = func() time.Time { return testNow }

	_, err := m.GetValidAccessToken(context.Background(), "tenant-1", domain.ProviderGoogle)

	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
}

func TestGetValidAccessToken_ConnectionCredentialsPreferred(t *testing.T) {
	refresher := &fakeRefresher{resp: &driven.TokenResponse{
		AccessToken: "new-token",
		Expiry:      testNow.Add(time.Hour),
	}}
	m, _ := newTestManager(&domain.CalendarConnection{
		TenantID:     "tenant-1",
		Provider:     domain.ProviderGoogle,
		RefreshToken: "refresh-token",
		TokenExpiry:  testNow.Add(-time.Minute),
		IsActive:     true,
		ClientID:     "conn-client-id",
		ClientSecret: "conn-client-secret",
	}, refresher)

	token, err := m.GetValidAccessToken(context.Background(), "tenant-1", domain.ProviderGoogle)

	require.NoError(t, err)
	assert.Equal(t, "new-token", token)
}

func TestGetValidAccessToken_NoConnection(t *testing.T) {
	m := NewTokenManager(&fakeRegistry{}, nil, &stubCredentials{id: "id"})

	_, err := m.GetValidAccessToken(context.Background(), "tenant-1", domain.ProviderGoogle)

	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestGetValidAccessToken_InactiveConnection(t *testing.T) {
	m, _ := newTestManager(&domain.CalendarConnection{
		TenantID:    "tenant-1",
		Provider:    domain.ProviderGoogle,
		AccessToken: "stored-token",
		TokenExpiry: testNow.Add(time.Hour),
		IsActive:    false,
	}, &fakeRefresher{})

	_, err := m.GetValidAccessToken(context.Background(), "tenant-1", domain.ProviderGoogle)

	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestGetValidAccessToken_RefreshFailure(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("invalid_grant")}
	m, registry := newTestManager(&domain.CalendarConnection{
		TenantID:     "tenant-1",
		Provider:     domain.ProviderGoogle,
		RefreshToken: "refresh-token",
		TokenExpiry:  testNow.Add(-time.Minute),
		IsActive:     true,
	}, refresher)

	_, err := m.GetValidAccessToken(context.Background(), "tenant-1", domain.ProviderGoogle)

	assert.ErrorIs(t, err, domain.ErrRefreshFailed)
	assert.False(t, registry.updated)
}
