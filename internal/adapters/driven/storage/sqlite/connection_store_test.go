package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline/calsync/internal/core/domain"
)

func testConnection(tenantID string, provider domain.ProviderType) *domain.CalendarConnection {
	return &domain.CalendarConnection{
		TenantID:           tenantID,
		Provider:           provider,
		ExternalCalendarID: "cal-1",
		AccessToken:        "access",
		RefreshToken:       "refresh",
		TokenExpiry:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		IsActive:           true,
	}
}

func TestConnectionStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t).Connections()
	ctx := context.Background()

	require.NoError(t, store.SaveConnection(ctx, testConnection("tenant-1", domain.ProviderGoogle)))

	conn, err := store.GetConnection(ctx, "tenant-1", domain.ProviderGoogle)

	require.NoError(t, err)
	assert.Equal(t, "tenant-1", conn.TenantID)
	assert.Equal(t, domain.ProviderGoogle, conn.Provider)
	assert.Equal(t, "cal-1", conn.ExternalCalendarID)
	assert.Equal(t, "access", conn.AccessToken)
	assert.Equal(t, "refresh", conn.RefreshToken)
	assert.True(t, conn.TokenExpiry.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.True(t, conn.IsActive)
}

func TestConnectionStore_Get_NotFound(t *testing.T) {
	store := newTestStore(t).Connections()

	_, err := store.GetConnection(context.Background(), "tenant-1", domain.ProviderGoogle)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConnectionStore_SaveUpsertsByTenantAndProvider(t *testing.T) {
	store := newTestStore(t).Connections()
	ctx := context.Background()

	require.NoError(t, store.SaveConnection(ctx, testConnection("tenant-1", domain.ProviderGoogle)))

	updated := testConnection("tenant-1", domain.ProviderGoogle)
	updated.ExternalCalendarID = "cal-2"
	require.NoError(t, store.SaveConnection(ctx, updated))

	conn, err := store.GetConnection(ctx, "tenant-1", domain.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "cal-2", conn.ExternalCalendarID)

	// still exactly one connection for the tenant
	conns, err := store.ListActiveConnections(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Len(t, conns, 1)
}

func TestConnectionStore_OneConnectionPerProvider(t *testing.T) {
	store := newTestStore(t).Connections()
	ctx := context.Background()

	require.NoError(t, store.SaveConnection(ctx, testConnection("tenant-1", domain.ProviderGoogle)))
	require.NoError(t, store.SaveConnection(ctx, testConnection("tenant-1", domain.ProviderMicrosoft)))
	require.NoError(t, store.SaveConnection(ctx, testConnection("tenant-2", domain.ProviderGoogle)))

	conns, err := store.ListActiveConnections(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Len(t, conns, 2)

	conns, err = store.ListActiveConnections(ctx, "tenant-2")
	require.NoError(t, err)
	assert.Len(t, conns, 1)
}

func TestConnectionStore_ListActiveSkipsInactive(t *testing.T) {
	store := newTestStore(t).Connections()
	ctx := context.Background()

	require.NoError(t, store.SaveConnection(ctx, testConnection("tenant-1", domain.ProviderGoogle)))
	require.NoError(t, store.SaveConnection(ctx, testConnection("tenant-1", domain.ProviderMicrosoft)))
	require.NoError(t, store.SetConnectionActive(ctx, "tenant-1", domain.ProviderMicrosoft, false))

	conns, err := store.ListActiveConnections(ctx, "tenant-1")

	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, domain.ProviderGoogle, conns[0].Provider)
}

func TestConnectionStore_ListActive_Empty(t *testing.T) {
	store := newTestStore(t).Connections()

	conns, err := store.ListActiveConnections(context.Background(), "tenant-1")

	require.NoError(t, err)
	assert.Empty(t, conns)
}

func TestConnectionStore_UpdateTokens(t *testing.T) {
	store := newTestStore(t).Connections()
	ctx := context.Background()
	require.NoError(t, store.SaveConnection(ctx, testConnection("tenant-1", domain.ProviderGoogle)))

	newExpiry := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	err := store.UpdateTokens(ctx, "tenant-1", domain.ProviderGoogle, "new-access", "new-refresh", newExpiry)

	require.NoError(t, err)
	conn, err := store.GetConnection(ctx, "tenant-1", domain.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "new-access", conn.AccessToken)
	assert.Equal(t, "new-refresh", conn.RefreshToken)
	assert.True(t, conn.TokenExpiry.Equal(newExpiry))
}

func TestConnectionStore_UpdateTokens_NotFound(t *testing.T) {
	store := newTestStore(t).Connections()

	err := store.UpdateTokens(context.Background(), "tenant-1", domain.ProviderGoogle,
		"access", "refresh", time.Now())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConnectionStore_SetConnectionActive_NotFound(t *testing.T) {
	store := newTestStore(t).Connections()

	err := store.SetConnectionActive(context.Background(), "tenant-1", domain.ProviderGoogle, false)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
