package driven

import (
	"context"
	"time"

	"github.com/bookline/calsync/internal/core/domain"
)

// ConnectionRegistry is the persisted store of tenant calendar connections.
// Pure data access; all business decisions live in the core.
type ConnectionRegistry interface {
	// GetConnection returns the connection for (tenant, provider).
	// Returns domain.ErrNotFound if none exists.
	GetConnection(ctx context.Context, tenantID string, provider domain.ProviderType) (*domain.CalendarConnection, error)

	// ListActiveConnections returns every active connection for the tenant.
	// An empty slice is a valid result, not an error.
	ListActiveConnections(ctx context.Context, tenantID string) ([]*domain.CalendarConnection, error)

	// SaveConnection inserts or replaces a connection keyed by
	// (tenant, provider).
	SaveConnection(ctx context.Context, conn *domain.CalendarConnection) error

	// UpdateTokens persists a refreshed access token and its expiry for an
	// existing connection.
	UpdateTokens(ctx context.Context, tenantID string, provider domain.ProviderType, accessToken, refreshToken string, expiry time.Time) error

	// SetConnectionActive flips the active flag without touching tokens.
	SetConnectionActive(ctx context.Context, tenantID string, provider domain.ProviderType, active bool) error
}

// SyncEventStore is the append-mostly audit log of sync attempts. It doubles
// as the source of truth for "what is the current external event id".
type SyncEventStore interface {
	// Append inserts one sync attempt row. Inserts are atomic; the store
	// assigns the insertion sequence that defines recency.
	Append(ctx context.Context, ev *domain.SyncEvent) error

	// LatestSynced returns the most recently inserted row with a non-empty
	// external event id for (tenant, appointment, provider).
	// Returns domain.ErrNotFound if the appointment was never synced there.
	LatestSynced(ctx context.Context, tenantID, appointmentID string, provider domain.ProviderType) (*domain.SyncEvent, error)

	// ListByAppointment returns all rows for (tenant, appointment) ordered by
	// insertion sequence descending.
	ListByAppointment(ctx context.Context, tenantID, appointmentID string) ([]*domain.SyncEvent, error)

	// ListFailed returns failed rows for a tenant ordered by insertion
	// sequence ascending, oldest first.
	ListFailed(ctx context.Context, tenantID string) ([]*domain.SyncEvent, error)

	// Delete physically removes one row by id. Used only after a successful
	// provider-side delete.
	Delete(ctx context.Context, id string) error
}
