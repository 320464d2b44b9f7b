package driving

import (
	"context"

	"github.com/bookline/calsync/internal/core/domain"
)

// CalendarSync is the entry point for propagating appointment mutations to a
// tenant's connected external calendars.
type CalendarSync interface {
	// SyncAppointment fans the operation out to every active connection of
	// the tenant and returns one result per connection. Provider-level
	// failures are converted into failed results, never returned as errors;
	// the only error path is a nonexistent appointment, reported as a single
	// failed result. Zero active connections yields an empty slice.
	SyncAppointment(ctx context.Context, appointmentID, tenantID string, op domain.SyncOperation) []domain.SyncResult

	// RetryFailedSyncs re-attempts failed sync rows for a tenant, deciding
	// per row whether create or update is the correct action, with bounded
	// exponential backoff. Each row is retried independently.
	RetryFailedSyncs(ctx context.Context, tenantID string) []domain.RetryOutcome

	// GetAppointmentSyncStatus summarises the audit history for one
	// appointment across all providers.
	GetAppointmentSyncStatus(ctx context.Context, appointmentID, tenantID string) (*domain.AppointmentSyncStatus, error)
}
