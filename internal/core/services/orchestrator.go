package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bookline/calsync/internal/core/domain"
	"github.com/bookline/calsync/internal/core/ports/driven"
	"github.com/bookline/calsync/internal/core/ports/driving"
	"github.com/bookline/calsync/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.CalendarSync = (*SyncService)(nil)

// SyncService orchestrates the fan-out of one appointment mutation to every
// active calendar connection of a tenant, recording each attempt in the audit
// log. One connection's outcome never affects another's; partial success is
// the expected steady state.
type SyncService struct {
	booking     driven.BookingDirectory
	tenants     driven.TenantDirectory
	connections driven.ConnectionRegistry
	syncEvents  driven.SyncEventStore
	adapters    *AdapterRegistry
	retry       RetryPolicy
}

// NewSyncService creates the sync orchestrator.
func NewSyncService(
	booking driven.BookingDirectory,
	tenants driven.TenantDirectory,
	connections driven.ConnectionRegistry,
	syncEvents driven.SyncEventStore,
	adapters *AdapterRegistry,
	opts ...SyncServiceOption,
) *SyncService {
	s := &SyncService{
		booking:     booking,
		tenants:     tenants,
		connections: connections,
		syncEvents:  syncEvents,
		adapters:    adapters,
		retry:       DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncServiceOption configures a SyncService.
type SyncServiceOption func(*SyncService)

// WithRetryPolicy overrides the retry policy used by RetryFailedSyncs.
func WithRetryPolicy(p RetryPolicy) SyncServiceOption {
	return func(s *SyncService) { s.retry = p }
}

// SyncAppointment propagates the operation to every active connection of the
// tenant concurrently and returns one result per connection, in connection
// order. A nonexistent appointment is the only whole-call failure; provider
// failures become per-connection failed results. Zero active connections is
// success with an empty result set.
func (s *SyncService) SyncAppointment(
	ctx context.Context, appointmentID, tenantID string, op domain.SyncOperation,
) []domain.SyncResult {
	appt, err := s.booking.GetAppointment(ctx, appointmentID, tenantID)
	if err != nil {
		msg := domain.ErrAppointmentNotFound.Error()
		if !errors.Is(err, domain.ErrNotFound) {
			msg = fmt.Sprintf("load appointment: %v", err)
		}
		return []domain.SyncResult{{
			TenantID:   tenantID,
			Success:    false,
			SyncStatus: domain.SyncStatusFailed,
			Error:      msg,
		}}
	}

	event := buildCanonicalEvent(ctx, s.booking, s.tenants, appt)

	conns, err := s.connections.ListActiveConnections(ctx, tenantID)
	if err != nil {
		return []domain.SyncResult{{
			TenantID:   tenantID,
			Success:    false,
			SyncStatus: domain.SyncStatusFailed,
			Error:      fmt.Sprintf("list connections: %v", err),
		}}
	}
	if len(conns) == 0 {
		return []domain.SyncResult{}
	}

	results := make([]domain.SyncResult, len(conns))
	var wg sync.WaitGroup
	for i, conn := range conns {
		wg.Add(1)
		go func(i int, conn *domain.CalendarConnection) {
			defer wg.Done()
			results[i] = s.syncConnection(ctx, appointmentID, conn, event, op)
		}(i, conn)
	}
	wg.Wait()

	return results
}

// syncConnection performs one operation against one connection and records
// the outcome. All errors are converted into a failed result.
func (s *SyncService) syncConnection(
	ctx context.Context,
	appointmentID string,
	conn *domain.CalendarConnection,
	event *domain.CanonicalEvent,
	op domain.SyncOperation,
) domain.SyncResult {
	adapter, err := s.adapters.Get(conn.Provider)
	if err != nil {
		return s.recordFailure(ctx, appointmentID, conn, err)
	}

	switch op {
	case domain.OpCreate:
		return s.createEvent(ctx, appointmentID, conn, adapter, event)
	case domain.OpUpdate:
		return s.updateEvent(ctx, appointmentID, conn, adapter, event)
	case domain.OpDelete:
		return s.deleteEvent(ctx, appointmentID, conn, adapter)
	default:
		return s.recordFailure(ctx, appointmentID, conn, fmt.Errorf("unknown operation %q", op))
	}
}

// createEvent creates a fresh external event. Calling create twice for the
// same appointment produces two independent external events and two audit
// rows; there is no dedup.
func (s *SyncService) createEvent(
	ctx context.Context,
	appointmentID string,
	conn *domain.CalendarConnection,
	adapter driven.CalendarAdapter,
	event *domain.CanonicalEvent,
) domain.SyncResult {
	externalID, err := adapter.CreateEvent(ctx, conn.TenantID, event)
	if err != nil {
		return s.recordFailure(ctx, appointmentID, conn, err)
	}

	s.appendEvent(ctx, &domain.SyncEvent{
		TenantID:        conn.TenantID,
		AppointmentID:   appointmentID,
		Provider:        conn.Provider,
		ExternalEventID: externalID,
		Status:          domain.SyncStatusCreated,
	})

	return domain.SyncResult{
		TenantID:        conn.TenantID,
		Provider:        conn.Provider,
		Success:         true,
		SyncStatus:      domain.SyncStatusCreated,
		ExternalEventID: externalID,
	}
}

// updateEvent updates the most recently synced external event. An appointment
// that was never successfully synced falls back to create, producing a
// created row, not an updated one.
func (s *SyncService) updateEvent(
	ctx context.Context,
	appointmentID string,
	conn *domain.CalendarConnection,
	adapter driven.CalendarAdapter,
	event *domain.CanonicalEvent,
) domain.SyncResult {
	latest, err := s.syncEvents.LatestSynced(ctx, conn.TenantID, appointmentID, conn.Provider)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("update for never-synced appointment %s on %s, creating instead", appointmentID, conn.Provider)
		return s.createEvent(ctx, appointmentID, conn, adapter, event)
	}
	if err != nil {
		return s.recordFailure(ctx, appointmentID, conn, err)
	}

	if err := adapter.UpdateEvent(ctx, conn.TenantID, latest.ExternalEventID, event); err != nil {
		return s.recordFailure(ctx, appointmentID, conn, err)
	}

	s.appendEvent(ctx, &domain.SyncEvent{
		TenantID:        conn.TenantID,
		AppointmentID:   appointmentID,
		Provider:        conn.Provider,
		ExternalEventID: latest.ExternalEventID,
		Status:          domain.SyncStatusUpdated,
	})

	return domain.SyncResult{
		TenantID:        conn.TenantID,
		Provider:        conn.Provider,
		Success:         true,
		SyncStatus:      domain.SyncStatusUpdated,
		ExternalEventID: latest.ExternalEventID,
	}
}

// deleteEvent removes the most recently synced external event. Nothing to
// delete is trivially success, with no provider call. A successful delete is
// the only destructive write to the audit log.
func (s *SyncService) deleteEvent(
	ctx context.Context,
	appointmentID string,
	conn *domain.CalendarConnection,
	adapter driven.CalendarAdapter,
) domain.SyncResult {
	latest, err := s.syncEvents.LatestSynced(ctx, conn.TenantID, appointmentID, conn.Provider)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.SyncResult{
			TenantID:   conn.TenantID,
			Provider:   conn.Provider,
			Success:    true,
			SyncStatus: domain.SyncStatusDeleted,
		}
	}
	if err != nil {
		return s.recordFailure(ctx, appointmentID, conn, err)
	}

	if err := adapter.DeleteEvent(ctx, conn.TenantID, latest.ExternalEventID); err != nil {
		return s.recordFailure(ctx, appointmentID, conn, err)
	}

	if err := s.syncEvents.Delete(ctx, latest.ID); err != nil {
		logger.Warn("failed to remove sync event %s after delete: %v", latest.ID, err)
	}

	return domain.SyncResult{
		TenantID:        conn.TenantID,
		Provider:        conn.Provider,
		Success:         true,
		SyncStatus:      domain.SyncStatusDeleted,
		ExternalEventID: latest.ExternalEventID,
	}
}

// recordFailure appends a failed audit row and returns the matching result.
func (s *SyncService) recordFailure(
	ctx context.Context, appointmentID string, conn *domain.CalendarConnection, cause error,
) domain.SyncResult {
	logger.Debug("sync failed for appointment %s on %s: %v", appointmentID, conn.Provider, cause)

	s.appendEvent(ctx, &domain.SyncEvent{
		TenantID:      conn.TenantID,
		AppointmentID: appointmentID,
		Provider:      conn.Provider,
		Status:        domain.SyncStatusFailed,
		ErrorMessage:  cause.Error(),
	})

	return domain.SyncResult{
		TenantID:   conn.TenantID,
		Provider:   conn.Provider,
		Success:    false,
		SyncStatus: domain.SyncStatusFailed,
		Error:      cause.Error(),
	}
}

// appendEvent writes one audit row. Audit failures are logged, never allowed
// to fail the sync itself.
func (s *SyncService) appendEvent(ctx context.Context, ev *domain.SyncEvent) {
	if err := s.syncEvents.Append(ctx, ev); err != nil {
		logger.Error("failed to append sync event for appointment %s: %v", ev.AppointmentID, err)
	}
}

// GetAppointmentSyncStatus summarises the audit history for one appointment
// across all providers.
func (s *SyncService) GetAppointmentSyncStatus(
	ctx context.Context, appointmentID, tenantID string,
) (*domain.AppointmentSyncStatus, error) {
	rows, err := s.syncEvents.ListByAppointment(ctx, tenantID, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("list sync events: %w", err)
	}

	status := &domain.AppointmentSyncStatus{Synced: len(rows) > 0}
	for _, row := range rows {
		if row.Status == domain.SyncStatusFailed {
			status.HasErrors = true
		}
	}
	if len(rows) > 0 {
		// rows are ordered newest first
		status.LastSync = rows[0].CreatedAt
	}

	return status, nil
}
