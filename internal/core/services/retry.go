package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookline/calsync/internal/core/domain"
	"github.com/bookline/calsync/internal/logger"
)

// RetryPolicy bounds the re-attempt loop for failed sync rows.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries per row.
	MaxAttempts int
	// BaseDelay is the delay before the second attempt; it doubles on every
	// further attempt.
	BaseDelay time.Duration
	// Sleep waits for the backoff period; injectable for tests. A nil Sleep
	// uses a context-aware time.Sleep equivalent.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy is three attempts starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// RetryFailedSyncs scans the tenant's failed sync rows and re-attempts each
// one independently with bounded exponential backoff. The correct action is
// re-derived per row: rows whose appointment has since synced successfully
// are skipped; an appointment with a prior successful external event id gets
// an update (or a delete when the appointment no longer exists); one without
// gets a create.
func (s *SyncService) RetryFailedSyncs(ctx context.Context, tenantID string) []domain.RetryOutcome {
	failed, err := s.syncEvents.ListFailed(ctx, tenantID)
	if err != nil {
		logger.Error("failed to list failed syncs for tenant %s: %v", tenantID, err)
		return nil
	}

	outcomes := make([]domain.RetryOutcome, 0, len(failed))
	for _, row := range failed {
		outcomes = append(outcomes, s.retryRow(ctx, row))
	}
	return outcomes
}

// retryRow re-attempts one failed row.
func (s *SyncService) retryRow(ctx context.Context, row *domain.SyncEvent) domain.RetryOutcome {
	outcome := domain.RetryOutcome{
		SyncEventID:   row.ID,
		AppointmentID: row.AppointmentID,
		Provider:      row.Provider,
	}

	superseded, err := s.rowSuperseded(ctx, row)
	if err != nil {
		outcome.Result = retryFailure(row, err)
		return outcome
	}
	if superseded {
		outcome.Skipped = true
		return outcome
	}

	op, event, ok, err := s.deriveRetryAction(ctx, row)
	if err != nil {
		outcome.Result = retryFailure(row, err)
		return outcome
	}
	if !ok {
		// Appointment gone and nothing was ever synced: nothing to repair.
		outcome.Skipped = true
		return outcome
	}

	conn, err := s.connections.GetConnection(ctx, row.TenantID, row.Provider)
	if err != nil || !conn.IsActive {
		outcome.Skipped = true
		return outcome
	}

	delay := s.retry.BaseDelay
	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		outcome.Attempts = attempt
		outcome.Result = s.syncConnection(ctx, row.AppointmentID, conn, event, op)

		if outcome.Result.Success {
			return outcome
		}
		if attempt == s.retry.MaxAttempts {
			break
		}
		if err := s.retry.sleep(ctx, delay); err != nil {
			break
		}
		delay *= 2
	}

	logger.Warn("retry exhausted for sync event %s (appointment %s, %s)", row.ID, row.AppointmentID, row.Provider)
	return outcome
}

// rowSuperseded reports whether something succeeded for the row's
// (appointment, provider) after the failure, making a retry pointless.
func (s *SyncService) rowSuperseded(ctx context.Context, row *domain.SyncEvent) (bool, error) {
	latest, err := s.syncEvents.LatestSynced(ctx, row.TenantID, row.AppointmentID, row.Provider)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return latest.Seq > row.Seq, nil
}

// deriveRetryAction decides what action repairs the failed row. The failed
// row does not record which operation failed, so the action is derived from
// current state: a live appointment needs an update (which falls back to
// create on its own when nothing was ever synced), a deleted appointment
// with a synced external event needs a delete. Only a NotFound from the
// booking store means the appointment is gone; any other read error aborts
// the row, since acting on stale information could delete a live event.
func (s *SyncService) deriveRetryAction(
	ctx context.Context, row *domain.SyncEvent,
) (domain.SyncOperation, *domain.CanonicalEvent, bool, error) {
	appt, err := s.booking.GetAppointment(ctx, row.AppointmentID, row.TenantID)
	if err == nil {
		return domain.OpUpdate, buildCanonicalEvent(ctx, s.booking, s.tenants, appt), true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", nil, false, fmt.Errorf("load appointment: %w", err)
	}

	_, err = s.syncEvents.LatestSynced(ctx, row.TenantID, row.AppointmentID, row.Provider)
	if err == nil {
		return domain.OpDelete, nil, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", nil, false, fmt.Errorf("find synced event: %w", err)
	}
	return "", nil, false, nil
}

// retryFailure builds the failed result recorded when a retry cannot even
// derive its action.
func retryFailure(row *domain.SyncEvent, err error) domain.SyncResult {
	return domain.SyncResult{
		TenantID:   row.TenantID,
		Provider:   row.Provider,
		Success:    false,
		SyncStatus: domain.SyncStatusFailed,
		Error:      err.Error(),
	}
}
