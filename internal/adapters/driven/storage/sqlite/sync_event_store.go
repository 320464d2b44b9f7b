package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookline/calsync/internal/core/domain"
	"github.com/bookline/calsync/internal/core/ports/driven"
)

// Ensure SyncEventStore implements the interface.
var _ driven.SyncEventStore = (*SyncEventStore)(nil)

// SyncEventStore is the append-mostly audit log of sync attempts. Recency is
// defined by the autoincrement sequence assigned on insert, so "latest" stays
// well-defined for rows written within the same second.
type SyncEventStore struct {
	db *sql.DB
}

const syncEventColumns = `seq, id, tenant_id, appointment_id, provider,
	external_event_id, status, error_message, created_at`

// Append inserts one sync attempt row. The store assigns the id when the
// caller left it empty, and always assigns the sequence.
func (s *SyncEventStore) Append(ctx context.Context, ev *domain.SyncEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	var externalID, errMsg sql.NullString
	if ev.ExternalEventID != "" {
		externalID = sql.NullString{String: ev.ExternalEventID, Valid: true}
	}
	if ev.ErrorMessage != "" {
		errMsg = sql.NullString{String: ev.ErrorMessage, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_events
			(id, tenant_id, appointment_id, provider, external_event_id, status, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.TenantID, ev.AppointmentID, string(ev.Provider),
		externalID, string(ev.Status), errMsg, ev.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("append sync event: %w", err)
	}

	if seq, err := res.LastInsertId(); err == nil {
		ev.Seq = seq
	}
	return nil
}

// LatestSynced returns the most recently inserted row carrying an external
// event id for (tenant, appointment, provider).
func (s *SyncEventStore) LatestSynced(
	ctx context.Context, tenantID, appointmentID string, provider domain.ProviderType,
) (*domain.SyncEvent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+syncEventColumns+` FROM sync_events
		 WHERE tenant_id = ? AND appointment_id = ? AND provider = ?
			AND external_event_id IS NOT NULL AND external_event_id != ''
		 ORDER BY seq DESC LIMIT 1`,
		tenantID, appointmentID, string(provider))

	ev, err := scanSyncEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest synced: %w", err)
	}
	return ev, nil
}

// ListByAppointment returns all rows for (tenant, appointment), newest first.
func (s *SyncEventStore) ListByAppointment(
	ctx context.Context, tenantID, appointmentID string,
) ([]*domain.SyncEvent, error) {
	return s.list(ctx,
		`SELECT `+syncEventColumns+` FROM sync_events
		 WHERE tenant_id = ? AND appointment_id = ?
		 ORDER BY seq DESC`,
		tenantID, appointmentID)
}

// ListFailed returns failed rows for the tenant, oldest first, so retries
// replay history in order.
func (s *SyncEventStore) ListFailed(ctx context.Context, tenantID string) ([]*domain.SyncEvent, error) {
	return s.list(ctx,
		`SELECT `+syncEventColumns+` FROM sync_events
		 WHERE tenant_id = ? AND status = ?
		 ORDER BY seq ASC`,
		tenantID, string(domain.SyncStatusFailed))
}

// Delete physically removes one row by id.
func (s *SyncEventStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sync_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sync event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *SyncEventStore) list(ctx context.Context, query string, args ...any) ([]*domain.SyncEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sync events: %w", err)
	}
	defer rows.Close()

	var events []*domain.SyncEvent
	for rows.Next() {
		ev, err := scanSyncEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func scanSyncEvent(row scanner) (*domain.SyncEvent, error) {
	var (
		ev                 domain.SyncEvent
		provider, status   string
		externalID, errMsg sql.NullString
		createdAt          int64
	)
	err := row.Scan(&ev.Seq, &ev.ID, &ev.TenantID, &ev.AppointmentID,
		&provider, &externalID, &status, &errMsg, &createdAt)
	if err != nil {
		return nil, err
	}

	ev.Provider = domain.ProviderType(provider)
	ev.Status = domain.SyncEventStatus(status)
	ev.ExternalEventID = externalID.String
	ev.ErrorMessage = errMsg.String
	ev.CreatedAt = time.Unix(createdAt, 0)
	return &ev, nil
}
