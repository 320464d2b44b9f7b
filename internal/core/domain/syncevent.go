package domain

import "time"

// SyncEventStatus is the recorded outcome of a single sync attempt.
type SyncEventStatus string

const (
	// SyncStatusCreated means a new external event was created.
	SyncStatusCreated SyncEventStatus = "created"
	// SyncStatusUpdated means an existing external event was updated.
	SyncStatusUpdated SyncEventStatus = "updated"
	// SyncStatusDeleted means the external event was deleted (or there was
	// nothing to delete).
	SyncStatusDeleted SyncEventStatus = "deleted"
	// SyncStatusFailed means the attempt did not reach the provider or the
	// provider rejected it.
	SyncStatusFailed SyncEventStatus = "failed"
)

// SyncOperation is the appointment mutation being propagated.
type SyncOperation string

const (
	// OpCreate propagates a newly booked appointment.
	OpCreate SyncOperation = "create"
	// OpUpdate propagates a reschedule or detail change.
	OpUpdate SyncOperation = "update"
	// OpDelete propagates a cancellation.
	OpDelete SyncOperation = "delete"
)

// Valid reports whether the operation is one of create/update/delete.
func (op SyncOperation) Valid() bool {
	return op == OpCreate || op == OpUpdate || op == OpDelete
}

// SyncEvent is one audit row recording a single sync attempt against one
// provider connection. Rows are append-only except for the removal of the
// successful row when the external event is deleted.
//
// The current external event id for an appointment on a provider is the most
// recently inserted row carrying a non-empty ExternalEventID. Recency is
// defined by insertion order (Seq), not CreatedAt, whose resolution is too
// coarse to order rows written in the same second.
type SyncEvent struct {
	ID              string
	Seq             int64
	TenantID        string
	AppointmentID   string
	Provider        ProviderType
	ExternalEventID string
	Status          SyncEventStatus
	ErrorMessage    string
	CreatedAt       time.Time
}

// SyncResult is the per-connection outcome returned to callers of a sync.
// Partial success across connections is the expected steady state.
type SyncResult struct {
	TenantID        string
	Provider        ProviderType
	Success         bool
	SyncStatus      SyncEventStatus
	ExternalEventID string
	Error           string
}

// AppointmentSyncStatus summarises the audit history for one appointment.
type AppointmentSyncStatus struct {
	Synced    bool
	HasErrors bool
	LastSync  time.Time
}

// RetryOutcome reports the result of re-attempting one failed sync row.
type RetryOutcome struct {
	SyncEventID   string
	AppointmentID string
	Provider      ProviderType
	Attempts      int
	Result        SyncResult
	Skipped       bool
}
