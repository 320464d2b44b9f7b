package driven

import (
	"context"

	"github.com/bookline/calsync/internal/core/domain"
)

// BookingDirectory is the read-only view of the booking domain. Appointments,
// services and employees are owned elsewhere; the sync core only reads them.
type BookingDirectory interface {
	// GetAppointment returns the appointment or domain.ErrNotFound.
	GetAppointment(ctx context.Context, id, tenantID string) (*domain.Appointment, error)

	// GetService returns the service or domain.ErrNotFound.
	GetService(ctx context.Context, id, tenantID string) (*domain.Service, error)

	// GetEmployee returns the employee or domain.ErrNotFound.
	GetEmployee(ctx context.Context, id, tenantID string) (*domain.Employee, error)
}

// TenantDirectory surfaces per-tenant configuration owned by the tenant
// collaborator. Only the timezone is needed here.
type TenantDirectory interface {
	// Timezone returns the tenant's IANA timezone, or "UTC" when the tenant
	// has none configured.
	Timezone(tenantID string) string
}
