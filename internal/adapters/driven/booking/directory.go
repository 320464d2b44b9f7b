// Package booking provides a read-only view of the booking domain. The sync
// core only ever reads appointments, services and employees; their lifecycle
// is owned by the booking service. This adapter reads the booking tables of
// the shared SQLite database; production deployments swap in a client for the
// real booking service behind the same port.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bookline/calsync/internal/core/domain"
	"github.com/bookline/calsync/internal/core/ports/driven"
)

// Ensure Directory implements the interface.
var _ driven.BookingDirectory = (*Directory)(nil)

// Directory reads booking entities from the shared database.
type Directory struct {
	db *sql.DB
}

// NewDirectory creates a booking directory over an open database handle.
func NewDirectory(db *sql.DB) *Directory {
	return &Directory{db: db}
}

// GetAppointment returns the appointment or domain.ErrNotFound.
func (d *Directory) GetAppointment(ctx context.Context, id, tenantID string) (*domain.Appointment, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, client_name, client_email, service_id, employee_id, start_time, notes
		 FROM appointments WHERE id = ? AND tenant_id = ?`, id, tenantID)

	var (
		appt  domain.Appointment
		start int64
	)
	err := row.Scan(&appt.ID, &appt.TenantID, &appt.ClientName, &appt.ClientEmail,
		&appt.ServiceID, &appt.EmployeeID, &start, &appt.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query appointment: %w", err)
	}

	appt.StartTime = time.Unix(start, 0).UTC()
	return &appt, nil
}

// GetService returns the service or domain.ErrNotFound.
func (d *Directory) GetService(ctx context.Context, id, tenantID string) (*domain.Service, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, duration_minutes
		 FROM services WHERE id = ? AND tenant_id = ?`, id, tenantID)

	var svc domain.Service
	err := row.Scan(&svc.ID, &svc.TenantID, &svc.Name, &svc.DurationMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query service: %w", err)
	}
	return &svc, nil
}

// GetEmployee returns the employee or domain.ErrNotFound.
func (d *Directory) GetEmployee(ctx context.Context, id, tenantID string) (*domain.Employee, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, email
		 FROM employees WHERE id = ? AND tenant_id = ?`, id, tenantID)

	var emp domain.Employee
	err := row.Scan(&emp.ID, &emp.TenantID, &emp.Name, &emp.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query employee: %w", err)
	}
	return &emp, nil
}
