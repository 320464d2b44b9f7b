package domain

import "time"

// Appointment is a booking-domain appointment as surfaced by the read-only
// booking collaborator. The sync core never mutates it.
type Appointment struct {
	ID          string
	TenantID    string
	ClientName  string
	ClientEmail string
	ServiceID   string
	EmployeeID  string
	StartTime   time.Time
	Notes       string
}

// Service is the booked service, used for the event summary and duration.
type Service struct {
	ID              string
	TenantID        string
	Name            string
	DurationMinutes int
}

// Employee is the staff member assigned to an appointment.
type Employee struct {
	ID       string
	TenantID string
	Name     string
	Email    string
}
