package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookline/calsync/internal/core/domain"
	"github.com/bookline/calsync/internal/core/ports/driven"
	"github.com/bookline/calsync/internal/logger"
)

// defaultDurationMinutes applies when the booked service cannot be resolved.
const defaultDurationMinutes = 60

// eventTimeLayout is the date-time format both providers accept when an
// explicit time zone accompanies the value.
const eventTimeLayout = "2006-01-02T15:04:05"

// buildCanonicalEvent derives the provider-agnostic event from the
// appointment and its related booking entities. Service and employee are
// optional; their absence degrades the event, it never fails the sync.
func buildCanonicalEvent(
	ctx context.Context,
	booking driven.BookingDirectory,
	tenants driven.TenantDirectory,
	appt *domain.Appointment,
) *domain.CanonicalEvent {
	svc := lookupService(ctx, booking, appt)
	emp := lookupEmployee(ctx, booking, appt)

	tz := tenants.Timezone(appt.TenantID)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logger.Warn("tenant %s has invalid timezone %q, using UTC", appt.TenantID, tz)
		tz = "UTC"
		loc = time.UTC
	}

	duration := defaultDurationMinutes
	summary := "Appointment"
	if svc != nil {
		duration = svc.DurationMinutes
		summary = svc.Name
	}
	if appt.ClientName != "" {
		summary = fmt.Sprintf("%s - %s", summary, appt.ClientName)
	}

	start := appt.StartTime.In(loc)
	end := start.Add(time.Duration(duration) * time.Minute)

	event := &domain.CanonicalEvent{
		Summary:     summary,
		Description: buildDescription(appt, emp),
		Start:       domain.EventDateTime{DateTime: start.Format(eventTimeLayout), TimeZone: tz},
		End:         domain.EventDateTime{DateTime: end.Format(eventTimeLayout), TimeZone: tz},
	}

	if appt.ClientEmail != "" {
		event.Attendees = append(event.Attendees, domain.EventAttendee{
			Email:       appt.ClientEmail,
			DisplayName: appt.ClientName,
		})
	}
	if emp != nil && emp.Email != "" {
		event.Attendees = append(event.Attendees, domain.EventAttendee{
			Email:       emp.Email,
			DisplayName: emp.Name,
		})
	}

	return event
}

func lookupService(ctx context.Context, booking driven.BookingDirectory, appt *domain.Appointment) *domain.Service {
	if appt.ServiceID == "" {
		return nil
	}
	svc, err := booking.GetService(ctx, appt.ServiceID, appt.TenantID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("service lookup failed for appointment %s: %v", appt.ID, err)
		}
		return nil
	}
	return svc
}

func lookupEmployee(ctx context.Context, booking driven.BookingDirectory, appt *domain.Appointment) *domain.Employee {
	if appt.EmployeeID == "" {
		return nil
	}
	emp, err := booking.GetEmployee(ctx, appt.EmployeeID, appt.TenantID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("employee lookup failed for appointment %s: %v", appt.ID, err)
		}
		return nil
	}
	return emp
}

func buildDescription(appt *domain.Appointment, emp *domain.Employee) string {
	desc := appt.Notes
	if emp != nil && emp.Name != "" {
		if desc != "" {
			desc += "\n"
		}
		desc += "With " + emp.Name
	}
	return desc
}
