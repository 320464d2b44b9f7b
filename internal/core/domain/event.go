package domain

// EventDateTime is a point in time paired with the IANA time zone it should be
// rendered in by the provider.
type EventDateTime struct {
	DateTime string
	TimeZone string
}

// EventAttendee is a single attendee on a canonical event.
type EventAttendee struct {
	Email       string
	DisplayName string
}

// CanonicalEvent is the provider-agnostic representation of an appointment.
// It is derived fresh on every sync call and never persisted; each adapter
// translates it into its provider's wire format.
type CanonicalEvent struct {
	Summary     string
	Description string
	Start       EventDateTime
	End         EventDateTime
	Location    string
	Attendees   []EventAttendee
}
