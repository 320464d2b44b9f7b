package driven

import (
	"context"

	"github.com/bookline/calsync/internal/core/domain"
)

// CalendarAdapter translates canonical events into one provider's wire format
// and performs the calendar mutations against its REST API.
//
// Every call first obtains a token via the adapter's TokenProvider; a token
// failure short-circuits the call without reaching the network.
type CalendarAdapter interface {
	// Provider returns the provider this adapter speaks to.
	Provider() domain.ProviderType

	// CreateEvent creates an external event and returns its provider-assigned
	// id.
	CreateEvent(ctx context.Context, tenantID string, event *domain.CanonicalEvent) (string, error)

	// UpdateEvent replaces or patches the external event with the given id.
	UpdateEvent(ctx context.Context, tenantID, externalEventID string, event *domain.CanonicalEvent) error

	// DeleteEvent removes the external event with the given id.
	DeleteEvent(ctx context.Context, tenantID, externalEventID string) error
}
