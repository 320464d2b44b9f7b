package google

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/bookline/calsync/internal/core/domain"
	"github.com/bookline/calsync/internal/core/ports/driven"
	"github.com/bookline/calsync/internal/logger"
)

// Ensure Adapter implements the interface.
var _ driven.CalendarAdapter = (*Adapter)(nil)

// defaultCalendarID is the authenticated user's primary calendar.
const defaultCalendarID = "primary"

// Adapter performs calendar mutations against the Google Calendar v3 API
// through the typed client. Insert maps to POST, Update to a full-replace PUT
// and Delete to DELETE on /calendars/{calendarId}/events.
type Adapter struct {
	tokens      driven.TokenProvider
	connections driven.ConnectionRegistry
	rateLimiter *RateLimiter
	endpoint    string
	httpTimeout time.Duration
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithEndpoint overrides the Calendar API base URL, mainly for tests.
func WithEndpoint(endpoint string) Option {
	return func(a *Adapter) { a.endpoint = endpoint }
}

// NewAdapter creates a Google Calendar adapter.
func NewAdapter(tokens driven.TokenProvider, connections driven.ConnectionRegistry, opts ...Option) *Adapter {
	a := &Adapter{
		tokens:      tokens,
		connections: connections,
		rateLimiter: NewRateLimiter(),
		httpTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Provider returns the provider identifier.
func (a *Adapter) Provider() domain.ProviderType {
	return domain.ProviderGoogle
}

// CreateEvent creates an event and returns the Google-assigned event id.
func (a *Adapter) CreateEvent(ctx context.Context, tenantID string, event *domain.CanonicalEvent) (string, error) {
	svc, calID, err := a.prepare(ctx, tenantID)
	if err != nil {
		return "", err
	}

	if err := a.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	created, err := svc.Events.Insert(calID, toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return "", a.wrapAPIError("insert event", err)
	}

	return created.Id, nil
}

// UpdateEvent replaces the event with the given id. The Calendar API update
// call is a full PUT replace, so the complete mapped body is sent.
func (a *Adapter) UpdateEvent(ctx context.Context, tenantID, externalEventID string, event *domain.CanonicalEvent) error {
	svc, calID, err := a.prepare(ctx, tenantID)
	if err != nil {
		return err
	}

	if err := a.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	if _, err := svc.Events.Update(calID, externalEventID, toGoogleEvent(event)).Context(ctx).Do(); err != nil {
		return a.wrapAPIError("update event", err)
	}

	return nil
}

// DeleteEvent removes the event with the given id.
func (a *Adapter) DeleteEvent(ctx context.Context, tenantID, externalEventID string) error {
	svc, calID, err := a.prepare(ctx, tenantID)
	if err != nil {
		return err
	}

	if err := a.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	if err := svc.Events.Delete(calID, externalEventID).Context(ctx).Do(); err != nil {
		return a.wrapAPIError("delete event", err)
	}

	return nil
}

// prepare resolves the access token, builds the typed service for it and
// returns the calendar to address. A token failure short-circuits the call
// before any Calendar API I/O.
func (a *Adapter) prepare(ctx context.Context, tenantID string) (*calendar.Service, string, error) {
	token, err := a.tokens.GetValidAccessToken(ctx, tenantID, domain.ProviderGoogle)
	if err != nil {
		return nil, "", err
	}

	conn, err := a.connections.GetConnection(ctx, tenantID, domain.ProviderGoogle)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrNotConnected, err)
	}

	calID := conn.ExternalCalendarID
	if calID == "" {
		calID = defaultCalendarID
	}

	svc, err := a.newService(ctx, token)
	if err != nil {
		return nil, "", fmt.Errorf("create calendar service: %w", err)
	}

	return svc, calID, nil
}

// newService builds a Calendar API client authenticated with a static token.
func (a *Adapter) newService(ctx context.Context, accessToken string) (*calendar.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})

	// The token is injected through the client transport; combining
	// WithHTTPClient with credential options is rejected by the library.
	opts := []option.ClientOption{
		option.WithHTTPClient(&http.Client{
			Timeout:   a.httpTimeout,
			Transport: &oauth2.Transport{Source: ts},
		}),
	}
	if a.endpoint != "" {
		opts = append(opts, option.WithEndpoint(a.endpoint))
	}

	return calendar.NewService(ctx, opts...)
}

// wrapAPIError logs and converts a Calendar API error into the domain's
// provider-failure sentinel.
func (a *Adapter) wrapAPIError(op string, err error) error {
	if IsRateLimited(err) {
		a.rateLimiter.RecordRateLimitError(0)
	}
	logger.Debug("google-calendar: %s failed: %v", op, err)
	return fmt.Errorf("%w: %s: %w", domain.ErrProviderAPI, op, WrapError(err))
}

// toGoogleEvent maps a canonical event into Calendar API wire format.
func toGoogleEvent(event *domain.CanonicalEvent) *calendar.Event {
	ev := &calendar.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start: &calendar.EventDateTime{
			DateTime: event.Start.DateTime,
			TimeZone: event.Start.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: event.End.DateTime,
			TimeZone: event.End.TimeZone,
		},
		Location: event.Location,
	}

	for _, att := range event.Attendees {
		ev.Attendees = append(ev.Attendees, &calendar.EventAttendee{
			Email:       att.Email,
			DisplayName: att.DisplayName,
		})
	}

	return ev
}
