package microsoft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bookline/calsync/internal/core/domain"
	"github.com/bookline/calsync/internal/core/ports/driven"
	"github.com/bookline/calsync/internal/logger"
)

// Ensure Adapter implements the interface.
var _ driven.CalendarAdapter = (*Adapter)(nil)

// graphBaseURL is the Microsoft Graph v1.0 base URL.
const graphBaseURL = "https://graph.microsoft.com/v1.0"

// graphEvent is the Microsoft Graph wire format for an event mutation.
type graphEvent struct {
	Subject   string          `json:"subject"`
	Body      *graphBody      `json:"body,omitempty"`
	Start     *graphDateTime  `json:"start,omitempty"`
	End       *graphDateTime  `json:"end,omitempty"`
	Location  *graphLocation  `json:"location,omitempty"`
	Attendees []graphAttendee `json:"attendees"`
}

// graphBody is the event body content.
type graphBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// graphDateTime is a date-time with time zone.
type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// graphLocation is the event location.
type graphLocation struct {
	DisplayName string `json:"displayName"`
}

// graphAttendee is an event attendee.
type graphAttendee struct {
	EmailAddress graphEmailAddress `json:"emailAddress"`
	Type         string            `json:"type"`
}

// graphEmailAddress is an attendee's address.
type graphEmailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// Adapter performs calendar mutations against Microsoft Graph v1.0.
type Adapter struct {
	tokens      driven.TokenProvider
	connections driven.ConnectionRegistry
	rateLimiter *RateLimiter
	client      *http.Client
	baseURL     string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithBaseURL overrides the Graph base URL, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(a *Adapter) { a.baseURL = baseURL }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.client = c }
}

// NewAdapter creates a Microsoft Graph calendar adapter.
func NewAdapter(tokens driven.TokenProvider, connections driven.ConnectionRegistry, opts ...Option) *Adapter {
	a := &Adapter{
		tokens:      tokens,
		connections: connections,
		rateLimiter: NewRateLimiter(),
		client:      &http.Client{Timeout: 10 * time.Second},
		baseURL:     graphBaseURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Provider returns the provider identifier.
func (a *Adapter) Provider() domain.ProviderType {
	return domain.ProviderMicrosoft
}

// CreateEvent creates an event and returns the Graph-assigned event id.
func (a *Adapter) CreateEvent(ctx context.Context, tenantID string, event *domain.CanonicalEvent) (string, error) {
	token, calID, err := a.prepare(ctx, tenantID)
	if err != nil {
		return "", err
	}

	body, err := a.do(ctx, http.MethodPost, a.eventsURL(calID), token, toGraphEvent(event))
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}

	return created.ID, nil
}

// UpdateEvent patches the event with the given id. Graph supports partial
// updates, so the full mapped body is sent as a PATCH.
func (a *Adapter) UpdateEvent(ctx context.Context, tenantID, externalEventID string, event *domain.CanonicalEvent) error {
	token, calID, err := a.prepare(ctx, tenantID)
	if err != nil {
		return err
	}

	_, err = a.do(ctx, http.MethodPatch, a.eventsURL(calID)+"/"+externalEventID, token, toGraphEvent(event))
	return err
}

// DeleteEvent removes the event with the given id.
func (a *Adapter) DeleteEvent(ctx context.Context, tenantID, externalEventID string) error {
	token, calID, err := a.prepare(ctx, tenantID)
	if err != nil {
		return err
	}

	_, err = a.do(ctx, http.MethodDelete, a.eventsURL(calID)+"/"+externalEventID, token, nil)
	return err
}

// prepare resolves the access token and the external calendar id. A token
// failure short-circuits the adapter call before any Graph I/O.
func (a *Adapter) prepare(ctx context.Context, tenantID string) (token, calID string, err error) {
	token, err = a.tokens.GetValidAccessToken(ctx, tenantID, domain.ProviderMicrosoft)
	if err != nil {
		return "", "", err
	}

	conn, err := a.connections.GetConnection(ctx, tenantID, domain.ProviderMicrosoft)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", domain.ErrNotConnected, err)
	}

	return token, conn.ExternalCalendarID, nil
}

// eventsURL builds the events collection URL for a calendar. Graph exposes the
// default calendar at /me/events when no calendar id is stored.
func (a *Adapter) eventsURL(calID string) string {
	if calID == "" {
		return a.baseURL + "/me/events"
	}
	return a.baseURL + "/me/calendars/" + calID + "/events"
}

// do executes one authenticated Graph request and returns the response body.
func (a *Adapter) do(ctx context.Context, method, url, token string, payload any) ([]byte, error) {
	if err := a.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderAPI, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if IsRateLimited(resp.StatusCode) {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		a.rateLimiter.RecordRateLimitError(retryAfter)
	}

	if !IsSuccess(resp.StatusCode) {
		logger.Debug("microsoft-calendar: %s %s failed with status %d: %s", method, url, resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d: %w", domain.ErrProviderAPI, resp.StatusCode, WrapError(resp.StatusCode))
	}

	return body, nil
}

// toGraphEvent maps a canonical event into Graph wire format.
func toGraphEvent(event *domain.CanonicalEvent) *graphEvent {
	ev := &graphEvent{
		Subject: event.Summary,
		Body: &graphBody{
			ContentType: "text",
			Content:     event.Description,
		},
		Start: &graphDateTime{
			DateTime: event.Start.DateTime,
			TimeZone: event.Start.TimeZone,
		},
		End: &graphDateTime{
			DateTime: event.End.DateTime,
			TimeZone: event.End.TimeZone,
		},
		Attendees: []graphAttendee{},
	}

	if event.Location != "" {
		ev.Location = &graphLocation{DisplayName: event.Location}
	}

	for _, att := range event.Attendees {
		ev.Attendees = append(ev.Attendees, graphAttendee{
			EmailAddress: graphEmailAddress{
				Address: att.Email,
				Name:    att.DisplayName,
			},
			Type: "required",
		})
	}

	return ev
}
