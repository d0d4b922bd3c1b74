package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/nativeJustin/calendar-app/internal/errdefs"
	"github.com/nativeJustin/calendar-app/internal/google"
	"github.com/nativeJustin/calendar-app/internal/instrumentation"
	"github.com/nativeJustin/calendar-app/internal/logging"
	"github.com/nativeJustin/calendar-app/internal/tokenstore"
)

// primaryCalendar is the calendar every account is read from and
// written to.
const primaryCalendar = "primary"

// Client is a multi-account Google Calendar client. Token sources are
// cached per account so that refreshes are serialized and rotated
// tokens are persisted exactly once.
type Client struct {
	cfg     google.Config
	store   *tokenstore.Store
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	mu      sync.Mutex
	sources map[string]oauth2.TokenSource
}

// NewClient creates a calendar client backed by the given OAuth
// configuration and credential store.
func NewClient(cfg google.Config, store *tokenstore.Store, logger *slog.Logger, metrics *instrumentation.Metrics) *Client {
	return &Client{
		cfg:     cfg,
		store:   store,
		logger:  logging.WithService(logger, "calendar"),
		metrics: metrics,
		sources: make(map[string]oauth2.TokenSource),
	}
}

// account looks up the stored account or fails with a typed error for
// unknown ids.
func (c *Client) account(id string) (*tokenstore.Account, error) {
	acct, err := c.store.Get(id)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, &errdefs.MissingCredentialError{AccountID: id}
	}
	return acct, nil
}

// tokenSource returns the cached persisting token source for the
// account, creating it on first use. The source outlives any single
// request, so it is bound to the background context.
func (c *Client) tokenSource(acct *tokenstore.Account) oauth2.TokenSource {
	c.mu.Lock()
	defer c.mu.Unlock()

	if src, ok := c.sources[acct.ID]; ok {
		return src
	}

	base := c.cfg.TokenSource(context.Background(), acct.Credential)
	src := newPersistingTokenSource(acct.ID, acct.Credential, base, c.store, c.logger, c.metrics)
	c.sources[acct.ID] = src
	return src
}

// InvalidateAccount drops the cached token source for an account.
// Called when the account is disconnected.
func (c *Client) InvalidateAccount(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sources, id)
}

func (c *Client) service(ctx context.Context, acct *tokenstore.Account) (*calendar.Service, error) {
	svc, err := calendar.NewService(ctx, option.WithTokenSource(c.tokenSource(acct)))
	if err != nil {
		return nil, &errdefs.ProviderRequestError{Provider: "google", Err: err}
	}
	return svc, nil
}

// ListEvents lists events on the account's primary calendar within a
// time range.
func (c *Client) ListEvents(ctx context.Context, accountID string, start, end time.Time) ([]Event, error) {
	began := time.Now()

	acct, err := c.account(accountID)
	if err != nil {
		return nil, err
	}
	svc, err := c.service(ctx, acct)
	if err != nil {
		return nil, err
	}

	result, err := svc.Events.List(primaryCalendar).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		c.metrics.RecordProviderOperation(ctx, "google", "list_events", "error", time.Since(began))
		return nil, &errdefs.ProviderRequestError{Provider: "google", Err: err}
	}

	events := make([]Event, 0, len(result.Items))
	for _, item := range result.Items {
		events = append(events, toEvent(acct.ID, acct.Email, item))
	}

	c.metrics.RecordProviderOperation(ctx, "google", "list_events", "success", time.Since(began))
	return events, nil
}

// ListAllEvents fans ListEvents out across every connected account in
// parallel. A failure on one account degrades to an empty result for
// that account and never fails the aggregate call.
func (c *Client) ListAllEvents(ctx context.Context, start, end time.Time) ([]Event, error) {
	accounts, err := c.store.List()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(accounts))
	for i, acct := range accounts {
		ids[i] = acct.ID
	}

	results, errs := fanOut(ctx, ids, func(ctx context.Context, accountID string) ([]Event, error) {
		return c.ListEvents(ctx, accountID, start, end)
	})

	events := make([]Event, 0)
	for i, res := range results {
		if errs[i] != nil {
			c.logger.Warn("skipping account after fetch failure",
				logging.Account(ids[i]),
				logging.Err(errs[i]))
			continue
		}
		events = append(events, res...)
	}

	return events, nil
}

// fanOut runs fetch for every account concurrently and joins all of
// them. Results and errors are indexed by account position.
func fanOut(ctx context.Context, accountIDs []string, fetch func(ctx context.Context, accountID string) ([]Event, error)) ([][]Event, []error) {
	results := make([][]Event, len(accountIDs))
	errs := make([]error, len(accountIDs))

	var wg sync.WaitGroup
	for i, id := range accountIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i], errs[i] = fetch(ctx, id)
		}(i, id)
	}
	wg.Wait()

	return results, errs
}

// UpdateEventTime moves an existing event to a new start time. Only
// the organizer's account may move an event. When newEnd is nil the
// original duration is preserved, and the original date-only or
// datetime representation is kept either way.
func (c *Client) UpdateEventTime(ctx context.Context, accountID, eventID string, newStart time.Time, newEnd *time.Time) (*Event, error) {
	began := time.Now()

	acct, err := c.account(accountID)
	if err != nil {
		return nil, err
	}
	svc, err := c.service(ctx, acct)
	if err != nil {
		return nil, err
	}

	existing, err := svc.Events.Get(primaryCalendar, eventID).Context(ctx).Do()
	if err != nil {
		c.metrics.RecordProviderOperation(ctx, "google", "update_event", "error", time.Since(began))
		return nil, &errdefs.ProviderRequestError{Provider: "google", Err: err}
	}

	if !isOrganizer(existing.Organizer, acct.Email) {
		c.metrics.RecordProviderOperation(ctx, "google", "update_event", "denied", time.Since(began))
		return nil, &errdefs.PermissionDeniedError{Reason: "You can only edit events that you created"}
	}

	start, end, err := rescheduledTimes(existing.Start, existing.End, newStart, newEnd)
	if err != nil {
		return nil, err
	}

	patch := &calendar.Event{Start: start, End: end}
	updated, err := svc.Events.Patch(primaryCalendar, eventID, patch).Context(ctx).Do()
	if err != nil {
		c.metrics.RecordProviderOperation(ctx, "google", "update_event", "error", time.Since(began))
		return nil, &errdefs.ProviderRequestError{Provider: "google", Err: err}
	}

	c.logger.Info("rescheduled event",
		logging.Account(acct.ID),
		slog.String("event_id", eventID))
	c.metrics.RecordProviderOperation(ctx, "google", "update_event", "success", time.Since(began))

	event := toEvent(acct.ID, acct.Email, updated)
	return &event, nil
}

// CreateEvent inserts a timed event on the account's primary calendar.
// An absent description is omitted from the payload rather than sent
// empty.
func (c *Client) CreateEvent(ctx context.Context, accountID string, input EventInput) (*Event, error) {
	began := time.Now()

	if input.Title == "" {
		return nil, &errdefs.ValidationError{Message: "event title is required"}
	}
	if input.Start.IsZero() || input.End.IsZero() {
		return nil, &errdefs.ValidationError{Message: "event start and end times are required"}
	}

	acct, err := c.account(accountID)
	if err != nil {
		return nil, err
	}
	svc, err := c.service(ctx, acct)
	if err != nil {
		return nil, err
	}

	timeZone := input.TimeZone
	if timeZone == "" {
		timeZone = "UTC"
	}

	event := &calendar.Event{
		Summary: input.Title,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: timeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: timeZone,
		},
	}
	if input.Description != "" {
		event.Description = input.Description
	}

	created, err := svc.Events.Insert(primaryCalendar, event).Context(ctx).Do()
	if err != nil {
		c.metrics.RecordProviderOperation(ctx, "google", "create_event", "error", time.Since(began))
		return nil, &errdefs.ProviderRequestError{Provider: "google", Err: err}
	}

	c.logger.Info("created event",
		logging.Account(acct.ID),
		slog.String("event_id", created.Id))
	c.metrics.RecordProviderOperation(ctx, "google", "create_event", "success", time.Since(began))

	result := toEvent(acct.ID, acct.Email, created)
	return &result, nil
}

// isOrganizer reports whether the viewing account owns the event. An
// event with no organizer metadata is treated as owned.
func isOrganizer(organizer *calendar.EventOrganizer, accountEmail string) bool {
	if organizer == nil {
		return true
	}
	if organizer.Self {
		return true
	}
	return strings.EqualFold(organizer.Email, accountEmail)
}

// rescheduledTimes computes the patched start and end boundaries for a
// move. The original event's representation is authoritative: all-day
// events stay date-only and timed events stay datetimes with their
// original time zone. A nil newEnd preserves the original duration.
func rescheduledTimes(origStart, origEnd *calendar.EventDateTime, newStart time.Time, newEnd *time.Time) (*calendar.EventDateTime, *calendar.EventDateTime, error) {
	if origStart == nil || origEnd == nil {
		return nil, nil, fmt.Errorf("event has no start or end time")
	}

	allDay := origStart.DateTime == "" && origStart.Date != ""

	end := time.Time{}
	if newEnd != nil {
		end = *newEnd
	} else {
		startTime, err := parseEventDateTime(origStart)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid event start time: %w", err)
		}
		endTime, err := parseEventDateTime(origEnd)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid event end time: %w", err)
		}
		end = newStart.Add(endTime.Sub(startTime))
	}

	if allDay {
		return &calendar.EventDateTime{Date: newStart.Format("2006-01-02")},
			&calendar.EventDateTime{Date: end.Format("2006-01-02")},
			nil
	}

	return &calendar.EventDateTime{
			DateTime: newStart.Format(time.RFC3339),
			TimeZone: origStart.TimeZone,
		}, &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: origEnd.TimeZone,
		}, nil
}

func parseEventDateTime(t *calendar.EventDateTime) (time.Time, error) {
	if t.DateTime != "" {
		return time.Parse(time.RFC3339, t.DateTime)
	}
	return time.Parse("2006-01-02", t.Date)
}
