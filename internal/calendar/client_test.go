package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/nativeJustin/calendar-app/internal/google"
	"github.com/nativeJustin/calendar-app/internal/logging"
)

func TestListAllEvents_NoAccounts(t *testing.T) {
	client := NewClient(google.Config{}, newTestStore(t), logging.Setup(false), nil)

	events, err := client.ListAllEvents(context.Background(),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListAllEvents with no accounts: %v", err)
	}
	if events == nil {
		t.Fatal("expected an empty slice, got nil")
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestIsOrganizer(t *testing.T) {
	tests := []struct {
		name         string
		organizer    *calendar.EventOrganizer
		accountEmail string
		want         bool
	}{
		{
			name:         "no organizer metadata",
			organizer:    nil,
			accountEmail: "alice@example.com",
			want:         true,
		},
		{
			name:         "self flag set",
			organizer:    &calendar.EventOrganizer{Self: true, Email: "someone@else.com"},
			accountEmail: "alice@example.com",
			want:         true,
		},
		{
			name:         "email matches exactly",
			organizer:    &calendar.EventOrganizer{Email: "alice@example.com"},
			accountEmail: "alice@example.com",
			want:         true,
		},
		{
			name:         "email matches case-insensitively",
			organizer:    &calendar.EventOrganizer{Email: "Alice@Example.COM"},
			accountEmail: "alice@example.com",
			want:         true,
		},
		{
			name:         "foreign organizer",
			organizer:    &calendar.EventOrganizer{Email: "bob@example.com"},
			accountEmail: "alice@example.com",
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isOrganizer(tt.organizer, tt.accountEmail); got != tt.want {
				t.Errorf("isOrganizer() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRescheduledTimes_PreservesDuration(t *testing.T) {
	origStart := &calendar.EventDateTime{DateTime: "2026-03-10T09:00:00Z", TimeZone: "UTC"}
	origEnd := &calendar.EventDateTime{DateTime: "2026-03-10T10:30:00Z", TimeZone: "UTC"}
	newStart := time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)

	start, end, err := rescheduledTimes(origStart, origEnd, newStart, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if start.DateTime != "2026-03-12T14:00:00Z" {
		t.Errorf("start = %q, want 2026-03-12T14:00:00Z", start.DateTime)
	}
	if end.DateTime != "2026-03-12T15:30:00Z" {
		t.Errorf("end = %q, want 2026-03-12T15:30:00Z (90 minute duration preserved)", end.DateTime)
	}
	if start.TimeZone != "UTC" {
		t.Errorf("start time zone = %q, want UTC", start.TimeZone)
	}
}

func TestRescheduledTimes_ExplicitEnd(t *testing.T) {
	origStart := &calendar.EventDateTime{DateTime: "2026-03-10T09:00:00Z"}
	origEnd := &calendar.EventDateTime{DateTime: "2026-03-10T10:00:00Z"}
	newStart := time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)
	newEnd := time.Date(2026, 3, 12, 16, 15, 0, 0, time.UTC)

	start, end, err := rescheduledTimes(origStart, origEnd, newStart, &newEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if start.DateTime != "2026-03-12T14:00:00Z" {
		t.Errorf("start = %q, want 2026-03-12T14:00:00Z", start.DateTime)
	}
	if end.DateTime != "2026-03-12T16:15:00Z" {
		t.Errorf("end = %q, want 2026-03-12T16:15:00Z", end.DateTime)
	}
}

func TestRescheduledTimes_AllDayStaysDateOnly(t *testing.T) {
	origStart := &calendar.EventDateTime{Date: "2026-03-10"}
	origEnd := &calendar.EventDateTime{Date: "2026-03-11"}
	newStart := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	start, end, err := rescheduledTimes(origStart, origEnd, newStart, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if start.Date != "2026-03-20" || start.DateTime != "" {
		t.Errorf("start = %+v, want date-only 2026-03-20", start)
	}
	if end.Date != "2026-03-21" || end.DateTime != "" {
		t.Errorf("end = %+v, want date-only 2026-03-21 (one day span preserved)", end)
	}
}

func TestRescheduledTimes_MissingBoundaries(t *testing.T) {
	newStart := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	if _, _, err := rescheduledTimes(nil, nil, newStart, nil); err == nil {
		t.Error("expected error for event without start and end")
	}
}

func TestToEvent(t *testing.T) {
	event := &calendar.Event{
		Id:          "evt-1",
		Summary:     "Team sync",
		Description: "weekly",
		Status:      "confirmed",
		Start:       &calendar.EventDateTime{DateTime: "2026-03-10T09:00:00Z", TimeZone: "UTC"},
		End:         &calendar.EventDateTime{DateTime: "2026-03-10T09:30:00Z", TimeZone: "UTC"},
		Organizer:   &calendar.EventOrganizer{Email: "alice@example.com", Self: true},
		Creator:     &calendar.EventCreator{Email: "alice@example.com"},
	}

	got := toEvent("acct-1", "alice@example.com", event)

	if got.ID != "evt-1" {
		t.Errorf("ID = %q, want evt-1", got.ID)
	}
	if got.AccountID != "acct-1" || got.AccountEmail != "alice@example.com" {
		t.Errorf("account tagging = (%q, %q), want (acct-1, alice@example.com)", got.AccountID, got.AccountEmail)
	}
	if got.AllDay {
		t.Error("expected timed event, got all-day")
	}
	if got.Organizer == nil || !got.Organizer.Self {
		t.Errorf("organizer = %+v, want self organizer", got.Organizer)
	}
	if got.Creator != "alice@example.com" {
		t.Errorf("creator = %q, want alice@example.com", got.Creator)
	}
}

func TestToEvent_AllDay(t *testing.T) {
	event := &calendar.Event{
		Id:    "evt-2",
		Start: &calendar.EventDateTime{Date: "2026-03-10"},
		End:   &calendar.EventDateTime{Date: "2026-03-11"},
	}

	got := toEvent("acct-1", "alice@example.com", event)

	if !got.AllDay {
		t.Error("expected all-day event")
	}
	if got.Start.Date != "2026-03-10" || got.Start.DateTime != "" {
		t.Errorf("start = %+v, want raw date-only boundary", got.Start)
	}
}

func TestEventTime_Time(t *testing.T) {
	timed := EventTime{DateTime: "2026-03-10T09:00:00Z"}
	got, err := timed.Time()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("Time() = %v", got)
	}

	allDay := EventTime{Date: "2026-03-10"}
	got, err = allDay.Time()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Time() = %v", got)
	}
	if !allDay.IsAllDay() {
		t.Error("expected IsAllDay for date-only boundary")
	}
	if timed.IsAllDay() {
		t.Error("expected timed boundary not to be all-day")
	}
}

func TestFanOut_PartialFailure(t *testing.T) {
	ctx := context.Background()
	accountIDs := []string{"acct-1", "acct-2", "acct-3"}

	results, errs := fanOut(ctx, accountIDs, func(ctx context.Context, accountID string) ([]Event, error) {
		if accountID == "acct-2" {
			return nil, errors.New("token revoked")
		}
		return []Event{{ID: "evt-" + accountID, AccountID: accountID}}, nil
	})

	if len(results) != 3 || len(errs) != 3 {
		t.Fatalf("expected 3 result and error slots, got %d and %d", len(results), len(errs))
	}
	if errs[0] != nil || errs[2] != nil {
		t.Errorf("healthy accounts returned errors: %v, %v", errs[0], errs[2])
	}
	if errs[1] == nil {
		t.Error("expected error for failing account")
	}
	if results[0][0].AccountID != "acct-1" || results[2][0].AccountID != "acct-3" {
		t.Error("results not indexed by account position")
	}
	if results[1] != nil {
		t.Errorf("failing account should yield no events, got %v", results[1])
	}
}

func TestFanOut_NoAccounts(t *testing.T) {
	results, errs := fanOut(context.Background(), nil, func(ctx context.Context, accountID string) ([]Event, error) {
		t.Fatal("fetch should not be called")
		return nil, nil
	})
	if len(results) != 0 || len(errs) != 0 {
		t.Errorf("expected empty results, got %v, %v", results, errs)
	}
}
