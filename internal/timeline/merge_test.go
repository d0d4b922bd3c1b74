package timeline

import (
	"reflect"
	"strings"
	"testing"

	"github.com/nativeJustin/calendar-app/internal/calendar"
	"github.com/nativeJustin/calendar-app/internal/todoist"
)

func timedEvent(id, accountID, email string, organizer *calendar.Participant) calendar.Event {
	return calendar.Event{
		ID:           id,
		AccountID:    accountID,
		AccountEmail: email,
		Summary:      "Meeting",
		Start:        calendar.EventTime{DateTime: "2026-03-10T09:00:00Z"},
		End:          calendar.EventTime{DateTime: "2026-03-10T10:00:00Z"},
		Organizer:    organizer,
	}
}

func TestMerge_NamespacesIDs(t *testing.T) {
	events := []calendar.Event{timedEvent("e1", "acct-1", "alice@example.com", nil)}
	tasks := []todoist.Task{
		{ID: "t1", Content: "Ship release", Due: &todoist.Due{Datetime: "2026-03-10T14:00:00Z"}},
	}

	items := Merge(events, tasks)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	if items[0].ID != "gcal-e1" || items[0].Kind != KindCalendar {
		t.Errorf("event item = (%q, %q), want (gcal-e1, calendar)", items[0].ID, items[0].Kind)
	}
	if items[1].ID != "task-t1" || items[1].Kind != KindTask {
		t.Errorf("task item = (%q, %q), want (task-t1, task)", items[1].ID, items[1].Kind)
	}
	if items[0].EventID != "e1" {
		t.Errorf("event provenance id = %q, want unprefixed e1", items[0].EventID)
	}
	if items[1].TaskID != "t1" {
		t.Errorf("task provenance id = %q, want unprefixed t1", items[1].TaskID)
	}
}

func TestMerge_ExcludesDateOnlyTasks(t *testing.T) {
	tasks := []todoist.Task{
		{ID: "t1", Content: "date only", Due: &todoist.Due{Date: "2026-03-10"}},
		{ID: "t2", Content: "no due at all"},
		{ID: "t3", Content: "timed", Due: &todoist.Due{Date: "2026-03-10", Datetime: "2026-03-10T09:00:00Z"}},
	}

	items := Merge(nil, tasks)
	if len(items) != 1 {
		t.Fatalf("expected only the timed task, got %d items", len(items))
	}
	if items[0].ID != "task-t3" {
		t.Errorf("item = %q, want task-t3", items[0].ID)
	}
}

func TestMerge_TaskShape(t *testing.T) {
	tasks := []todoist.Task{
		{ID: "t1", Content: "Ship release", Priority: 3, ProjectID: "p1",
			Due: &todoist.Due{Datetime: "2026-03-10T14:00:00Z"}},
	}

	items := Merge(nil, tasks)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]

	if !strings.HasPrefix(item.Title, "✓ ") {
		t.Errorf("title = %q, want check mark prefix", item.Title)
	}
	if item.End != "2026-03-10T15:00:00Z" {
		t.Errorf("end = %q, want one hour after start", item.End)
	}
	if !item.Editable {
		t.Error("task items must always be editable")
	}
	if item.AllDay {
		t.Error("scheduled tasks are never all-day")
	}
	if item.Color != "#8b5cf6" {
		t.Errorf("color = %q, want the fixed task color", item.Color)
	}
	if item.Priority != 3 || item.ProjectID != "p1" {
		t.Errorf("provenance = (%d, %q), want (3, p1)", item.Priority, item.ProjectID)
	}
}

func TestMerge_FloatingDueDatetime(t *testing.T) {
	tasks := []todoist.Task{
		{ID: "t1", Content: "Call dentist", Due: &todoist.Due{Datetime: "2026-03-10T09:00:00"}},
	}

	items := Merge(nil, tasks)
	if len(items) != 1 {
		t.Fatalf("expected 1 item for a floating due datetime, got %d", len(items))
	}

	if items[0].Start != "2026-03-10T09:00:00" {
		t.Errorf("start = %q, want the raw floating datetime", items[0].Start)
	}
	if items[0].End != "2026-03-10T10:00:00" {
		t.Errorf("end = %q, want 2026-03-10T10:00:00 without an offset", items[0].End)
	}
}

func TestMerge_UnparseableDueDatetime(t *testing.T) {
	tasks := []todoist.Task{
		{ID: "t1", Content: "bad due", Due: &todoist.Due{Datetime: "not-a-datetime"}},
		{ID: "t2", Content: "timed", Due: &todoist.Due{Datetime: "2026-03-10T09:00:00Z"}},
	}

	items := Merge(nil, tasks)
	if len(items) != 1 {
		t.Fatalf("expected only the parseable task, got %d items", len(items))
	}
	if items[0].ID != "task-t2" {
		t.Errorf("item = %q, want task-t2", items[0].ID)
	}
}

func TestMerge_EventEditableOnlyForOrganizer(t *testing.T) {
	tests := []struct {
		name      string
		organizer *calendar.Participant
		want      bool
	}{
		{"no organizer metadata", nil, true},
		{"self organizer", &calendar.Participant{Self: true, Email: "other@example.com"}, true},
		{"email matches case-insensitively", &calendar.Participant{Email: "ALICE@example.com"}, true},
		{"foreign organizer", &calendar.Participant{Email: "bob@example.com"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []calendar.Event{timedEvent("e1", "acct-1", "alice@example.com", tt.organizer)}
			items := Merge(events, nil)
			if items[0].Editable != tt.want {
				t.Errorf("editable = %v, want %v", items[0].Editable, tt.want)
			}
		})
	}
}

func TestMerge_AllDayEvents(t *testing.T) {
	events := []calendar.Event{{
		ID:           "e1",
		AccountID:    "acct-1",
		AccountEmail: "alice@example.com",
		Start:        calendar.EventTime{Date: "2026-03-10"},
		End:          calendar.EventTime{Date: "2026-03-11"},
	}}

	items := Merge(events, nil)
	if !items[0].AllDay {
		t.Error("date-only event must be all-day")
	}
	if items[0].Start != "2026-03-10" || items[0].End != "2026-03-11" {
		t.Errorf("boundaries = (%q, %q), want raw dates", items[0].Start, items[0].End)
	}
	if items[0].Title != "(No title)" {
		t.Errorf("title = %q, want placeholder for empty summary", items[0].Title)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	events := []calendar.Event{
		timedEvent("e1", "acct-1", "alice@example.com", nil),
		timedEvent("e2", "acct-2", "bob@example.com", &calendar.Participant{Email: "bob@example.com"}),
	}
	tasks := []todoist.Task{
		{ID: "t1", Content: "x", Due: &todoist.Due{Datetime: "2026-03-10T14:00:00Z"}},
	}

	first := Merge(events, tasks)
	second := Merge(events, tasks)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce identical output")
	}
}

func TestColorForAccount(t *testing.T) {
	palette := map[string]bool{}
	for _, c := range accountPalette {
		palette[c] = true
	}

	emails := []string{"alice@example.com", "bob@example.com", "x", ""}
	for _, email := range emails {
		first := ColorForAccount(email)
		if !palette[first] {
			t.Errorf("ColorForAccount(%q) = %q, not in palette", email, first)
		}
		for i := 0; i < 5; i++ {
			if got := ColorForAccount(email); got != first {
				t.Errorf("ColorForAccount(%q) unstable: %q != %q", email, got, first)
			}
		}
	}
}
