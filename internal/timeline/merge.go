package timeline

import (
	"strings"
	"time"

	"github.com/nativeJustin/calendar-app/internal/calendar"
	"github.com/nativeJustin/calendar-app/internal/todoist"
)

// Kind distinguishes where a timeline item came from.
type Kind string

const (
	KindCalendar Kind = "calendar"
	KindTask     Kind = "task"
)

// Item id prefixes keep calendar and task ids from colliding.
const (
	eventIDPrefix = "gcal-"
	taskIDPrefix  = "task-"
)

// accountPalette is the fixed set of colors assigned per account
// email. Task items use a single distinct color outside the palette.
var accountPalette = []string{"#3788d8", "#e67c73", "#33b679", "#f4b400", "#8e24aa"}

const (
	taskColor       = "#8b5cf6"
	taskBorderColor = "#7c3aed"
)

// taskSpan is the synthetic duration a scheduled task occupies on the
// timeline.
const taskSpan = time.Hour

// Item is one entry on the unified timeline.
type Item struct {
	ID          string `json:"id"`
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"allDay"`
	Color       string `json:"color"`
	BorderColor string `json:"borderColor"`
	Editable    bool   `json:"editable"`

	// Calendar provenance.
	EventID      string                `json:"eventId,omitempty"`
	AccountID    string                `json:"accountId,omitempty"`
	AccountEmail string                `json:"accountEmail,omitempty"`
	Description  string                `json:"description,omitempty"`
	Location     string                `json:"location,omitempty"`
	Organizer    *calendar.Participant `json:"organizer,omitempty"`

	// Task provenance.
	TaskID    string `json:"taskId,omitempty"`
	Priority  int    `json:"priority,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
}

// Merge combines calendar events and tasks into timeline items.
// Calendar events keep their sub-list order, then scheduled tasks keep
// theirs. Tasks without an explicit time component stay off the
// timeline; they belong to the unscheduled list.
func Merge(events []calendar.Event, tasks []todoist.Task) []Item {
	items := make([]Item, 0, len(events)+len(tasks))

	for _, event := range events {
		items = append(items, eventItem(event))
	}

	for _, task := range tasks {
		if task.Due == nil || task.Due.Datetime == "" {
			continue
		}
		item, ok := taskItem(task)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	return items
}

func eventItem(event calendar.Event) Item {
	title := event.Summary
	if title == "" {
		title = "(No title)"
	}

	color := ColorForAccount(event.AccountEmail)

	return Item{
		ID:           eventIDPrefix + event.ID,
		Kind:         KindCalendar,
		Title:        title,
		Start:        boundaryValue(event.Start),
		End:          boundaryValue(event.End),
		AllDay:       event.Start.IsAllDay(),
		Color:        color,
		BorderColor:  color,
		Editable:     eventEditable(event),
		EventID:      event.ID,
		AccountID:    event.AccountID,
		AccountEmail: event.AccountEmail,
		Description:  event.Description,
		Location:     event.Location,
		Organizer:    event.Organizer,
	}
}

// floatingDatetimeLayout matches due datetimes without a UTC offset,
// which Todoist returns for tasks whose due time has no fixed
// timezone.
const floatingDatetimeLayout = "2006-01-02T15:04:05"

func parseDueDatetime(value string) (time.Time, string, error) {
	if due, err := time.Parse(time.RFC3339, value); err == nil {
		return due, time.RFC3339, nil
	}
	due, err := time.Parse(floatingDatetimeLayout, value)
	return due, floatingDatetimeLayout, err
}

func taskItem(task todoist.Task) (Item, bool) {
	due, layout, err := parseDueDatetime(task.Due.Datetime)
	if err != nil {
		return Item{}, false
	}

	return Item{
		ID:          taskIDPrefix + task.ID,
		Kind:        KindTask,
		Title:       "✓ " + task.Content,
		Start:       task.Due.Datetime,
		End:         due.Add(taskSpan).Format(layout),
		AllDay:      false,
		Color:       taskColor,
		BorderColor: taskBorderColor,
		Editable:    true,
		TaskID:      task.ID,
		Priority:    task.Priority,
		ProjectID:   task.ProjectID,
	}, true
}

// eventEditable reports whether the viewing account may move the
// event. Only the organizer's own account edits an event.
func eventEditable(event calendar.Event) bool {
	if event.Organizer == nil {
		return true
	}
	if event.Organizer.Self {
		return true
	}
	return strings.EqualFold(event.Organizer.Email, event.AccountEmail)
}

func boundaryValue(t calendar.EventTime) string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// ColorForAccount assigns a deterministic palette color to an account
// email. The hash folds each byte into a 32-bit accumulator, so the
// same email yields the same color within and across runs.
func ColorForAccount(email string) string {
	var hash int32
	for i := 0; i < len(email); i++ {
		hash = int32(email[i]) + ((hash << 5) - hash)
	}
	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}
	return accountPalette[abs%int64(len(accountPalette))]
}
