package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// EventTime is a calendar event boundary. Exactly one of Date or
// DateTime is set: Date for all-day events, DateTime for timed ones.
type EventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// IsAllDay reports whether the boundary is date-only.
func (t EventTime) IsAllDay() bool {
	return t.DateTime == "" && t.Date != ""
}

// Time parses the boundary into a time.Time. All-day boundaries parse
// at midnight UTC.
func (t EventTime) Time() (time.Time, error) {
	if t.DateTime != "" {
		return time.Parse(time.RFC3339, t.DateTime)
	}
	return time.Parse("2006-01-02", t.Date)
}

// Participant identifies the organizer or creator of an event.
type Participant struct {
	Email string `json:"email,omitempty"`
	Self  bool   `json:"self,omitempty"`
}

// Event is a calendar event annotated with the account it was read
// from. Start and End keep the provider's raw representation so that
// rescheduling an all-day event never turns it into a timed one.
type Event struct {
	ID           string       `json:"id"`
	AccountID    string       `json:"accountId"`
	AccountEmail string       `json:"accountEmail"`
	Summary      string       `json:"summary"`
	Description  string       `json:"description,omitempty"`
	Location     string       `json:"location,omitempty"`
	Start        EventTime    `json:"start"`
	End          EventTime    `json:"end"`
	AllDay       bool         `json:"allDay"`
	Organizer    *Participant `json:"organizer,omitempty"`
	Creator      string       `json:"creator,omitempty"`
	HTMLLink     string       `json:"htmlLink,omitempty"`
	Status       string       `json:"status,omitempty"`
}

// EventInput is the input for creating a timed calendar event.
type EventInput struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"startTime"`
	End         time.Time `json:"endTime"`
	TimeZone    string    `json:"timeZone"`
	Description string    `json:"description,omitempty"`
}

// toEvent converts a Google Calendar event into an Event tagged with
// the account it belongs to.
func toEvent(accountID, accountEmail string, event *calendar.Event) Event {
	e := Event{
		ID:           event.Id,
		AccountID:    accountID,
		AccountEmail: accountEmail,
		Summary:      event.Summary,
		Description:  event.Description,
		Location:     event.Location,
		Status:       event.Status,
		HTMLLink:     event.HtmlLink,
		Creator:      creatorEmail(event),
	}

	if event.Start != nil {
		e.Start = EventTime{
			Date:     event.Start.Date,
			DateTime: event.Start.DateTime,
			TimeZone: event.Start.TimeZone,
		}
	}
	if event.End != nil {
		e.End = EventTime{
			Date:     event.End.Date,
			DateTime: event.End.DateTime,
			TimeZone: event.End.TimeZone,
		}
	}
	e.AllDay = e.Start.IsAllDay()

	if event.Organizer != nil {
		e.Organizer = &Participant{
			Email: event.Organizer.Email,
			Self:  event.Organizer.Self,
		}
	}

	return e
}

func creatorEmail(event *calendar.Event) string {
	if event.Creator == nil {
		return ""
	}
	return event.Creator.Email
}
