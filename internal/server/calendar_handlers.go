package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nativeJustin/calendar-app/internal/calendar"
	"github.com/nativeJustin/calendar-app/internal/errdefs"
	"github.com/nativeJustin/calendar-app/internal/logging"
	"github.com/nativeJustin/calendar-app/internal/timeline"
	"github.com/nativeJustin/calendar-app/internal/todoist"
)

// handleListEvents returns events from every connected account. The
// first successful response also fires the timeline readiness signal.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	start, err := parseTimeParam("startDate", r.URL.Query().Get("startDate"))
	if err != nil {
		writeError(w, "Failed to fetch calendar events", err)
		return
	}
	end, err := parseTimeParam("endDate", r.URL.Query().Get("endDate"))
	if err != nil {
		writeError(w, "Failed to fetch calendar events", err)
		return
	}

	events, err := s.calendars.ListAllEvents(r.Context(), start, end)
	if err != nil {
		writeError(w, "Failed to fetch calendar events", err)
		return
	}
	if events == nil {
		events = []calendar.Event{}
	}

	s.ready.Signal()
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

type updateEventRequest struct {
	AccountID string `json:"accountId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime,omitempty"`
}

// handleUpdateEvent moves an event to a new start time. Omitting
// endTime preserves the event's duration.
func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")

	var req updateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Failed to update event",
			&errdefs.ValidationError{Message: "invalid request body"})
		return
	}
	if req.AccountID == "" || req.StartTime == "" {
		writeError(w, "Failed to update event",
			&errdefs.ValidationError{Message: "accountId and startTime are required"})
		return
	}

	newStart, err := parseTimeParam("startTime", req.StartTime)
	if err != nil {
		writeError(w, "Failed to update event", err)
		return
	}

	var newEnd *time.Time
	if req.EndTime != "" {
		parsed, err := parseTimeParam("endTime", req.EndTime)
		if err != nil {
			writeError(w, "Failed to update event", err)
			return
		}
		newEnd = &parsed
	}

	event, err := s.scheduler.RescheduleEvent(r.Context(), req.AccountID, eventID, newStart, newEnd)
	if err != nil {
		writeError(w, "Failed to update event", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"event": event})
}

// handleTimeline merges calendar events and scheduled tasks into one
// list. Task fetch failures degrade to a calendar-only timeline.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	start, err := parseTimeParam("startDate", r.URL.Query().Get("startDate"))
	if err != nil {
		writeError(w, "Failed to build timeline", err)
		return
	}
	end, err := parseTimeParam("endDate", r.URL.Query().Get("endDate"))
	if err != nil {
		writeError(w, "Failed to build timeline", err)
		return
	}

	events, err := s.calendars.ListAllEvents(r.Context(), start, end)
	if err != nil {
		writeError(w, "Failed to build timeline", err)
		return
	}

	var tasks []todoist.Task
	if s.tasks.IsConfigured() {
		tasks, err = s.tasks.ListTasks(r.Context())
		if err != nil {
			s.logger.Warn("timeline degrades to calendar only",
				logging.Err(err))
			tasks = nil
		}
	}

	s.ready.Signal()
	writeJSON(w, http.StatusOK, map[string]any{"items": timeline.Merge(events, tasks)})
}

func (s *Server) handleTimelineReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ready": s.ready.Ready()})
}
