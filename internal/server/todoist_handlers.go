package server

import (
	"encoding/json"
	"net/http"

	"github.com/nativeJustin/calendar-app/internal/errdefs"
	"github.com/nativeJustin/calendar-app/internal/todoist"
)

func (s *Server) handleTodoistStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"connected": s.tasks.IsConfigured()})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.ListTasks(r.Context())
	if err != nil {
		writeError(w, "Failed to fetch tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.tasks.ListProjects(r.Context())
	if err != nil {
		writeError(w, "Failed to fetch projects", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := s.tasks.ListSections(r.Context())
	if err != nil {
		writeError(w, "Failed to fetch sections", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": sections})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var input todoist.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, "Failed to create task",
			&errdefs.ValidationError{Message: "invalid request body"})
		return
	}

	task, err := s.scheduler.CreateTask(r.Context(), input)
	if err != nil {
		writeError(w, "Failed to create task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": task})
}

type scheduleTaskRequest struct {
	Datetime string `json:"datetime"`
}

func (s *Server) handleScheduleTask(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")

	var req scheduleTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Failed to schedule task",
			&errdefs.ValidationError{Message: "invalid request body"})
		return
	}

	due, err := parseTimeParam("datetime", req.Datetime)
	if err != nil {
		writeError(w, "Failed to schedule task", err)
		return
	}

	task, err := s.scheduler.ScheduleTask(r.Context(), taskID, due)
	if err != nil {
		writeError(w, "Failed to schedule task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": task})
}

func (s *Server) handleUnscheduleTask(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")

	task, err := s.scheduler.UnscheduleTask(r.Context(), taskID)
	if err != nil {
		writeError(w, "Failed to unschedule task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": task})
}
