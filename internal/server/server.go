package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/nativeJustin/calendar-app/internal/calendar"
	"github.com/nativeJustin/calendar-app/internal/errdefs"
	"github.com/nativeJustin/calendar-app/internal/google"
	"github.com/nativeJustin/calendar-app/internal/instrumentation"
	"github.com/nativeJustin/calendar-app/internal/logging"
	"github.com/nativeJustin/calendar-app/internal/scheduler"
	"github.com/nativeJustin/calendar-app/internal/todoist"
	"github.com/nativeJustin/calendar-app/internal/tokenstore"
)

// CalendarService is the calendar surface used by the handlers.
type CalendarService interface {
	ListAllEvents(ctx context.Context, start, end time.Time) ([]calendar.Event, error)
	InvalidateAccount(id string)
}

// TaskService is the task surface used by the handlers.
type TaskService interface {
	IsConfigured() bool
	ListTasks(ctx context.Context) ([]todoist.Task, error)
	ListProjects(ctx context.Context) ([]todoist.Project, error)
	ListSections(ctx context.Context) ([]todoist.Section, error)
}

// Scheduler is the mutation surface used by the handlers.
type Scheduler interface {
	CreateTask(ctx context.Context, input todoist.TaskInput) (*todoist.Task, error)
	ScheduleTask(ctx context.Context, taskID string, due time.Time) (*todoist.Task, error)
	UnscheduleTask(ctx context.Context, taskID string) (*todoist.Task, error)
	RescheduleEvent(ctx context.Context, accountID, eventID string, newStart time.Time, newEnd *time.Time) (*calendar.Event, error)
}

// Config wires the server's collaborators. Every service is injected
// so handler tests can substitute doubles.
type Config struct {
	Logger    *slog.Logger
	Metrics   *instrumentation.Metrics
	Google    google.Config
	States    *google.StateStore
	Store     *tokenstore.Store
	Calendars CalendarService
	Tasks     TaskService
	Scheduler Scheduler
	Ready     *scheduler.ReadySignal
}

// Server is the HTTP boundary of the application.
type Server struct {
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	google    google.Config
	states    *google.StateStore
	store     *tokenstore.Store
	calendars CalendarService
	tasks     TaskService
	scheduler Scheduler
	ready     *scheduler.ReadySignal
	health    *HealthChecker
}

// New creates a server from its collaborators.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ready := cfg.Ready
	if ready == nil {
		ready = scheduler.NewReadySignal()
	}
	return &Server{
		logger:    logging.WithService(logger, "server"),
		metrics:   cfg.Metrics,
		google:    cfg.Google,
		states:    cfg.States,
		store:     cfg.Store,
		calendars: cfg.Calendars,
		tasks:     cfg.Tasks,
		scheduler: cfg.Scheduler,
		ready:     ready,
		health:    NewHealthChecker(),
	}
}

// Health returns the server's health checker.
func (s *Server) Health() *HealthChecker {
	return s.health
}

// Routes builds the HTTP handler for all endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/google/auth", s.handleGoogleAuth)
	mux.HandleFunc("GET /api/google/callback", s.handleGoogleCallback)
	mux.HandleFunc("GET /api/google/accounts", s.handleListAccounts)
	mux.HandleFunc("DELETE /api/google/accounts/{id}", s.handleRemoveAccount)

	mux.HandleFunc("GET /api/calendar/events", s.handleListEvents)
	mux.HandleFunc("POST /api/calendar/events/{id}/update", s.handleUpdateEvent)
	mux.HandleFunc("GET /api/timeline", s.handleTimeline)
	mux.HandleFunc("GET /api/timeline/ready", s.handleTimelineReady)

	mux.HandleFunc("GET /api/todoist/status", s.handleTodoistStatus)
	mux.HandleFunc("GET /api/todoist/tasks", s.handleListTasks)
	mux.HandleFunc("GET /api/todoist/projects", s.handleListProjects)
	mux.HandleFunc("GET /api/todoist/sections", s.handleListSections)
	mux.HandleFunc("POST /api/todoist/tasks", s.handleCreateTask)
	mux.HandleFunc("POST /api/todoist/tasks/{id}/schedule", s.handleScheduleTask)
	mux.HandleFunc("POST /api/todoist/tasks/{id}/unschedule", s.handleUnscheduleTask)

	mux.HandleFunc("GET /health", s.handleHealth)
	s.health.RegisterHealthEndpoints(mux)

	return s.withInstrumentation(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// withInstrumentation records a log line and metrics per request.
func (s *Server) withInstrumentation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		began := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		duration := time.Since(began)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, recorder.status, duration)
		s.logger.Debug("request completed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", recorder.status),
			slog.Duration("duration", duration))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// parseTimeParam accepts RFC 3339 timestamps and bare dates.
func parseTimeParam(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, &errdefs.ValidationError{Message: name + " is required"}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, &errdefs.ValidationError{Message: name + " must be an ISO 8601 timestamp"}
	}
	return t, nil
}
