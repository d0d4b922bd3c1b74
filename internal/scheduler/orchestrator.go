package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/nativeJustin/calendar-app/internal/calendar"
	"github.com/nativeJustin/calendar-app/internal/instrumentation"
	"github.com/nativeJustin/calendar-app/internal/logging"
	"github.com/nativeJustin/calendar-app/internal/todoist"
)

// TaskService is the subset of the task provider the orchestrator
// mutates through.
type TaskService interface {
	CreateTask(ctx context.Context, input todoist.TaskInput) (*todoist.Task, error)
	ScheduleTask(ctx context.Context, taskID string, due time.Time) (*todoist.Task, error)
	UnscheduleTask(ctx context.Context, taskID string) (*todoist.Task, error)
}

// CalendarService is the subset of the calendar provider the
// orchestrator mutates through.
type CalendarService interface {
	UpdateEventTime(ctx context.Context, accountID, eventID string, newStart time.Time, newEnd *time.Time) (*calendar.Event, error)
	CreateEvent(ctx context.Context, accountID string, input calendar.EventInput) (*calendar.Event, error)
}

// Refresher refetches the local views after a successful mutation.
// RefreshTasks must complete before RefreshTimeline is called.
type Refresher interface {
	RefreshTasks(ctx context.Context) error
	RefreshTimeline(ctx context.Context) error
}

// Orchestrator coordinates optimistic mutations with post-commit
// refreshes. Provider errors pass through unchanged so the boundary
// can map them to status codes and the caller can roll back.
type Orchestrator struct {
	tasks     TaskService
	calendars CalendarService
	refresher Refresher
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
}

// NewOrchestrator creates an orchestrator. refresher may be nil when
// no local views need refetching.
func NewOrchestrator(tasks TaskService, calendars CalendarService, refresher Refresher, logger *slog.Logger, metrics *instrumentation.Metrics) *Orchestrator {
	return &Orchestrator{
		tasks:     tasks,
		calendars: calendars,
		refresher: refresher,
		logger:    logging.WithService(logger, "scheduler"),
		metrics:   metrics,
	}
}

// ScheduleTask sets a task's due datetime, then refreshes tasks and
// the timeline. The remote mutation is a single call, so a failure
// leaves both remote and local state untouched.
func (o *Orchestrator) ScheduleTask(ctx context.Context, taskID string, due time.Time) (*todoist.Task, error) {
	task, err := commit(o, ctx, "schedule_task", func(ctx context.Context) (*todoist.Task, error) {
		return o.tasks.ScheduleTask(ctx, taskID, due)
	})
	if err != nil {
		return nil, err
	}
	o.refresh(ctx)
	return task, nil
}

// UnscheduleTask clears a task's due date, then refreshes tasks and
// the timeline.
func (o *Orchestrator) UnscheduleTask(ctx context.Context, taskID string) (*todoist.Task, error) {
	task, err := commit(o, ctx, "unschedule_task", func(ctx context.Context) (*todoist.Task, error) {
		return o.tasks.UnscheduleTask(ctx, taskID)
	})
	if err != nil {
		return nil, err
	}
	o.refresh(ctx)
	return task, nil
}

// CreateTask creates a task, then refreshes both views because a new
// task may land on the unscheduled list or the timeline.
func (o *Orchestrator) CreateTask(ctx context.Context, input todoist.TaskInput) (*todoist.Task, error) {
	task, err := commit(o, ctx, "create_task", func(ctx context.Context) (*todoist.Task, error) {
		return o.tasks.CreateTask(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	o.refresh(ctx)
	return task, nil
}

// RescheduleEvent moves a calendar event. On any failure the typed
// error is returned as-is; the caller reverts its optimistic move.
func (o *Orchestrator) RescheduleEvent(ctx context.Context, accountID, eventID string, newStart time.Time, newEnd *time.Time) (*calendar.Event, error) {
	event, err := commit(o, ctx, "reschedule_event", func(ctx context.Context) (*calendar.Event, error) {
		return o.calendars.UpdateEventTime(ctx, accountID, eventID, newStart, newEnd)
	})
	if err != nil {
		return nil, err
	}
	o.refresh(ctx)
	return event, nil
}

// CreateEvent inserts a calendar event, then refreshes both views.
func (o *Orchestrator) CreateEvent(ctx context.Context, accountID string, input calendar.EventInput) (*calendar.Event, error) {
	event, err := commit(o, ctx, "create_event", func(ctx context.Context) (*calendar.Event, error) {
		return o.calendars.CreateEvent(ctx, accountID, input)
	})
	if err != nil {
		return nil, err
	}
	o.refresh(ctx)
	return event, nil
}

// commit runs one remote mutation and records its terminal gesture
// state. The drag itself lives on the client; the server only sees
// the committing half of the lifecycle, so the outcome is reported in
// gesture-state terms.
func commit[T any](o *Orchestrator, ctx context.Context, operation string, mutate func(ctx context.Context) (T, error)) (T, error) {
	result, err := mutate(ctx)
	if err != nil {
		o.logger.Warn("mutation failed, caller must roll back",
			logging.Operation(operation),
			logging.Err(err))
		o.metrics.RecordScheduleOperation(ctx, operation, string(StateRolledBack))
		var zero T
		return zero, err
	}

	o.metrics.RecordScheduleOperation(ctx, operation, string(StateSettled))
	return result, nil
}

// refresh refetches tasks first, then the timeline. Refresh failures
// are logged but do not fail the already-committed mutation.
func (o *Orchestrator) refresh(ctx context.Context) {
	if o.refresher == nil {
		return
	}
	if err := o.refresher.RefreshTasks(ctx); err != nil {
		o.logger.Warn("task refresh failed", logging.Err(err))
		return
	}
	if err := o.refresher.RefreshTimeline(ctx); err != nil {
		o.logger.Warn("timeline refresh failed", logging.Err(err))
	}
}
