package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nativeJustin/calendar-app/internal/errdefs"
	"github.com/nativeJustin/calendar-app/internal/instrumentation"
	"github.com/nativeJustin/calendar-app/internal/logging"
)

const defaultBaseURL = "https://api.todoist.com/rest/v2"

// noDateSentinel is the due expression Todoist interprets as "remove
// the due date".
const noDateSentinel = "no date"

// HTTPDoer is the subset of http.Client the client depends on.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Todoist REST v2 API.
type Client struct {
	token      string
	baseURL    string
	httpClient HTTPDoer
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
}

// NewClient creates a Todoist client. An empty token yields a client
// whose operations fail with NotConfiguredError, which lets the rest
// of the application run calendar-only.
func NewClient(token string, logger *slog.Logger, metrics *instrumentation.Metrics) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.WithService(logger, "todoist"),
		metrics:    metrics,
	}
}

// IsConfigured reports whether an API token is present.
func (c *Client) IsConfigured() bool {
	return c.token != ""
}

// ListTasks returns all active tasks.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks, "list_tasks"); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListProjects returns all projects.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &projects, "list_projects"); err != nil {
		return nil, err
	}
	return projects, nil
}

// ListSections returns all sections across projects.
func (c *Client) ListSections(ctx context.Context) ([]Section, error) {
	var sections []Section
	if err := c.do(ctx, http.MethodGet, "/sections", nil, &sections, "list_sections"); err != nil {
		return nil, err
	}
	return sections, nil
}

// CreateTask creates a task. Content is required; a priority outside
// 1..4 is dropped rather than sent.
func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*Task, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, &errdefs.ValidationError{Message: "task content is required"}
	}
	if input.Priority < 1 || input.Priority > 4 {
		input.Priority = 0
	}

	var task Task
	if err := c.do(ctx, http.MethodPost, "/tasks", input, &task, "create_task"); err != nil {
		return nil, err
	}
	return &task, nil
}

// ScheduleTask sets a task's due date to a specific point in time.
func (c *Client) ScheduleTask(ctx context.Context, taskID string, due time.Time) (*Task, error) {
	body := map[string]string{"due_datetime": due.Format(time.RFC3339)}

	var task Task
	if err := c.do(ctx, http.MethodPost, "/tasks/"+taskID, body, &task, "schedule_task"); err != nil {
		return nil, err
	}
	return &task, nil
}

// UnscheduleTask removes a task's due date.
func (c *Client) UnscheduleTask(ctx context.Context, taskID string) (*Task, error) {
	body := map[string]string{"due_string": noDateSentinel}

	var task Task
	if err := c.do(ctx, http.MethodPost, "/tasks/"+taskID, body, &task, "unschedule_task"); err != nil {
		return nil, err
	}
	return &task, nil
}

// do issues one API request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any, operation string) error {
	if !c.IsConfigured() {
		return &errdefs.NotConfiguredError{Service: "todoist"}
	}

	began := time.Now()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordProviderOperation(ctx, "todoist", operation, "error", time.Since(began))
		return &errdefs.ProviderRequestError{Provider: "todoist", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.metrics.RecordProviderOperation(ctx, "todoist", operation, "error", time.Since(began))
		return &errdefs.ProviderRequestError{
			Provider: "todoist",
			Err:      fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.metrics.RecordProviderOperation(ctx, "todoist", operation, "error", time.Since(began))
			return &errdefs.ProviderRequestError{
				Provider: "todoist",
				Err:      fmt.Errorf("failed to decode response: %w", err),
			}
		}
	}

	c.metrics.RecordProviderOperation(ctx, "todoist", operation, "success", time.Since(began))
	return nil
}
