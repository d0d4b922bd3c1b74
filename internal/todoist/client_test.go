package todoist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nativeJustin/calendar-app/internal/errdefs"
	"github.com/nativeJustin/calendar-app/internal/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient("test-token", logging.Setup(false), nil)
	client.baseURL = srv.URL
	client.httpClient = srv.Client()
	return client
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, NewClient("tok", logging.Setup(false), nil).IsConfigured())
	assert.False(t, NewClient("", logging.Setup(false), nil).IsConfigured())
}

func TestNotConfigured(t *testing.T) {
	client := NewClient("", logging.Setup(false), nil)

	_, err := client.ListTasks(context.Background())
	require.Error(t, err)

	var notConfigured *errdefs.NotConfiguredError
	require.ErrorAs(t, err, &notConfigured)
	assert.Equal(t, "todoist", notConfigured.Service)
}

func TestListTasks(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tasks", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode([]Task{
			{ID: "1", Content: "Buy milk", Due: &Due{Date: "2026-03-10"}},
			{ID: "2", Content: "Standup", Due: &Due{Date: "2026-03-10", Datetime: "2026-03-10T09:00:00Z"}},
		})
	})

	tasks, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Buy milk", tasks[0].Content)
	assert.Empty(t, tasks[0].Due.Datetime)
	assert.Equal(t, "2026-03-10T09:00:00Z", tasks[1].Due.Datetime)
}

func TestListProjectsAndSections(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/projects":
			_ = json.NewEncoder(w).Encode([]Project{{ID: "p1", Name: "Inbox", IsInboxProject: true}})
		case "/sections":
			_ = json.NewEncoder(w).Encode([]Section{{ID: "s1", ProjectID: "p1", Name: "Backlog"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	projects, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.True(t, projects[0].IsInboxProject)

	sections, err := client.ListSections(context.Background())
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Backlog", sections[0].Name)
}

func TestCreateTask(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tasks", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Write report", payload["content"])
		assert.Equal(t, "tomorrow 9am", payload["due_string"])
		assert.EqualValues(t, 3, payload["priority"])

		_ = json.NewEncoder(w).Encode(Task{ID: "42", Content: "Write report"})
	})

	task, err := client.CreateTask(context.Background(), TaskInput{
		Content:   "Write report",
		DueString: "tomorrow 9am",
		Priority:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, "42", task.ID)
}

func TestCreateTask_RequiresContent(t *testing.T) {
	client := NewClient("tok", logging.Setup(false), nil)

	_, err := client.CreateTask(context.Background(), TaskInput{Content: "   "})
	require.Error(t, err)

	var validation *errdefs.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestCreateTask_DropsInvalidPriority(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, hasPriority := payload["priority"]
		assert.False(t, hasPriority, "out-of-range priority must be omitted")

		_ = json.NewEncoder(w).Encode(Task{ID: "43"})
	})

	_, err := client.CreateTask(context.Background(), TaskInput{Content: "x", Priority: 9})
	require.NoError(t, err)
}

func TestScheduleTask(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tasks/42", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "2026-03-10T09:00:00Z", payload["due_datetime"])

		_ = json.NewEncoder(w).Encode(Task{
			ID:  "42",
			Due: &Due{Datetime: "2026-03-10T09:00:00Z"},
		})
	})

	task, err := client.ScheduleTask(context.Background(), "42",
		time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10T09:00:00Z", task.Due.Datetime)
}

func TestUnscheduleTask(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "no date", payload["due_string"])

		_ = json.NewEncoder(w).Encode(Task{ID: "42"})
	})

	task, err := client.UnscheduleTask(context.Background(), "42")
	require.NoError(t, err)
	assert.Nil(t, task.Due)
}

func TestProviderErrorSurfacesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "task not found", http.StatusNotFound)
	})

	_, err := client.ScheduleTask(context.Background(), "missing",
		time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	require.Error(t, err)

	var providerErr *errdefs.ProviderRequestError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "todoist", providerErr.Provider)
	assert.Contains(t, err.Error(), "task not found")
	assert.Contains(t, err.Error(), "404")
}

func TestTransportErrorWrapped(t *testing.T) {
	client := NewClient("tok", logging.Setup(false), nil)
	client.baseURL = "http://127.0.0.1:1"
	client.httpClient = &http.Client{Timeout: 100 * time.Millisecond}

	_, err := client.ListTasks(context.Background())
	require.Error(t, err)

	var providerErr *errdefs.ProviderRequestError
	assert.True(t, errors.As(err, &providerErr))
}
