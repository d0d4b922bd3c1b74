package todoist

// Due describes when a task is due. Datetime is set only for tasks
// scheduled at a specific time; date-only tasks carry just Date.
type Due struct {
	Date        string `json:"date,omitempty"`
	Datetime    string `json:"datetime,omitempty"`
	String      string `json:"string,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	IsRecurring bool   `json:"is_recurring"`
}

// Task is a Todoist task.
type Task struct {
	ID          string   `json:"id"`
	Content     string   `json:"content"`
	Description string   `json:"description,omitempty"`
	ProjectID   string   `json:"project_id,omitempty"`
	SectionID   string   `json:"section_id,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	Due         *Due     `json:"due,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Order       int      `json:"order,omitempty"`
	IsCompleted bool     `json:"is_completed"`
	URL         string   `json:"url,omitempty"`
}

// Project is a Todoist project.
type Project struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Color          string `json:"color,omitempty"`
	IsInboxProject bool   `json:"is_inbox_project"`
}

// Section is a named group of tasks within a project.
type Section struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
}

// TaskInput is the input for creating a task. Content is required;
// everything else is optional.
type TaskInput struct {
	Content   string `json:"content"`
	DueString string `json:"due_string,omitempty"`
	Priority  int    `json:"priority,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	SectionID string `json:"section_id,omitempty"`
}
