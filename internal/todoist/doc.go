// Package todoist provides a client for the Todoist REST v2 API.
//
// The client authenticates with a static API token. Scheduling a task
// sets due_datetime; unscheduling sets the due expression to the
// provider's "no date" sentinel, which clears the due date entirely.
package todoist
