// Package scheduler orchestrates optimistic drag and drop mutations
// against the task and calendar providers.
//
// Every mutation follows the same protocol: the caller applies the
// move optimistically, the orchestrator performs the single remote
// call, and on success refetches tasks before the timeline so a
// timeline item never references a task the task list does not yet
// show. On failure the typed provider error is returned unchanged so
// the caller can roll the optimistic move back.
package scheduler
