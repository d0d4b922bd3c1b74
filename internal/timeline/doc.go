// Package timeline merges calendar events and scheduled tasks into a
// single unified timeline.
//
// Merge is pure: the same events and tasks always produce the same
// items, and every item traces back to exactly one source event or
// task through its namespaced id.
package timeline
