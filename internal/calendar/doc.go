// Package calendar provides a multi-account Google Calendar client.
//
// The client reads events from every connected account in parallel,
// enforces organizer-only mutation of events, and persists silently
// rotated access tokens back to the credential store so that a
// refreshed token survives a process restart.
package calendar
