// Package server exposes the HTTP boundary of the application: the
// Google OAuth flow, the calendar and task endpoints, the unified
// timeline, and health and metrics endpoints.
//
// Handlers translate typed provider errors into status codes; business
// rules live in the provider clients and the scheduler.
package server
