// Package cmd implements the command-line interface for calendar-app.
//
// This package provides the following commands:
//   - serve: Start the calendar and task sync HTTP server
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
