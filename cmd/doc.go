// Package cmd implements the command-line interface for libfinder.
//
// This package provides the following commands:
//   - events: List the events of a day, as text or iCalendar
//   - bookings: Show the room bookings of one or more libraries
//   - spaces: Find spaces with a free slot covering a time window
//   - libraries: List the configured libraries
//   - digest: Print the daily digest once or on a cron schedule
//   - serve: Start the MCP server to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// LibCal credentials come from the environment (LIBCAL_CLIENT_ID, LIBCAL_CLIENT_SECRET),
// an optional .env file, or the global flags.
package cmd
