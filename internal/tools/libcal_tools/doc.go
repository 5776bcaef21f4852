// Package libcal_tools provides the MCP tools for library events, room bookings and
// space availability.
//
// Available tools:
//   - libcal_list_libraries: List the configured libraries
//   - libcal_find_events: Events of one day, as text or iCalendar
//   - libcal_room_bookings: Room bookings of one library, grouped by room
//   - libcal_find_spaces: Spaces with a free slot covering a time window
//   - libcal_batch_room_bookings: Room bookings of several libraries as a JSON summary
package libcal_tools
