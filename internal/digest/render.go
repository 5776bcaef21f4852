package digest

import (
	"fmt"
	"io"
	"strings"

	"github.com/teemow/libfinder/internal/finder"
	"github.com/teemow/libfinder/internal/library"
)

const (
	unknownLocation = "Unknown location"
	noDescription   = "No description available"
)

// errWriter remembers the first write error so rendering code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// WriteEvents renders events as text, one block per event. Descriptions are
// normalized to maxLength characters.
func WriteEvents(w io.Writer, date string, events []finder.CalendarEvent, dir *library.Directory, maxLength int) error {
	ew := &errWriter{w: w}
	writeEvents(ew, date, events, dir, maxLength)
	return ew.err
}

func writeEvents(ew *errWriter, date string, events []finder.CalendarEvent, dir *library.Directory, maxLength int) {
	if len(events) == 0 {
		ew.printf("No events found on %s\n", date)
		return
	}

	for i, ev := range events {
		if i > 0 {
			ew.printf("\n")
		}
		location := ev.Location
		if location == "" {
			location = unknownLocation
		}
		description := finder.NormalizeText(ev.Description, maxLength)
		if description == "" {
			description = noDescription
		}

		ew.printf("%s at %s\n", ev.Title, dir.DisplayName(ev.CalendarID))
		ew.printf("  Time: %s to %s\n", finder.FormatClock(ev.Start), finder.FormatClock(ev.End))
		ew.printf("  Location: %s\n", location)
		ew.printf("  Description: %s\n", description)
	}
}

// WriteRooms renders the room overview of one booking location.
func WriteRooms(w io.Writer, rooms []finder.RoomAvailability) error {
	ew := &errWriter{w: w}
	writeRooms(ew, rooms, "")
	return ew.err
}

func writeRooms(ew *errWriter, rooms []finder.RoomAvailability, indent string) {
	if len(rooms) == 0 {
		ew.printf("%sNo rooms found\n", indent)
		return
	}

	for _, room := range rooms {
		ew.printf("%s%s\n", indent, room.Room)
		if room.Free() {
			ew.printf("%s  free all day\n", indent)
			continue
		}
		for _, e := range room.Entries {
			ew.printf("%s  %s - %s %s\n", indent, e.From, e.To, e.Label)
		}
	}
}

// WriteSpaces renders spaces with their free slots.
func WriteSpaces(w io.Writer, spaces []finder.Space) error {
	ew := &errWriter{w: w}
	if len(spaces) == 0 {
		ew.printf("No spaces available\n")
		return ew.err
	}

	for _, sp := range spaces {
		ew.printf("%s\n", finder.RoomLabel(sp.Name, sp.ID))
		if len(sp.Slots) == 0 {
			ew.printf("  no free slots\n")
			continue
		}
		for _, slot := range sp.Slots {
			ew.printf("  free %s - %s\n", slot.From.Format("03:04 PM"), slot.To.Format("03:04 PM"))
		}
	}
	return ew.err
}

// WriteReport renders a full digest report.
func WriteReport(w io.Writer, report *finder.Report, dir *library.Directory, maxLength int) error {
	ew := &errWriter{w: w}

	title := "Library digest for " + report.Date
	ew.printf("%s\n%s\n\n", title, strings.Repeat("=", len(title)))

	ew.printf("Events\n------\n")
	writeEvents(ew, report.Date, report.Events, dir, maxLength)

	ew.printf("\nRooms\n-----\n")
	if len(report.Rooms) == 0 {
		ew.printf("No libraries with room booking selected\n")
	}
	for _, lr := range report.Rooms {
		ew.printf("%s\n", lr.Library.Name)
		writeRooms(ew, lr.Rooms, "  ")
	}

	if len(report.Skipped) > 0 {
		names := make([]string, 0, len(report.Skipped))
		for _, lib := range report.Skipped {
			names = append(names, lib.Name)
		}
		ew.printf("\nNo room booking: %s\n", strings.Join(names, ", "))
	}
	if len(report.Unresolved) > 0 {
		ids := make([]string, 0, len(report.Unresolved))
		for _, id := range report.Unresolved {
			ids = append(ids, fmt.Sprint(id))
		}
		ew.printf("Unknown library ids: %s\n", strings.Join(ids, ", "))
	}

	return ew.err
}
