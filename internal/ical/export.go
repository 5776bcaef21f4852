// Package ical renders library events as an iCalendar (RFC 5545) feed.
package ical

import (
	"fmt"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/teemow/libfinder/internal/finder"
	"github.com/teemow/libfinder/internal/library"
)

const (
	productName = "libfinder"
	uidDomain   = "libcal"
)

// UID is the iCalendar UID of a LibCal event.
func UID(eventID int) string {
	return strconv.Itoa(eventID) + "@" + uidDomain
}

// Location combines the room of an event with the name of its library.
func Location(ev finder.CalendarEvent, dir *library.Directory) string {
	name := dir.DisplayName(ev.CalendarID)
	if ev.Location == "" {
		return name
	}
	return ev.Location + " - " + name
}

// Export builds a VCALENDAR named name with one VEVENT per event.
// Descriptions are stripped of markup but kept at full length.
func Export(name string, events []finder.CalendarEvent, dir *library.Directory) (string, error) {
	cal := ics.NewCalendarFor(productName)
	cal.SetMethod(ics.MethodPublish)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	stamp := time.Now().UTC()
	for _, ev := range events {
		start, err := time.Parse(time.RFC3339, ev.Start)
		if err != nil {
			return "", fmt.Errorf("event %d has invalid start %q: %w", ev.ID, ev.Start, err)
		}
		end, err := time.Parse(time.RFC3339, ev.End)
		if err != nil {
			return "", fmt.Errorf("event %d has invalid end %q: %w", ev.ID, ev.End, err)
		}

		vev := cal.AddEvent(UID(ev.ID))
		vev.SetDtStampTime(stamp)
		vev.SetStartAt(start)
		vev.SetEndAt(end)
		vev.SetSummary(ev.Title)
		vev.SetLocation(Location(ev, dir))
		if desc := finder.StripMarkup(ev.Description); desc != "" {
			vev.SetDescription(desc)
		}
		if ev.URL != "" {
			vev.SetURL(ev.URL)
		}
	}

	return cal.Serialize(), nil
}
