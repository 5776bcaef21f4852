package finder

import (
	"context"
	"time"
)

// DateLayout is the layout of query dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Upstream is the scheduling API the finder reads from.
// Every method performs one authenticated request and returns a transport error on
// any non-success response.
type Upstream interface {
	// Events returns the raw events of one calendar for a date
	Events(ctx context.Context, calendarID int, date string) ([]CalendarEvent, error)

	// Bookings returns the raw room bookings of one booking location for a date
	Bookings(ctx context.Context, locationID int, date string) ([]Booking, error)

	// Spaces returns the bookable spaces of one location with their free slots for a date
	Spaces(ctx context.Context, locationID int, date string) ([]Space, error)
}

// CalendarEvent is an event as returned by the events feed.
// Start and End are kept as the upstream ISO-8601 strings.
type CalendarEvent struct {
	ID          int
	Title       string
	Start       string
	End         string
	Description string
	Location    string
	CalendarID  int
	URL         string
}

// Booking is a single room booking record.
type Booking struct {
	ItemName string
	EID      int
	Status   string
	From     string
	To       string
	Nickname string
}

// BookingStatus classifies a booking. There is no third category.
type BookingStatus int

const (
	StatusPending BookingStatus = iota
	StatusConfirmed
)

// String returns the status tag without brackets.
func (s BookingStatus) String() string {
	if s == StatusConfirmed {
		return "CONFIRMED"
	}
	return "PENDING"
}

// BookingEntry is a formatted booking ready for display.
type BookingEntry struct {
	Status BookingStatus
	From   string // hh:mm AM/PM
	To     string // hh:mm AM/PM
	Label  string // "[CONFIRMED] nickname" or "[PENDING] nickname"
}

// RoomAvailability lists the kept bookings of one room.
// An empty Entries slice means the room is free for the whole day.
type RoomAvailability struct {
	Room    string
	Entries []BookingEntry
}

// Free reports whether the room has no bookings.
func (r RoomAvailability) Free() bool {
	return len(r.Entries) == 0
}

// Slot is a contiguous free interval of a space.
type Slot struct {
	From time.Time
	To   time.Time
}

// Space is a bookable space and its free slots for one day.
type Space struct {
	ID    int
	Name  string
	Slots []Slot
}
