package finder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/teemow/libfinder/internal/logging"
)

const (
	// confirmedStatus is the only upstream status treated as confirmed.
	confirmedStatus = "Confirmed"

	// defaultNickname stands in for bookings without a label.
	defaultNickname = "Booked"

	// clockLayout renders booking times as hh:mm AM/PM.
	clockLayout = "03:04 PM"
)

// timestampLayouts are tried in order when parsing upstream booking times.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"15:04:05",
	"15:04",
}

// RoomLabel is the display label of a bookable item.
func RoomLabel(itemName string, eid int) string {
	return fmt.Sprintf("%s (ID: %d)", itemName, eid)
}

// Classify maps a raw status string to a BookingStatus.
func Classify(status string) BookingStatus {
	if status == confirmedStatus {
		return StatusConfirmed
	}
	return StatusPending
}

// parseTimestamp parses an upstream timestamp, keeping its own offset.
func parseTimestamp(ts string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, ts)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// FormatClock renders a timestamp as a 12-hour clock string.
// Text that is not a timestamp is returned unchanged.
func FormatClock(ts string) string {
	t, err := parseTimestamp(ts)
	if err != nil {
		return ts
	}
	return t.Format(clockLayout)
}

type dedupKey struct {
	room     string
	from     string
	to       string
	nickname string
}

func nicknameOrDefault(nickname string) string {
	if nickname == "" {
		return defaultNickname
	}
	return nickname
}

func formatEntry(b Booking, status BookingStatus) BookingEntry {
	return BookingEntry{
		Status: status,
		From:   FormatClock(b.From),
		To:     FormatClock(b.To),
		Label:  fmt.Sprintf("[%s] %s", status, nicknameOrDefault(b.Nickname)),
	}
}

// AggregateBookings groups bookings by room, drops repeated non-confirmed bookings,
// and formats what is kept. Rooms are ordered by label.
func AggregateBookings(raw []Booking) []RoomAvailability {
	return aggregate(nil, raw)
}

// RoomsForLocation aggregates bookings like AggregateBookings, but first seeds every
// space of the location so rooms without bookings are listed as free.
func RoomsForLocation(spaces []Space, raw []Booking) []RoomAvailability {
	rooms := make([]string, 0, len(spaces))
	for _, sp := range spaces {
		rooms = append(rooms, RoomLabel(sp.Name, sp.ID))
	}
	return aggregate(rooms, raw)
}

func aggregate(seed []string, raw []Booking) []RoomAvailability {
	groups := make(map[string][]BookingEntry, len(seed))
	for _, room := range seed {
		if _, ok := groups[room]; !ok {
			groups[room] = []BookingEntry{}
		}
	}

	seen := make(map[dedupKey]bool)
	for _, b := range raw {
		room := RoomLabel(b.ItemName, b.EID)
		if _, ok := groups[room]; !ok {
			groups[room] = []BookingEntry{}
		}

		status := Classify(b.Status)
		if status != StatusConfirmed {
			key := dedupKey{room: room, from: b.From, to: b.To, nickname: nicknameOrDefault(b.Nickname)}
			if seen[key] {
				continue
			}
			seen[key] = true
		}

		groups[room] = append(groups[room], formatEntry(b, status))
	}

	labels := make([]string, 0, len(groups))
	for room := range groups {
		labels = append(labels, room)
	}
	sort.Strings(labels)

	out := make([]RoomAvailability, 0, len(labels))
	for _, room := range labels {
		out = append(out, RoomAvailability{Room: room, Entries: groups[room]})
	}
	return out
}

// RoomBookings returns the aggregated room bookings of one library for date.
// Libraries without a booking location yield ErrNoBookingLocation.
func (f *Finder) RoomBookings(ctx context.Context, libraryID int, date string) ([]RoomAvailability, error) {
	lid, err := f.locationFor(libraryID)
	if err != nil {
		return nil, err
	}
	return f.LocationBookings(ctx, lid, date)
}

// LocationBookings returns the aggregated room bookings of a booking location for date.
func (f *Finder) LocationBookings(ctx context.Context, locationID int, date string) ([]RoomAvailability, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}

	logger := logging.WithOperation(f.logger, "finder.room_bookings")

	spaces, err := f.upstream.Spaces(ctx, locationID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spaces for location %d: %w", locationID, err)
	}

	bookings, err := f.upstream.Bookings(ctx, locationID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings for location %d: %w", locationID, err)
	}

	rooms := RoomsForLocation(spaces, bookings)
	logger.Debug("bookings aggregated",
		slog.Int("location_id", locationID),
		slog.String("date", date),
		slog.Int("bookings", len(bookings)),
		slog.Int("rooms", len(rooms)))

	return rooms, nil
}
