package finder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/libfinder/internal/logging"
)

// clockLayouts are the accepted forms of a requested start or end time.
var clockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "03:04 PM", "3:04PM"}

// clock is a time of day.
type clock struct {
	hour, minute, second int
}

func parseClock(s string) (clock, error) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return clock{hour: t.Hour(), minute: t.Minute(), second: t.Second()}, nil
		}
	}
	return clock{}, fmt.Errorf("%w: unrecognized time %q", ErrInvalidWindow, s)
}

func (c clock) seconds() int {
	return c.hour*3600 + c.minute*60 + c.second
}

// on places the clock time on day, in loc.
func (c clock) on(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.minute, c.second, 0, loc)
}

// Contains reports whether the slot fully covers [start, end].
func (s Slot) Contains(start, end time.Time) bool {
	return !s.From.After(start) && !s.To.Before(end)
}

// FindAvailable returns the spaces that have a single free slot covering the requested
// window on date. desiredStart and desiredEnd are clock times (HH:MM) read in the
// offset of each slot. Partial overlap does not qualify. Input order is kept.
func FindAvailable(spaces []Space, date, desiredStart, desiredEnd string) ([]Space, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	start, err := parseClock(desiredStart)
	if err != nil {
		return nil, err
	}
	end, err := parseClock(desiredEnd)
	if err != nil {
		return nil, err
	}
	if end.seconds() <= start.seconds() {
		return nil, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidWindow, desiredEnd, desiredStart)
	}

	available := make([]Space, 0, len(spaces))
	for _, sp := range spaces {
		for _, slot := range sp.Slots {
			loc := slot.From.Location()
			if slot.Contains(start.on(day, loc), end.on(day, loc)) {
				available = append(available, sp)
				break
			}
		}
	}

	return available, nil
}

// FindAvailableSpaces returns the spaces of a library's booking location for date.
// When both start and end are given only spaces free for that window are returned;
// otherwise the raw availability is returned unfiltered.
func (f *Finder) FindAvailableSpaces(ctx context.Context, libraryID int, date string, start, end *string) ([]Space, error) {
	lid, err := f.locationFor(libraryID)
	if err != nil {
		return nil, err
	}
	return f.LocationSpaces(ctx, lid, date, start, end)
}

// LocationSpaces is FindAvailableSpaces for a booking location id.
func (f *Finder) LocationSpaces(ctx context.Context, locationID int, date string, start, end *string) ([]Space, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}

	logger := logging.WithOperation(f.logger, "finder.find_spaces")

	spaces, err := f.upstream.Spaces(ctx, locationID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability for location %d: %w", locationID, err)
	}

	if start == nil || end == nil {
		return spaces, nil
	}

	available, err := FindAvailable(spaces, date, *start, *end)
	if err != nil {
		return nil, err
	}

	logger.Debug("spaces matched",
		slog.Int("location_id", locationID),
		slog.String("window", *start+"-"+*end),
		slog.Int("spaces", len(spaces)),
		slog.Int("available", len(available)))

	return available, nil
}
