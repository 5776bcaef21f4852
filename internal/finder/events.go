package finder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/libfinder/internal/logging"
)

// ValidateDate checks that date is a calendar date in YYYY-MM-DD form.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

// datePart returns the date portion of an ISO-8601 timestamp.
func datePart(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i != -1 {
		return ts[:i]
	}
	return ts
}

// FilterSameDay keeps the events that both start and end on date.
// The comparison is on the timestamp text, so an event crossing midnight is dropped.
func FilterSameDay(events []CalendarEvent, date string) []CalendarEvent {
	filtered := make([]CalendarEvent, 0, len(events))
	for _, ev := range events {
		if datePart(ev.Start) == date && datePart(ev.End) == date {
			filtered = append(filtered, ev)
		}
	}
	return filtered
}

// FetchEvents queries every calendar in call order and returns the events that fall
// entirely on date. The first upstream failure aborts the fetch.
func (f *Finder) FetchEvents(ctx context.Context, date string, calendarIDs []int) ([]CalendarEvent, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}

	logger := logging.WithOperation(f.logger, "finder.fetch_events")

	var all []CalendarEvent
	for _, id := range calendarIDs {
		events, err := f.upstream.Events(ctx, id, date)
		if err != nil {
			logger.Error("event fetch failed",
				logging.Library(id),
				logging.Err(err))
			return nil, fmt.Errorf("failed to fetch events for calendar %d: %w", id, err)
		}
		all = append(all, events...)
	}

	filtered := FilterSameDay(all, date)
	logger.Debug("events fetched",
		slog.String("date", date),
		slog.Int("calendars", len(calendarIDs)),
		slog.Int("fetched", len(all)),
		slog.Int("kept", len(filtered)))

	return filtered, nil
}
