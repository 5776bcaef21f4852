package finder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teemow/libfinder/internal/library"
	"github.com/teemow/libfinder/internal/logging"
)

// Finder runs the retrieval pipeline against an Upstream for the libraries of a Directory.
// It holds no mutable state; every call is independent.
type Finder struct {
	upstream Upstream
	dir      *library.Directory
	logger   *slog.Logger
}

// New creates a Finder. A nil logger discards log output.
func New(upstream Upstream, dir *library.Directory, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Finder{
		upstream: upstream,
		dir:      dir,
		logger:   logger,
	}
}

// Directory returns the library directory the finder resolves ids against.
func (f *Finder) Directory() *library.Directory {
	return f.dir
}

// locationFor resolves a library id to its booking location id.
func (f *Finder) locationFor(libraryID int) (int, error) {
	lib, ok := f.dir.Resolve(libraryID)
	if !ok {
		return 0, fmt.Errorf("%w: %d", library.ErrUnknownLibrary, libraryID)
	}
	if !lib.HasLocation() {
		return 0, fmt.Errorf("%w: %s", ErrNoBookingLocation, lib.Name)
	}
	return *lib.LocationID, nil
}

// LibraryRooms is the room overview of one library.
type LibraryRooms struct {
	Library library.Library
	Rooms   []RoomAvailability
}

// Report is the result of a Digest run.
type Report struct {
	Date string

	// Events that fall entirely on Date, in library order
	Events []CalendarEvent

	// Rooms holds one overview per library with a booking location
	Rooms []LibraryRooms

	// Skipped lists the libraries without a booking location
	Skipped []library.Library

	// Unresolved lists requested ids missing from the directory
	Unresolved []int
}

// Digest runs the full pipeline for date: events for every requested library, then
// room bookings for each library that has a booking location. An empty ids slice
// selects every library in the directory. Libraries without a location are recorded
// in the report and do not fail the run; transport errors do.
func (f *Finder) Digest(ctx context.Context, date string, ids []int) (*Report, error) {
	if len(ids) == 0 {
		ids = f.dir.IDs()
	}

	logger := logging.WithOperation(f.logger, "finder.digest")

	events, err := f.FetchEvents(ctx, date, ids)
	if err != nil {
		return nil, err
	}

	report := &Report{Date: date, Events: events}
	for _, id := range ids {
		lib, ok := f.dir.Resolve(id)
		if !ok {
			report.Unresolved = append(report.Unresolved, id)
			continue
		}

		rooms, err := f.RoomBookings(ctx, id, date)
		if errors.Is(err, ErrNoBookingLocation) {
			report.Skipped = append(report.Skipped, lib)
			continue
		}
		if err != nil {
			return nil, err
		}
		report.Rooms = append(report.Rooms, LibraryRooms{Library: lib, Rooms: rooms})
	}

	logger.Info("digest complete",
		slog.String("date", date),
		slog.Int("events", len(report.Events)),
		slog.Int("libraries_with_rooms", len(report.Rooms)),
		slog.Int("skipped", len(report.Skipped)))

	return report, nil
}
