// Package finder implements the retrieval, filter and aggregation pipeline for
// library events, room bookings and space availability.
//
// The pipeline reads from an Upstream, which performs the actual API requests, and
// resolves library ids through a library.Directory:
//
//	f := finder.New(client, library.Default(), logger)
//	events, err := f.FetchEvents(ctx, "2024-03-15", []int{9404, 9395})
//
// Pure steps are exported separately so they can be used without an Upstream:
//
//   - FilterSameDay keeps events that start and end on the query date
//   - AggregateBookings groups bookings by room and drops repeated pending bookings
//   - FindAvailable keeps spaces with a free slot covering a time window
//   - NormalizeText strips markup from descriptions and shortens them for display
//
// Errors fall in three groups. Input errors (ErrInvalidDate, ErrInvalidWindow) are
// reported to the caller. ErrNoBookingLocation and library.ErrUnknownLibrary are
// recoverable and batch callers skip the affected library. Anything else, in
// particular transport failures from the Upstream, aborts the operation; IsFatal
// tells the two apart.
package finder
