package finder

import (
	"errors"

	"github.com/teemow/libfinder/internal/library"
)

var (
	// ErrInvalidDate is returned when a query date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrInvalidWindow is returned when a requested time window is malformed or empty.
	ErrInvalidWindow = errors.New("invalid time window")
)

var (
	// ErrNoBookingLocation marks a library without room booking. It is a skip, not a failure.
	ErrNoBookingLocation = errors.New("library has no booking location")
)

// IsFatal reports whether err must abort the current top-level operation.
// Skips and unresolved libraries are recoverable; everything else, including
// transport failures, is fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrNoBookingLocation) && !errors.Is(err, library.ErrUnknownLibrary)
}
