package libcal

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned by NewClient when no client id or secret is set.
var ErrMissingCredentials = errors.New("libcal client id and client secret are required")

// maxErrorBody caps how much of an error response body is kept.
const maxErrorBody = 512

// TransportError reports a failed LibCal request: either no response arrived (Err is
// set, StatusCode is 0) or the response had a non-success status.
type TransportError struct {
	// Op is the upstream operation, e.g. "events"
	Op string

	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("libcal %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("libcal %s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("libcal %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is, or wraps, a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
