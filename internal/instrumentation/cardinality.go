package instrumentation

import "strconv"

// StatusClass reduces an HTTP status code to its class ("2xx", "4xx", ...).
// A zero code stands for a request that never got a response and maps to "network".
//
//	StatusClass(200) // "2xx"
//	StatusClass(503) // "5xx"
//	StatusClass(0)   // "network"
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		if code == 0 {
			return "network"
		}
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
