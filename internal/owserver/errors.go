package owserver

import "errors"

// Domain errors for the owserver package.
var (
	// ErrConnectionFailed is returned when the daemon cannot be reached.
	ErrConnectionFailed = errors.New("owserver: connection failed")

	// ErrRequestFailed is returned when writing a request or reading its
	// response fails mid-flight.
	ErrRequestFailed = errors.New("owserver: request failed")

	// ErrServerError is returned when owserver answers with a negative
	// return code (typically a missing path or an unreachable device).
	ErrServerError = errors.New("owserver: server returned error")

	// ErrInvalidResponse is returned when a response header is malformed
	// or announces an implausible payload size.
	ErrInvalidResponse = errors.New("owserver: invalid response")
)
