package discovery

import "errors"

// Domain-specific errors for discovery operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound is returned when a sensor does not exist in the repository.
	ErrNotFound = errors.New("discovery: sensor not found")

	// ErrScanInProgress is returned when a scan is requested while another
	// scan is still running.
	ErrScanInProgress = errors.New("discovery: scan already in progress")

	// ErrScanFailed is returned when the bus could not be enumerated at all.
	// Per-device failures do not produce this error.
	ErrScanFailed = errors.New("discovery: scan failed")
)
