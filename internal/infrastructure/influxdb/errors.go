package influxdb

import "errors"

// Sentinel errors; match with errors.Is.
var (
	// ErrNotConnected is returned by HealthCheck after Close.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed is returned when the startup ping fails.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled is returned by Connect when the config section is
	// disabled; the bridge runs without metrics in that case.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
