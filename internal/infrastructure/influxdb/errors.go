package influxdb

import "errors"

// Sentinel errors for InfluxDB operations. Check with errors.Is().
var (
	// ErrNotConnected indicates the client is not connected to InfluxDB.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed indicates a write operation failed.
	// Note: Most write errors are handled asynchronously via the error callback.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrDisabled indicates the telemetry sink is disabled in config.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
