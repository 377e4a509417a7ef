package attendance

import "errors"

// Domain errors for the attendance package. Check with errors.Is().
var (
	// ErrMissingDeviceIP is returned by store operations called without a
	// device identity; every persisted row is keyed by it.
	ErrMissingDeviceIP = errors.New("attendance: device ip is required")

	// ErrNoDatabase is returned when a store is constructed without a
	// database handle.
	ErrNoDatabase = errors.New("attendance: database is required")
)
