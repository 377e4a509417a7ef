package fleet

import "errors"

// Domain errors for the fleet package. Check with errors.Is().
var (
	// ErrRegistryInvalid is returned when the device registry document
	// cannot be read or does not parse. This is the only fatal startup
	// condition: with no registry there is nothing to iterate.
	ErrRegistryInvalid = errors.New("fleet: device registry invalid")

	// ErrDeviceMissingIP is returned when a registry entry lacks the
	// mandatory ip field.
	ErrDeviceMissingIP = errors.New("fleet: device entry missing ip")

	// ErrDuplicateDeviceIP is returned when two registry entries share an
	// ip; ip is the fleet-unique key.
	ErrDuplicateDeviceIP = errors.New("fleet: duplicate device ip")

	// ErrDeviceNotFound is returned when an ip is not in the registry.
	ErrDeviceNotFound = errors.New("fleet: device not found")

	// ErrNoDialer is returned when an orchestrator is constructed without
	// a terminal dialer.
	ErrNoDialer = errors.New("fleet: terminal dialer is required")

	// ErrNoStore is returned when an orchestrator is constructed without
	// a persistence store.
	ErrNoStore = errors.New("fleet: store is required")
)
