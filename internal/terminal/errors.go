package terminal

import "errors"

// Driver errors. Drivers wrap their transport failures in these sentinels so
// callers can classify outcomes with errors.Is().
var (
	// ErrConnectFailed is returned when a terminal is unreachable or
	// rejects the connection.
	ErrConnectFailed = errors.New("terminal: connect failed")

	// ErrAuthFailed is returned when the comm key is rejected.
	ErrAuthFailed = errors.New("terminal: authentication failed")

	// ErrTimeout is returned when a bulk operation exceeds the dial
	// timeout. Live-capture pulls report timeouts via LiveTimeout instead.
	ErrTimeout = errors.New("terminal: operation timed out")

	// ErrSessionClosed is returned when an operation is attempted on a
	// disconnected session.
	ErrSessionClosed = errors.New("terminal: session closed")

	// ErrUserNotFound is returned by DeleteUser when no roster entry has
	// the given uid.
	ErrUserNotFound = errors.New("terminal: user not found")
)
