package terminal

// Dialer opens sessions to terminals. Implementations wrap a concrete wire
// protocol driver; the rest of the application only sees this interface.
type Dialer interface {
	// Dial connects to the terminal at ip. The returned session is live
	// and in normal (enabled) mode.
	Dial(ip string, opts DialOptions) (Session, error)
}

// Session is an open connection to one terminal.
//
// Sessions are not safe for concurrent use. The expected lifecycle is
// Dial → Disable → bulk reads → Enable → Disconnect; Enable and Disconnect
// on the release path are best-effort and callers swallow their errors.
type Session interface {
	// Disable places the terminal into maintenance mode so bulk reads are
	// not interleaved with live punches.
	Disable() error

	// Enable restores normal operation after maintenance.
	Enable() error

	// Users fetches the full user roster.
	Users() ([]UserRecordRaw, error)

	// Attendance fetches the full punch log.
	Attendance() ([]AttendanceEventRaw, error)

	// LiveCapture arms the live punch stream. The stream is logically
	// unbounded and not restartable; arm a new one after closure.
	LiveCapture() (Stream, error)

	// SetUser creates or overwrites a roster entry on the terminal.
	SetUser(user UserRecordRaw) error

	// DeleteUser removes the roster entry with the given uid.
	DeleteUser(uid int) error

	// TestVoice asks the terminal to play its confirmation prompt.
	TestVoice() error

	// Disconnect closes the connection. Safe to call more than once.
	Disconnect() error
}

// Stream is a pull-based live-capture event source.
type Stream interface {
	// Next blocks up to the driver read timeout and returns one tagged
	// result. After a LiveClosed result, further calls return LiveClosed.
	Next() LiveResult
}
