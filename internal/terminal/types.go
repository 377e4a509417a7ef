package terminal

import "time"

// DialOptions carries per-connection settings for a protocol driver.
type DialOptions struct {
	// Port is the terminal protocol port, 4370 on stock firmware.
	Port int

	// Timeout bounds every network operation on the session, including
	// individual live-capture pulls.
	Timeout time.Duration

	// CommKey is the device shared secret. Zero means no key is set.
	CommKey int

	// ForceUDP selects UDP transport. Most terminal firmware responds
	// more reliably over UDP than TCP.
	ForceUDP bool
}

// UserRecordRaw is a roster entry exactly as the terminal reports it.
//
// UID arrives as text because field firmware occasionally emits garbage in
// the numeric slot; coercion is the normalizer's job. Optional fields
// (Name, Password, GroupID, Card) may be empty.
type UserRecordRaw struct {
	UID       string
	UserID    string
	Name      string
	Privilege int
	Password  string
	GroupID   string
	Card      string
}

// AttendanceEventRaw is a punch log entry exactly as the terminal reports
// it. UID, Status and Punch arrive as text for the same reason as
// UserRecordRaw.UID. Timestamp is device-local with no timezone guarantee;
// a zero Timestamp marks a record the firmware returned without one.
type AttendanceEventRaw struct {
	UID       string
	UserID    string
	Timestamp time.Time
	Status    string
	Punch     string
}

// LiveResultKind tags one pull from a live-capture stream.
type LiveResultKind int

const (
	// LiveEventReceived means Event holds a real punch.
	LiveEventReceived LiveResultKind = iota

	// LiveTimeout means the pull hit the driver read timeout with no
	// event. Distinct from closure: the stream remains usable.
	LiveTimeout

	// LiveClosed means the stream terminated; Err carries the cause when
	// the closure was not clean. The stream cannot be pulled again.
	LiveClosed
)

// LiveResult is one tagged pull from a live-capture stream.
type LiveResult struct {
	Kind  LiveResultKind
	Event AttendanceEventRaw
	Err   error
}
