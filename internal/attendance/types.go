package attendance

import "time"

// TimeLayout is how punch timestamps are rendered and persisted. Terminals
// report device-local time with no timezone, so the stored text carries none;
// it is also the dedup key component for attendance rows.
const TimeLayout = "2006-01-02 15:04:05"

// adminPrivilegeCode is the firmware privilege value for administrators.
// Anything below it is a default user.
const adminPrivilegeCode = 14

// Privilege is the access classification of a roster entry, stored as text.
type Privilege string

const (
	PrivilegeDefault Privilege = "User"
	PrivilegeAdmin   Privilege = "Admin"
)

// PrivilegeFromCode maps a raw firmware privilege value onto the two
// supported classifications via threshold comparison.
func PrivilegeFromCode(code int) Privilege {
	if code >= adminPrivilegeCode {
		return PrivilegeAdmin
	}
	return PrivilegeDefault
}

// Code returns the firmware privilege value for a classification, used when
// pushing roster entries back to a terminal.
func (p Privilege) Code() int {
	if p == PrivilegeAdmin {
		return adminPrivilegeCode
	}
	return 0
}

// UserRecord is a normalized roster entry for one terminal.
type UserRecord struct {
	UID       int
	UserID    string
	Name      string
	Privilege Privilege
	Password  string
	GroupID   string
	Card      string
}

// Status is the semantic classification of a punch.
type Status int

const (
	StatusCheckIn  Status = 0
	StatusCheckOut Status = 1
	StatusBreakOut Status = 2
	StatusBreakIn  Status = 3
	StatusOTIn     Status = 4
	StatusOTOut    Status = 5
)

// statusLabels maps known status codes to display labels.
var statusLabels = map[Status]string{
	StatusCheckIn:  "Check-In",
	StatusCheckOut: "Check-Out",
	StatusBreakOut: "Break-Out",
	StatusBreakIn:  "Break-In",
	StatusOTIn:     "OT-In",
	StatusOTOut:    "OT-Out",
}

// Label returns the display label for a status, or "Unknown" for codes the
// firmware defines beyond the documented six.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// AttendanceEvent is a normalized punch.
type AttendanceEvent struct {
	UID       int
	UserID    string
	Timestamp time.Time
	Status    Status
	Punch     int
}

// FormattedTime renders the punch timestamp in the persisted layout.
func (e AttendanceEvent) FormattedTime() string {
	return e.Timestamp.Format(TimeLayout)
}
