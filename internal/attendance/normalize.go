package attendance

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zkfleet/zkfleet-core/internal/infrastructure/logging"
	"github.com/zkfleet/zkfleet-core/internal/terminal"
)

// maxVerboseErrors caps how many malformed records are logged in full per
// batch; the rest are only counted, to keep a corrupt punch log from
// flooding the output.
const maxVerboseErrors = 3

// Outcome classifies the result of normalizing one attendance record.
type Outcome int

const (
	// OutcomeOK means the record normalized cleanly (possibly with
	// silently corrected numeric fields).
	OutcomeOK Outcome = iota

	// OutcomeSkipped means a mandatory field was missing and the record
	// was dropped.
	OutcomeSkipped

	// OutcomeErrored means the record was structurally invalid beyond
	// what defaults can repair.
	OutcomeErrored
)

// Tally counts per-batch normalization results. Silently corrected numeric
// fields are deliberately not counted anywhere.
type Tally struct {
	OK      int
	Skipped int
	Errored int
}

// Normalizer converts raw terminal records into canonical typed records.
type Normalizer struct {
	log *logging.Logger
}

// NewNormalizer creates a Normalizer. The logger may be nil.
func NewNormalizer(log *logging.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// User normalizes a raw roster entry. It never fails: a malformed uid
// defaults to 0 and absent optional fields default to empty strings.
func (n *Normalizer) User(raw terminal.UserRecordRaw) UserRecord {
	return UserRecord{
		UID:       coerceInt(raw.UID),
		UserID:    strings.TrimSpace(raw.UserID),
		Name:      raw.Name,
		Privilege: PrivilegeFromCode(raw.Privilege),
		Password:  raw.Password,
		GroupID:   raw.GroupID,
		Card:      raw.Card,
	}
}

// Users normalizes a raw roster in order.
func (n *Normalizer) Users(raws []terminal.UserRecordRaw) []UserRecord {
	users := make([]UserRecord, 0, len(raws))
	for _, raw := range raws {
		users = append(users, n.User(raw))
	}
	return users
}

// Attendance normalizes one raw punch.
//
// uid, status and punch are coerced to integers, defaulting to 0 on
// malformed input; that correction is silent, neither a skip nor an error.
// A record without a user_id (after trimming) or without a timestamp is
// Skipped. A user_id carrying invalid UTF-8 or control bytes is Errored:
// it cannot key a persisted row.
func (n *Normalizer) Attendance(raw terminal.AttendanceEventRaw) (AttendanceEvent, Outcome) {
	userID := strings.TrimSpace(raw.UserID)
	if !validIdentity(userID) {
		return AttendanceEvent{}, OutcomeErrored
	}
	if userID == "" || raw.Timestamp.IsZero() {
		return AttendanceEvent{}, OutcomeSkipped
	}

	return AttendanceEvent{
		UID:       coerceInt(raw.UID),
		UserID:    userID,
		Timestamp: raw.Timestamp,
		Status:    Status(coerceInt(raw.Status)),
		Punch:     coerceInt(raw.Punch),
	}, OutcomeOK
}

// AttendanceBatch normalizes a whole fetch, tallying skips and errors. Only
// the first few errored records are logged verbosely.
func (n *Normalizer) AttendanceBatch(raws []terminal.AttendanceEventRaw) ([]AttendanceEvent, Tally) {
	events := make([]AttendanceEvent, 0, len(raws))
	var tally Tally

	for i, raw := range raws {
		event, outcome := n.Attendance(raw)
		switch outcome {
		case OutcomeOK:
			tally.OK++
			events = append(events, event)
		case OutcomeSkipped:
			tally.Skipped++
		case OutcomeErrored:
			tally.Errored++
			if n.log != nil && tally.Errored <= maxVerboseErrors {
				n.log.Warn("malformed attendance record",
					"index", i,
					"uid", raw.UID,
					"timestamp", raw.Timestamp,
				)
			}
		}
	}

	if n.log != nil && tally.Errored > maxVerboseErrors {
		n.log.Warn("further malformed attendance records suppressed",
			"total_errors", tally.Errored,
		)
	}
	return events, tally
}

// coerceInt converts text to an integer, defaulting to 0 on malformed input.
func coerceInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// validIdentity reports whether a user_id is storable: valid UTF-8 with no
// control bytes. Empty is valid here; emptiness is the skip rule's concern.
func validIdentity(userID string) bool {
	if !utf8.ValidString(userID) {
		return false
	}
	for _, r := range userID {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
