package attendance

import (
	"testing"
	"time"

	"github.com/zkfleet/zkfleet-core/internal/terminal"
)

var punchTime = time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC)

func TestNormalizer_Attendance(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name        string
		raw         terminal.AttendanceEventRaw
		wantOutcome Outcome
		wantEvent   AttendanceEvent
	}{
		{
			name: "clean record",
			raw: terminal.AttendanceEventRaw{
				UID: "7", UserID: "E042", Timestamp: punchTime, Status: "1", Punch: "2",
			},
			wantOutcome: OutcomeOK,
			wantEvent: AttendanceEvent{
				UID: 7, UserID: "E042", Timestamp: punchTime, Status: StatusCheckOut, Punch: 2,
			},
		},
		{
			name: "malformed uid defaults to zero",
			raw: terminal.AttendanceEventRaw{
				UID: "abc", UserID: "E042", Timestamp: punchTime, Status: "0", Punch: "0",
			},
			wantOutcome: OutcomeOK,
			wantEvent: AttendanceEvent{
				UID: 0, UserID: "E042", Timestamp: punchTime, Status: StatusCheckIn, Punch: 0,
			},
		},
		{
			name: "malformed status and punch default to zero",
			raw: terminal.AttendanceEventRaw{
				UID: "7", UserID: "E042", Timestamp: punchTime, Status: "??", Punch: "",
			},
			wantOutcome: OutcomeOK,
			wantEvent: AttendanceEvent{
				UID: 7, UserID: "E042", Timestamp: punchTime, Status: StatusCheckIn, Punch: 0,
			},
		},
		{
			name: "user id trimmed",
			raw: terminal.AttendanceEventRaw{
				UID: "7", UserID: "  E042  ", Timestamp: punchTime,
			},
			wantOutcome: OutcomeOK,
			wantEvent: AttendanceEvent{
				UID: 7, UserID: "E042", Timestamp: punchTime,
			},
		},
		{
			name: "empty user id skipped",
			raw: terminal.AttendanceEventRaw{
				UID: "7", UserID: "   ", Timestamp: punchTime,
			},
			wantOutcome: OutcomeSkipped,
		},
		{
			name: "missing timestamp skipped",
			raw: terminal.AttendanceEventRaw{
				UID: "7", UserID: "E042",
			},
			wantOutcome: OutcomeSkipped,
		},
		{
			name: "invalid utf8 user id errored",
			raw: terminal.AttendanceEventRaw{
				UID: "7", UserID: string([]byte{0xff, 0xfe}), Timestamp: punchTime,
			},
			wantOutcome: OutcomeErrored,
		},
		{
			name: "control bytes in user id errored",
			raw: terminal.AttendanceEventRaw{
				UID: "7", UserID: "E0\x0042", Timestamp: punchTime,
			},
			wantOutcome: OutcomeErrored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, outcome := n.Attendance(tt.raw)
			if outcome != tt.wantOutcome {
				t.Fatalf("outcome = %v, want %v", outcome, tt.wantOutcome)
			}
			if outcome == OutcomeOK && event != tt.wantEvent {
				t.Errorf("event = %+v, want %+v", event, tt.wantEvent)
			}
		})
	}
}

func TestNormalizer_AttendanceBatch(t *testing.T) {
	n := NewNormalizer(nil)

	raws := []terminal.AttendanceEventRaw{
		{UID: "1", UserID: "A", Timestamp: punchTime},
		{UID: "x", UserID: "B", Timestamp: punchTime}, // anomaly, still OK
		{UID: "2", UserID: "", Timestamp: punchTime},  // skip
		{UID: "3", UserID: string([]byte{0xff}), Timestamp: punchTime}, // error
		{UID: "4", UserID: "C", Timestamp: punchTime},
	}

	events, tally := n.AttendanceBatch(raws)

	if len(events) != 3 {
		t.Errorf("len(events) = %d, want 3", len(events))
	}
	want := Tally{OK: 3, Skipped: 1, Errored: 1}
	if tally != want {
		t.Errorf("tally = %+v, want %+v", tally, want)
	}
}

func TestNormalizer_User(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name string
		raw  terminal.UserRecordRaw
		want UserRecord
	}{
		{
			name: "admin threshold",
			raw:  terminal.UserRecordRaw{UID: "5", UserID: "E001", Name: "Ana", Privilege: 14},
			want: UserRecord{UID: 5, UserID: "E001", Name: "Ana", Privilege: PrivilegeAdmin},
		},
		{
			name: "below threshold is default",
			raw:  terminal.UserRecordRaw{UID: "5", UserID: "E001", Privilege: 13},
			want: UserRecord{UID: 5, UserID: "E001", Privilege: PrivilegeDefault},
		},
		{
			name: "malformed uid defaults, optionals stay empty",
			raw:  terminal.UserRecordRaw{UID: "junk", UserID: "E002"},
			want: UserRecord{UID: 0, UserID: "E002", Privilege: PrivilegeDefault},
		},
		{
			name: "optional fields pass through",
			raw: terminal.UserRecordRaw{
				UID: "9", UserID: "E003", Name: "Bo", Password: "pw", GroupID: "2", Card: "12345678",
			},
			want: UserRecord{
				UID: 9, UserID: "E003", Name: "Bo", Privilege: PrivilegeDefault,
				Password: "pw", GroupID: "2", Card: "12345678",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.User(tt.raw); got != tt.want {
				t.Errorf("User() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusCheckIn, "Check-In"},
		{StatusCheckOut, "Check-Out"},
		{StatusBreakOut, "Break-Out"},
		{StatusBreakIn, "Break-In"},
		{StatusOTIn, "OT-In"},
		{StatusOTOut, "OT-Out"},
		{Status(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.Label(); got != tt.want {
			t.Errorf("Status(%d).Label() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
