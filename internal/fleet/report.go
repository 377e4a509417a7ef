package fleet

import (
	"time"

	"github.com/google/uuid"

	"github.com/zkfleet/zkfleet-core/internal/attendance"
)

// RunKind identifies what a fleet run synchronized.
type RunKind string

const (
	RunUsers      RunKind = "users"
	RunAttendance RunKind = "attendance"
)

// FailedDevice identifies a device whose sync failed, with the cause.
type FailedDevice struct {
	Name  string `json:"name"`
	IP    string `json:"ip"`
	Error string `json:"error"`
}

// DeviceResult is the per-device outcome of a successful sync.
type DeviceResult struct {
	Name    string             `json:"name"`
	IP      string             `json:"ip"`
	Fetched int                `json:"fetched"`
	Summary attendance.Summary `json:"summary"`
}

// FleetReport is the structured outcome of one fleet run. Every per-run
// outcome is in here; nothing propagates past the orchestration boundary as
// a raised error.
type FleetReport struct {
	RunID     string         `json:"run_id"`
	Kind      RunKind        `json:"kind"`
	Started   time.Time      `json:"started"`
	Finished  time.Time      `json:"finished"`
	Attempted int            `json:"attempted"`
	Succeeded int            `json:"succeeded"`
	Failed    []FailedDevice `json:"failed"`
	Total     int            `json:"total"`
	Results   []DeviceResult `json:"results"`
}

// newReport starts a report for a run of the given kind.
func newReport(kind RunKind) FleetReport {
	return FleetReport{
		RunID:   uuid.NewString(),
		Kind:    kind,
		Started: time.Now().UTC(),
	}
}
