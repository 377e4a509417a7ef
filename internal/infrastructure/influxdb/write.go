package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePunch records one live punch event.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceIP: The terminal the punch came from
//   - userID: The employee code on the punch
//   - status: The raw punch status code
func (c *Client) WritePunch(deviceIP, userID string, status int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"punch",
		map[string]string{
			"device_ip": deviceIP,
			"status":    statusTag(status),
		},
		map[string]interface{}{
			"user_id": userID,
			"count":   1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSyncSummary records the outcome of one device sync.
//
// Parameters:
//   - kind: The run kind ("users" or "attendance")
//   - deviceIP: The synced terminal
//   - fetched, inserted, skipped, errored: The per-device counters
func (c *Client) WriteSyncSummary(kind, deviceIP string, fetched, inserted, skipped, errored int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_sync",
		map[string]string{
			"kind":      kind,
			"device_ip": deviceIP,
		},
		map[string]interface{}{
			"fetched":  fetched,
			"inserted": inserted,
			"skipped":  skipped,
			"errored":  errored,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteFleetRun records the outcome of a whole fleet run.
//
// Parameters:
//   - kind: The run kind
//   - attempted, succeeded, failed: Device counters for the run
//   - total: Records fetched across the fleet
//   - duration: Wall-clock run time
func (c *Client) WriteFleetRun(kind string, attempted, succeeded, failed, total int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"fleet_run",
		map[string]string{
			"kind": kind,
		},
		map[string]interface{}{
			"attempted":   attempted,
			"succeeded":   succeeded,
			"failed":      failed,
			"total":       total,
			"duration_ms": duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// statusTag renders a punch status as a low-cardinality tag value.
func statusTag(status int) string {
	switch status {
	case 0:
		return "check_in"
	case 1:
		return "check_out"
	case 2:
		return "break_out"
	case 3:
		return "break_in"
	case 4:
		return "ot_in"
	case 5:
		return "ot_out"
	default:
		return "unknown"
	}
}
