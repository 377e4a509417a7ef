package influxdb

import (
	"errors"
	"testing"

	"github.com/zkfleet/zkfleet-core/internal/infrastructure/config"
)

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(config.InfluxDB{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestStatusTag(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{0, "check_in"},
		{1, "check_out"},
		{5, "ot_out"},
		{40, "unknown"},
		{-1, "unknown"},
	}
	for _, tt := range tests {
		if got := statusTag(tt.status); got != tt.want {
			t.Errorf("statusTag(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestDisconnectedWritesAreNoOps(t *testing.T) {
	// A zero client is never connected; writes must not panic.
	c := &Client{}
	c.WritePunch("10.0.0.1", "E001", 0)
	c.WriteSyncSummary("users", "10.0.0.1", 1, 1, 0, 0)
	c.WriteFleetRun("attendance", 1, 1, 0, 10, 0)
	c.Flush()
}
