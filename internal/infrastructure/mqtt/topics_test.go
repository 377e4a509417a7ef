package mqtt

import (
	"strings"
	"testing"
)

func TestTopics(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"punch", Topics{}.Punch("192.168.1.201"), "zkfleet/punch/192-168-1-201"},
		{"report", Topics{}.Report("attendance"), "zkfleet/report/attendance"},
		{"status", Topics{}.SystemStatus(), "zkfleet/system/status"},
		{"wildcards stripped", Topics{}.Punch("a/+/#"), "zkfleet/punch/a---"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestStatusPayload(t *testing.T) {
	withReason := statusPayload("zkfleet-core", "offline", "graceful_shutdown")
	if want := `"reason":"graceful_shutdown"`; !strings.Contains(withReason, want) {
		t.Errorf("payload %q missing %q", withReason, want)
	}
	plain := statusPayload("zkfleet-core", "online", "")
	if strings.Contains(plain, "reason") {
		t.Errorf("online payload %q should carry no reason", plain)
	}
}
