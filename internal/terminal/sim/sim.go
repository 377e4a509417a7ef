// Package sim provides a scripted in-memory terminal driver.
//
// It backs the --simulate run mode and integration-style tests: a Fleet maps
// terminal IPs to scripted devices with a fixed roster, punch log and live
// script, without any network I/O.
package sim

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/zkfleet/zkfleet-core/internal/terminal"
)

// Device is one scripted terminal.
type Device struct {
	// Users and Attendance are returned verbatim by the session.
	Users      []terminal.UserRecordRaw
	Attendance []terminal.AttendanceEventRaw

	// Live is the scripted live-capture sequence, replayed in order.
	// After the script is exhausted the stream reports timeouts forever,
	// mimicking an idle terminal.
	Live []terminal.LiveResult

	// FailDial makes Dial return ErrConnectFailed for this device.
	FailDial bool

	// FailAuth makes Dial return ErrAuthFailed, as a terminal rejecting
	// the comm key does.
	FailAuth bool

	// FailFetch makes Users and Attendance return ErrTimeout.
	FailFetch bool

	// IdleDelay is slept per live-capture timeout once the script is
	// exhausted. Zero keeps unit tests instant; long-running consumers
	// set it to avoid a hot pull loop.
	IdleDelay time.Duration
}

// Fleet is a Dialer over a set of scripted devices keyed by IP.
type Fleet struct {
	mu      sync.Mutex
	devices map[string]*Device
}

// NewFleet creates a Fleet with the given scripted devices.
func NewFleet(devices map[string]*Device) *Fleet {
	if devices == nil {
		devices = make(map[string]*Device)
	}
	return &Fleet{devices: devices}
}

// Add registers or replaces a scripted device.
func (f *Fleet) Add(ip string, d *Device) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices[ip] = d
}

// Dial implements terminal.Dialer.
func (f *Fleet) Dial(ip string, _ terminal.DialOptions) (terminal.Session, error) {
	f.mu.Lock()
	d, ok := f.devices[ip]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: no route to %s", terminal.ErrConnectFailed, ip)
	}
	if d.FailDial {
		return nil, fmt.Errorf("%w: %s refused connection", terminal.ErrConnectFailed, ip)
	}
	if d.FailAuth {
		return nil, fmt.Errorf("%w: %s rejected comm key", terminal.ErrAuthFailed, ip)
	}
	return &session{device: d}, nil
}

// session implements terminal.Session over a scripted device.
type session struct {
	device   *Device
	disabled bool
	closed   bool

	// Calls records the method sequence for test assertions.
	Calls []string
}

func (s *session) record(call string) {
	s.Calls = append(s.Calls, call)
}

func (s *session) Disable() error {
	s.record("disable")
	if s.closed {
		return terminal.ErrSessionClosed
	}
	s.disabled = true
	return nil
}

func (s *session) Enable() error {
	s.record("enable")
	if s.closed {
		return terminal.ErrSessionClosed
	}
	s.disabled = false
	return nil
}

func (s *session) Users() ([]terminal.UserRecordRaw, error) {
	s.record("users")
	if s.closed {
		return nil, terminal.ErrSessionClosed
	}
	if s.device.FailFetch {
		return nil, fmt.Errorf("%w: reading roster", terminal.ErrTimeout)
	}
	out := make([]terminal.UserRecordRaw, len(s.device.Users))
	copy(out, s.device.Users)
	return out, nil
}

func (s *session) Attendance() ([]terminal.AttendanceEventRaw, error) {
	s.record("attendance")
	if s.closed {
		return nil, terminal.ErrSessionClosed
	}
	if s.device.FailFetch {
		return nil, fmt.Errorf("%w: reading punch log", terminal.ErrTimeout)
	}
	out := make([]terminal.AttendanceEventRaw, len(s.device.Attendance))
	copy(out, s.device.Attendance)
	return out, nil
}

func (s *session) LiveCapture() (terminal.Stream, error) {
	s.record("live_capture")
	if s.closed {
		return nil, terminal.ErrSessionClosed
	}
	return &stream{script: s.device.Live, idleDelay: s.device.IdleDelay}, nil
}

func (s *session) SetUser(user terminal.UserRecordRaw) error {
	s.record("set_user")
	if s.closed {
		return terminal.ErrSessionClosed
	}
	for i, existing := range s.device.Users {
		if existing.UID == user.UID {
			s.device.Users[i] = user
			return nil
		}
	}
	s.device.Users = append(s.device.Users, user)
	return nil
}

func (s *session) DeleteUser(uid int) error {
	s.record("delete_user")
	if s.closed {
		return terminal.ErrSessionClosed
	}
	want := strconv.Itoa(uid)
	for i, existing := range s.device.Users {
		if existing.UID == want {
			s.device.Users = append(s.device.Users[:i], s.device.Users[i+1:]...)
			return nil
		}
	}
	return terminal.ErrUserNotFound
}

func (s *session) TestVoice() error {
	s.record("test_voice")
	if s.closed {
		return terminal.ErrSessionClosed
	}
	return nil
}

func (s *session) Disconnect() error {
	s.record("disconnect")
	s.closed = true
	return nil
}

// stream replays a scripted live sequence, then idles with timeouts.
type stream struct {
	script    []terminal.LiveResult
	idleDelay time.Duration
	pos       int
	closed    bool
}

func (st *stream) Next() terminal.LiveResult {
	if st.closed {
		return terminal.LiveResult{Kind: terminal.LiveClosed}
	}
	if st.pos >= len(st.script) {
		time.Sleep(st.idleDelay)
		return terminal.LiveResult{Kind: terminal.LiveTimeout}
	}
	result := st.script[st.pos]
	st.pos++
	if result.Kind == terminal.LiveClosed {
		st.closed = true
	}
	return result
}
