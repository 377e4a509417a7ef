package fleet

import (
	"context"
	"testing"
	"time"

	"github.com/zkfleet/zkfleet-core/internal/attendance"
	"github.com/zkfleet/zkfleet-core/internal/terminal"
)

// scriptStream replays a fixed sequence of results, then reports closure.
type scriptStream struct {
	script []terminal.LiveResult
	pos    int
	pulls  int
}

func (s *scriptStream) Next() terminal.LiveResult {
	s.pulls++
	if s.pos >= len(s.script) {
		return terminal.LiveResult{Kind: terminal.LiveClosed}
	}
	r := s.script[s.pos]
	s.pos++
	return r
}

func liveEvent(uid, userID string, at time.Time) terminal.LiveResult {
	return terminal.LiveResult{
		Kind:  terminal.LiveEventReceived,
		Event: terminal.AttendanceEventRaw{UID: uid, UserID: userID, Timestamp: at, Status: "0", Punch: "0"},
	}
}

func timeout() terminal.LiveResult {
	return terminal.LiveResult{Kind: terminal.LiveTimeout}
}

func TestLiveConsumer_CancelAfterEvent(t *testing.T) {
	// A quiet stretch, one punch, then the operator stops the capture. The
	// loop must exit on the next poll with exactly one event delivered.
	at := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	stream := &scriptStream{script: []terminal.LiveResult{
		timeout(), timeout(), timeout(), timeout(), timeout(),
		liveEvent("1", "E001", at),
		timeout(), timeout(), // never reached after cancel
	}}

	names := attendance.NameIndex{"1": "Ana"}
	consumer := NewLiveConsumer(names, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var captured []CapturedEvent
	summary := consumer.Run(ctx, stream, func(ev CapturedEvent) {
		captured = append(captured, ev)
		cancel()
	})

	if summary.Events != 1 {
		t.Errorf("Events = %d, want 1", summary.Events)
	}
	if summary.Timeouts != 5 {
		t.Errorf("Timeouts = %d, want 5", summary.Timeouts)
	}
	if len(captured) != 1 {
		t.Fatalf("captured %d events, want 1", len(captured))
	}
	if captured[0].Seq != 1 {
		t.Errorf("Seq = %d, want 1", captured[0].Seq)
	}
	if captured[0].Name != "Ana" {
		t.Errorf("Name = %q, want Ana", captured[0].Name)
	}
	if stream.pulls != 6 {
		t.Errorf("pulls = %d, want 6 (no pull after cancellation)", stream.pulls)
	}
}

func TestLiveConsumer_StreamClosure(t *testing.T) {
	at := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	stream := &scriptStream{script: []terminal.LiveResult{
		liveEvent("1", "E001", at),
		liveEvent("2", "E002", at.Add(time.Minute)),
	}}

	consumer := NewLiveConsumer(attendance.NameIndex{}, nil)
	summary := consumer.Run(context.Background(), stream, func(CapturedEvent) {})

	if summary.Events != 2 {
		t.Errorf("Events = %d, want 2", summary.Events)
	}
	if summary.Timeouts != 0 {
		t.Errorf("Timeouts = %d, want 0", summary.Timeouts)
	}
}

func TestLiveConsumer_DropsUnusableEvents(t *testing.T) {
	at := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	stream := &scriptStream{script: []terminal.LiveResult{
		liveEvent("1", "", at),     // no user id, dropped
		liveEvent("2", "E002", at), // kept
	}}

	consumer := NewLiveConsumer(attendance.NameIndex{}, nil)
	var seqs []int
	summary := consumer.Run(context.Background(), stream, func(ev CapturedEvent) {
		seqs = append(seqs, ev.Seq)
	})

	if summary.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", summary.Dropped)
	}
	if summary.Events != 1 {
		t.Errorf("Events = %d, want 1", summary.Events)
	}
	if len(seqs) != 1 || seqs[0] != 1 {
		t.Errorf("delivered seqs = %v, want [1] (drops do not consume sequence numbers)", seqs)
	}
}

func TestLiveConsumer_UnknownNameFallsBackToEmpty(t *testing.T) {
	at := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	stream := &scriptStream{script: []terminal.LiveResult{
		liveEvent("99", "E099", at),
	}}

	consumer := NewLiveConsumer(attendance.NameIndex{"1": "Ana"}, nil)
	var got CapturedEvent
	consumer.Run(context.Background(), stream, func(ev CapturedEvent) { got = ev })

	if got.Name != "" {
		t.Errorf("Name = %q, want empty for an unknown punch", got.Name)
	}
}
