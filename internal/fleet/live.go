package fleet

import (
	"context"

	"github.com/zkfleet/zkfleet-core/internal/attendance"
	"github.com/zkfleet/zkfleet-core/internal/infrastructure/logging"
	"github.com/zkfleet/zkfleet-core/internal/terminal"
)

// CapturedEvent is one live punch, enriched and ready for display.
type CapturedEvent struct {
	Seq   int                        `json:"seq"`
	Name  string                     `json:"name"`
	Event attendance.AttendanceEvent `json:"event"`
}

// CaptureSummary is the final accounting of one live-capture run.
type CaptureSummary struct {
	Events   int `json:"events"`
	Timeouts int `json:"timeouts"`
	Dropped  int `json:"dropped"`
}

// EventHandler receives each captured event. Handlers run synchronously on
// the capture loop and should return quickly.
type EventHandler func(CapturedEvent)

// LiveConsumer consumes the unbounded live-capture stream of one session.
//
// Cancellation is cooperative: the context is polled non-blockingly before
// each pull, so stopping takes effect after the in-flight read returns. An
// already-blocked pull cannot be force-aborted; the driver's read timeout
// bounds worst-case latency. The stream is not restartable — arm a fresh one
// to capture again.
type LiveConsumer struct {
	norm  *attendance.Normalizer
	names attendance.NameIndex
	log   *logging.Logger
}

// NewLiveConsumer creates a consumer enriching events through the given name
// index. The index was built from an earlier roster sync; the device is
// never re-queried for names during capture.
func NewLiveConsumer(names attendance.NameIndex, log *logging.Logger) *LiveConsumer {
	if log == nil {
		log = logging.Default()
	}
	return &LiveConsumer{
		norm:  attendance.NewNormalizer(log),
		names: names,
		log:   log,
	}
}

// Run pulls the stream until cancellation or closure, handing each enriched
// event to handler. Cancellation is a normal termination, not a failure.
func (c *LiveConsumer) Run(ctx context.Context, stream terminal.Stream, handler EventHandler) CaptureSummary {
	var summary CaptureSummary

	for {
		if ctx.Err() != nil {
			c.log.Info("live capture stopped", "events", summary.Events)
			return summary
		}

		result := stream.Next()
		switch result.Kind {
		case terminal.LiveTimeout:
			summary.Timeouts++

		case terminal.LiveClosed:
			if result.Err != nil {
				c.log.Warn("live stream closed with error", "error", result.Err)
			} else {
				c.log.Info("live stream closed", "events", summary.Events)
			}
			return summary

		case terminal.LiveEventReceived:
			event, outcome := c.norm.Attendance(result.Event)
			if outcome != attendance.OutcomeOK {
				summary.Dropped++
				continue
			}
			summary.Events++
			handler(CapturedEvent{
				Seq:   summary.Events,
				Name:  c.names.Resolve(event.UID, event.UserID),
				Event: event,
			})
		}
	}
}
