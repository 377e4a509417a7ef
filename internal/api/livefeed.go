package api

import (
	"context"

	"github.com/zkfleet/zkfleet-core/internal/attendance"
	"github.com/zkfleet/zkfleet-core/internal/fleet"
)

// LivePunch is the payload broadcast to WebSocket clients for one captured
// punch, tagged with the terminal it came from.
type LivePunch struct {
	DeviceIP string `json:"device_ip"`
	fleet.CapturedEvent
}

// startLiveFeeds arms a live capture on every registry device and fans the
// punches into the hub. Feeds are best-effort: an unreachable terminal is
// logged and skipped, and a feed that ends (stream closure, shutdown) stays
// down until the server restarts.
func (s *Server) startLiveFeeds(ctx context.Context) {
	for _, dev := range s.registry.Devices() {
		go s.feedLivePunches(ctx, dev)
	}
}

// feedLivePunches runs one device's capture loop, enriching events through
// the stored roster and broadcasting them to connected clients.
func (s *Server) feedLivePunches(ctx context.Context, dev fleet.DeviceDescriptor) {
	users, err := s.store.UsersForDevice(ctx, dev.IP)
	if err != nil {
		s.logger.Warn("live feed: loading stored roster", "ip", dev.IP, "error", err)
	}
	names := attendance.BuildNameIndex(users)

	sess, err := s.orchestrator.LiveSession(dev)
	if err != nil {
		s.logger.Warn("live feed unavailable", "ip", dev.IP, "error", err)
		return
	}
	defer sess.Disconnect() //nolint:errcheck // best-effort release

	stream, err := sess.LiveCapture()
	if err != nil {
		s.logger.Warn("live feed: arming capture", "ip", dev.IP, "error", err)
		return
	}

	s.logger.Info("live feed armed", "ip", dev.IP, "device", dev.Name)
	consumer := fleet.NewLiveConsumer(names, s.logger)
	summary := consumer.Run(ctx, stream, func(ev fleet.CapturedEvent) {
		s.hub.BroadcastPunch(LivePunch{DeviceIP: dev.IP, CapturedEvent: ev})
	})
	s.logger.Info("live feed ended", "ip", dev.IP,
		"events", summary.Events, "dropped", summary.Dropped)
}
