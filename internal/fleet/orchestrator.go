package fleet

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/zkfleet/zkfleet-core/internal/attendance"
	"github.com/zkfleet/zkfleet-core/internal/infrastructure/config"
	"github.com/zkfleet/zkfleet-core/internal/infrastructure/logging"
	"github.com/zkfleet/zkfleet-core/internal/terminal"
)

// Orchestrator drives synchronization runs over the fleet.
//
// Devices are visited strictly sequentially; within a device, operations
// block until completion or the driver timeout. The orchestrator owns the
// session lifecycle and failure isolation; it holds no ambient session state
// between calls.
type Orchestrator struct {
	dialer terminal.Dialer
	opts   terminal.DialOptions
	store  *attendance.Store
	norm   *attendance.Normalizer
	log    *logging.Logger
}

// Deps holds the orchestrator's dependencies.
type Deps struct {
	Dialer terminal.Dialer
	Fleet  config.Fleet
	Store  *attendance.Store
	Logger *logging.Logger
}

// New creates an Orchestrator.
func New(deps Deps) (*Orchestrator, error) {
	if deps.Dialer == nil {
		return nil, ErrNoDialer
	}
	if deps.Store == nil {
		return nil, ErrNoStore
	}
	log := deps.Logger
	if log == nil {
		log = logging.Default()
	}
	return &Orchestrator{
		dialer: deps.Dialer,
		opts: terminal.DialOptions{
			Port:     deps.Fleet.Port,
			Timeout:  time.Duration(deps.Fleet.Timeout) * time.Second,
			CommKey:  deps.Fleet.CommKey,
			ForceUDP: deps.Fleet.ForceUDP,
		},
		store: deps.Store,
		norm:  attendance.NewNormalizer(log),
		log:   log,
	}, nil
}

// withSession dials a device, places it into maintenance mode, runs fn, and
// releases on every exit path. Release actions are best-effort: their
// failures are logged and swallowed, never overriding the fetch outcome.
func (o *Orchestrator) withSession(dev DeviceDescriptor, fn func(terminal.Session) error) error {
	sess, err := o.dialer.Dial(dev.IP, o.opts)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", dev.IP, err)
	}
	defer func() {
		if err := sess.Enable(); err != nil {
			o.log.Debug("enable on release failed", "ip", dev.IP, "error", err)
		}
		if err := sess.Disconnect(); err != nil {
			o.log.Debug("disconnect on release failed", "ip", dev.IP, "error", err)
		}
	}()

	if err := sess.Disable(); err != nil {
		return fmt.Errorf("disabling %s: %w", dev.IP, err)
	}
	return fn(sess)
}

// SyncUsers fetches and persists the roster of one device. The returned
// records are the normalized roster; the summary is the store outcome.
func (o *Orchestrator) SyncUsers(ctx context.Context, dev DeviceDescriptor) ([]attendance.UserRecord, attendance.Summary, error) {
	var (
		users   []attendance.UserRecord
		summary attendance.Summary
	)

	err := o.withSession(dev, func(sess terminal.Session) error {
		raws, err := sess.Users()
		if err != nil {
			return fmt.Errorf("fetching users from %s: %w", dev.IP, err)
		}
		users = o.norm.Users(raws)
		if len(users) == 0 {
			return nil
		}

		summary, err = o.store.UpsertUsers(ctx, dev.IP, users)
		if err != nil {
			return fmt.Errorf("persisting users from %s: %w", dev.IP, err)
		}
		return nil
	})
	if err != nil {
		return nil, attendance.Summary{}, err
	}

	o.log.Info("users synced",
		"ip", dev.IP, "device", dev.Name, "fetched", len(users), "stored", summary.Inserted)
	return users, summary, nil
}

// SyncAttendance fetches, normalizes and persists the punch log of one
// device. When names is nil the roster is fetched in the same session and a
// fresh index is built, so persisted punches always carry names.
//
// The whole fetch is normalized before anything reaches the store; no
// partial application of a single fetch is observable.
func (o *Orchestrator) SyncAttendance(ctx context.Context, dev DeviceDescriptor, names attendance.NameIndex) (int, attendance.Summary, error) {
	var (
		fetched int
		summary attendance.Summary
	)

	err := o.withSession(dev, func(sess terminal.Session) error {
		if names == nil {
			rawUsers, err := sess.Users()
			if err != nil {
				return fmt.Errorf("fetching roster from %s: %w", dev.IP, err)
			}
			names = attendance.BuildNameIndex(o.norm.Users(rawUsers))
		}

		raws, err := sess.Attendance()
		if err != nil {
			return fmt.Errorf("fetching attendance from %s: %w", dev.IP, err)
		}
		fetched = len(raws)

		events, tally := o.norm.AttendanceBatch(raws)
		storeSummary, err := o.store.AppendAttendance(ctx, dev.IP, events, names)
		if err != nil {
			return fmt.Errorf("persisting attendance from %s: %w", dev.IP, err)
		}

		summary = attendance.Summary{
			Inserted: storeSummary.Inserted,
			Skipped:  tally.Skipped,
			Errored:  tally.Errored + storeSummary.Errored,
		}
		return nil
	})
	if err != nil {
		return 0, attendance.Summary{}, err
	}

	o.log.Info("attendance synced",
		"ip", dev.IP, "device", dev.Name, "fetched", fetched,
		"inserted", summary.Inserted, "skipped", summary.Skipped, "errors", summary.Errored)
	return fetched, summary, nil
}

// RunFleet performs a sync of the given kind over every device, in order.
// A failure on device i never prevents attempts on i+1..n; failures are
// recorded in the report with the device identity and the loop continues.
// Context cancellation stops the loop between devices.
func (o *Orchestrator) RunFleet(ctx context.Context, devices []DeviceDescriptor, kind RunKind) FleetReport {
	report := newReport(kind)

	for i, dev := range devices {
		if ctx.Err() != nil {
			o.log.Warn("fleet run cancelled", "remaining", len(devices)-i)
			break
		}
		report.Attempted++
		o.log.Info("syncing device",
			"progress", fmt.Sprintf("%d/%d", i+1, len(devices)),
			"ip", dev.IP, "device", dev.Name)

		var (
			fetched int
			summary attendance.Summary
			err     error
		)
		switch kind {
		case RunUsers:
			var users []attendance.UserRecord
			users, summary, err = o.SyncUsers(ctx, dev)
			fetched = len(users)
		case RunAttendance:
			fetched, summary, err = o.SyncAttendance(ctx, dev, nil)
		default:
			err = fmt.Errorf("unknown run kind %q", kind)
		}

		if err != nil {
			o.log.Error("device sync failed", "ip", dev.IP, "device", dev.Name, "error", err)
			report.Failed = append(report.Failed, FailedDevice{
				Name: dev.Name, IP: dev.IP, Error: err.Error(),
			})
			continue
		}

		report.Succeeded++
		report.Total += fetched
		report.Results = append(report.Results, DeviceResult{
			Name: dev.Name, IP: dev.IP, Fetched: fetched, Summary: summary,
		})
	}

	report.Finished = time.Now().UTC()
	o.log.Info("fleet run complete",
		"run_id", report.RunID, "kind", string(report.Kind),
		"attempted", report.Attempted, "succeeded", report.Succeeded,
		"failed", len(report.Failed), "total", report.Total)
	return report
}

// PushUser writes a roster entry to one device, with the same session
// lifecycle discipline as the fetch paths.
func (o *Orchestrator) PushUser(dev DeviceDescriptor, user attendance.UserRecord) error {
	return o.withSession(dev, func(sess terminal.Session) error {
		raw := terminal.UserRecordRaw{
			UID:       strconv.Itoa(user.UID),
			UserID:    user.UserID,
			Name:      user.Name,
			Privilege: user.Privilege.Code(),
			Password:  user.Password,
			GroupID:   user.GroupID,
			Card:      user.Card,
		}
		if err := sess.SetUser(raw); err != nil {
			return fmt.Errorf("setting user uid=%d on %s: %w", user.UID, dev.IP, err)
		}
		return nil
	})
}

// RemoveUser deletes a roster entry from one device.
func (o *Orchestrator) RemoveUser(dev DeviceDescriptor, uid int) error {
	return o.withSession(dev, func(sess terminal.Session) error {
		if err := sess.DeleteUser(uid); err != nil {
			return fmt.Errorf("deleting user uid=%d on %s: %w", uid, dev.IP, err)
		}
		return nil
	})
}

// TestVoice makes one device play its audio test prompt, confirming it is
// reachable and responsive without touching its data.
func (o *Orchestrator) TestVoice(dev DeviceDescriptor) error {
	sess, err := o.dialer.Dial(dev.IP, o.opts)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", dev.IP, err)
	}
	defer func() {
		if err := sess.Disconnect(); err != nil {
			o.log.Debug("disconnect on release failed", "ip", dev.IP, "error", err)
		}
	}()

	if err := sess.TestVoice(); err != nil {
		return fmt.Errorf("voice test on %s: %w", dev.IP, err)
	}
	return nil
}

// LiveSession dials a device without entering maintenance mode, for live
// capture. The caller owns the session and must Disconnect it.
func (o *Orchestrator) LiveSession(dev DeviceDescriptor) (terminal.Session, error) {
	sess, err := o.dialer.Dial(dev.IP, o.opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", dev.IP, err)
	}
	return sess, nil
}
