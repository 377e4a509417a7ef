// zkfleet - Biometric Terminal Fleet Synchronization
//
// This is the main entry point for the zkfleet service. It synchronizes
// user rosters and attendance logs from a fleet of biometric terminals into
// a local SQLite database, streams live punches, and serves an operational
// HTTP API.
//
// Usage:
//
//	zkfleet sync-users [ip]         sync rosters (whole fleet, or one device)
//	zkfleet sync-attendance [ip]    sync punch logs
//	zkfleet live <ip>               stream live punches from one device
//	zkfleet serve                   run the HTTP API server
//	zkfleet devices [ip]            print the device registry, or one device
//	zkfleet users <ip>              print the stored roster of one device
//	zkfleet attendance <ip>         print the stored punch log of one device
//	zkfleet export-users <ip>       write the stored roster to a CSV file
//	zkfleet test-voice <ip>         play the audio test prompt on one device
//
// The -simulate flag replaces the terminal driver with scripted in-memory
// devices, for rehearsing runs without hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/zkfleet/zkfleet-core/migrations"

	"github.com/zkfleet/zkfleet-core/internal/api"
	"github.com/zkfleet/zkfleet-core/internal/attendance"
	"github.com/zkfleet/zkfleet-core/internal/export"
	"github.com/zkfleet/zkfleet-core/internal/fleet"
	"github.com/zkfleet/zkfleet-core/internal/infrastructure/config"
	"github.com/zkfleet/zkfleet-core/internal/infrastructure/database"
	"github.com/zkfleet/zkfleet-core/internal/infrastructure/influxdb"
	"github.com/zkfleet/zkfleet-core/internal/infrastructure/logging"
	"github.com/zkfleet/zkfleet-core/internal/infrastructure/mqtt"
	"github.com/zkfleet/zkfleet-core/internal/terminal"
	"github.com/zkfleet/zkfleet-core/internal/terminal/sim"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles everything a subcommand needs.
type app struct {
	cfg      *config.Config
	log      *logging.Logger
	db       *database.DB
	registry *fleet.Registry
	store    *attendance.Store
	orch     *fleet.Orchestrator
	mqtt     *mqtt.Client     // nil when disabled
	influx   *influxdb.Client // nil when disabled
}

// run is the application logic, separated from main for testability.
func run(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("zkfleet", flag.ContinueOnError)
	simulate := flags.Bool("simulate", false, "use scripted in-memory terminals instead of real hardware")
	configPath := flags.String("config", getConfigPath(), "configuration file path")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		return fmt.Errorf("no command given (sync-users, sync-attendance, live, serve, devices, users, attendance, export-users, test-voice)")
	}
	command, cmdArgs := flags.Arg(0), flags.Args()[1:]

	log := logging.Default()
	log.Info("starting zkfleet", "version", version, "commit", commit, "build_date", date)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", *configPath)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	registry, err := fleet.LoadRegistry(cfg.Fleet.RegistryPath)
	if err != nil {
		return fmt.Errorf("loading device registry: %w", err)
	}
	log.Info("device registry loaded", "path", cfg.Fleet.RegistryPath, "devices", registry.Len())

	store, err := attendance.NewStore(db, cfg.Fleet.ChunkSize, log)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}

	dialer, err := newDialer(*simulate, registry)
	if err != nil {
		return err
	}

	orch, err := fleet.New(fleet.Deps{
		Dialer: dialer,
		Fleet:  cfg.Fleet,
		Store:  store,
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("creating orchestrator: %w", err)
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		registry: registry,
		store:    store,
		orch:     orch,
	}

	// Optional sinks. Only the streaming and serving modes publish.
	if cfg.MQTT.Enabled {
		a.mqtt, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			if closeErr := a.mqtt.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID)
	}
	if cfg.InfluxDB.Enabled {
		a.influx, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer a.influx.Close()
		a.influx.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	switch command {
	case "sync-users":
		return a.runSync(ctx, fleet.RunUsers, cmdArgs)
	case "sync-attendance":
		return a.runSync(ctx, fleet.RunAttendance, cmdArgs)
	case "live":
		return a.runLive(ctx, cmdArgs)
	case "serve":
		return a.runServe(ctx)
	case "devices":
		if len(cmdArgs) > 0 {
			dev, err := registry.ByIP(cmdArgs[0])
			if err != nil {
				return err
			}
			return export.PrintDeviceDetail(os.Stdout, dev)
		}
		return export.PrintDevices(os.Stdout, registry.Devices())
	case "users":
		return a.runUsersTable(ctx, cmdArgs)
	case "attendance":
		return a.runAttendanceTable(ctx, cmdArgs)
	case "test-voice":
		return a.runTestVoice(cmdArgs)
	case "export-users":
		return a.runExportUsers(ctx, cmdArgs)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// runSync performs one sync run over the fleet, or over a single device when
// an ip argument is given, and publishes the report to the optional sinks.
func (a *app) runSync(ctx context.Context, kind fleet.RunKind, args []string) error {
	devices := a.registry.Devices()
	if len(args) > 0 {
		dev, err := a.registry.ByIP(args[0])
		if err != nil {
			return err
		}
		devices = []fleet.DeviceDescriptor{dev}
	}

	report := a.orch.RunFleet(ctx, devices, kind)
	a.publishReport(report)

	fmt.Printf("%s sync: %d/%d devices succeeded, %d records fetched\n",
		report.Kind, report.Succeeded, report.Attempted, report.Total)
	for _, res := range report.Results {
		fmt.Printf("  %-15s %-12s fetched=%d inserted=%d skipped=%d errors=%d\n",
			res.IP, res.Name, res.Fetched,
			res.Summary.Inserted, res.Summary.Skipped, res.Summary.Errored)
	}
	for _, f := range report.Failed {
		fmt.Printf("  %-15s %-12s FAILED: %s\n", f.IP, f.Name, f.Error)
	}

	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d devices failed", len(report.Failed), report.Attempted)
	}
	return nil
}

// publishReport forwards a fleet report to the optional MQTT and InfluxDB sinks.
func (a *app) publishReport(report fleet.FleetReport) {
	if a.mqtt != nil {
		if err := a.mqtt.PublishReport(string(report.Kind), report); err != nil {
			a.log.Warn("publishing report", "error", err)
		}
	}
	if a.influx != nil {
		a.influx.WriteFleetRun(string(report.Kind),
			report.Attempted, report.Succeeded, len(report.Failed), report.Total,
			report.Finished.Sub(report.Started))
		for _, res := range report.Results {
			a.influx.WriteSyncSummary(string(report.Kind), res.IP,
				res.Fetched, res.Summary.Inserted, res.Summary.Skipped, res.Summary.Errored)
		}
	}
}

// runLive streams live punches from one device to stdout and the optional
// sinks until interrupted.
func (a *app) runLive(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("live requires a device ip")
	}
	dev, err := a.registry.ByIP(args[0])
	if err != nil {
		return err
	}

	// Names come from the stored roster; sync-users first for fresh names.
	users, err := a.store.UsersForDevice(ctx, dev.IP)
	if err != nil {
		return fmt.Errorf("loading stored roster: %w", err)
	}
	names := attendance.BuildNameIndex(users)

	sess, err := a.orch.LiveSession(dev)
	if err != nil {
		return err
	}
	defer sess.Disconnect()

	stream, err := sess.LiveCapture()
	if err != nil {
		return fmt.Errorf("arming live capture on %s: %w", dev.IP, err)
	}

	fmt.Printf("live capture on %s (%s), Ctrl+C to stop\n", dev.IP, dev.Name)
	consumer := fleet.NewLiveConsumer(names, a.log)
	summary := consumer.Run(ctx, stream, func(ev fleet.CapturedEvent) {
		name := ev.Name
		if name == "" {
			name = "?"
		}
		fmt.Printf("[%3d] %s  %-10s %-20s %s\n",
			ev.Seq, ev.Event.FormattedTime(), ev.Event.UserID, name, ev.Event.Status.Label())

		if a.mqtt != nil {
			if err := a.mqtt.PublishPunch(dev.IP, ev); err != nil {
				a.log.Warn("publishing punch", "error", err)
			}
		}
		if a.influx != nil {
			a.influx.WritePunch(dev.IP, ev.Event.UserID, int(ev.Event.Status))
		}
	})

	fmt.Printf("capture finished: %d events, %d dropped\n", summary.Events, summary.Dropped)
	return nil
}

// runServe runs the HTTP API server until interrupted.
func (a *app) runServe(ctx context.Context) error {
	if !a.cfg.API.Enabled {
		return fmt.Errorf("api is disabled in configuration")
	}

	server, err := api.New(api.Deps{
		Config:       a.cfg.API,
		Logger:       a.log,
		Registry:     a.registry,
		Orchestrator: a.orch,
		Store:        a.store,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			a.log.Error("error closing API server", "error", closeErr)
		}
	}()

	a.log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return nil
}

// runUsersTable prints the stored roster of one device.
func (a *app) runUsersTable(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("users requires a device ip")
	}
	dev, err := a.registry.ByIP(args[0])
	if err != nil {
		return err
	}
	users, err := a.store.UsersForDevice(ctx, dev.IP)
	if err != nil {
		return fmt.Errorf("loading stored roster: %w", err)
	}
	return export.PrintUsers(os.Stdout, users)
}

// runAttendanceTable prints the stored punch log of one device.
func (a *app) runAttendanceTable(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("attendance requires a device ip")
	}
	dev, err := a.registry.ByIP(args[0])
	if err != nil {
		return err
	}
	events, err := a.store.AttendanceForDevice(ctx, dev.IP, 0)
	if err != nil {
		return fmt.Errorf("loading stored punches: %w", err)
	}
	users, err := a.store.UsersForDevice(ctx, dev.IP)
	if err != nil {
		return fmt.Errorf("loading stored roster: %w", err)
	}
	return export.PrintAttendance(os.Stdout, events, attendance.BuildNameIndex(users))
}

// runTestVoice plays the audio test prompt on one device.
func (a *app) runTestVoice(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("test-voice requires a device ip")
	}
	dev, err := a.registry.ByIP(args[0])
	if err != nil {
		return err
	}
	if err := a.orch.TestVoice(dev); err != nil {
		return err
	}
	fmt.Printf("voice test played on %s (%s)\n", dev.IP, dev.Name)
	return nil
}

// runExportUsers writes the stored roster of one device to a CSV file.
func (a *app) runExportUsers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("export-users requires a device ip")
	}
	dev, err := a.registry.ByIP(args[0])
	if err != nil {
		return err
	}
	users, err := a.store.UsersForDevice(ctx, dev.IP)
	if err != nil {
		return fmt.Errorf("loading stored roster: %w", err)
	}

	path, err := export.SaveUsersCSV(a.cfg.Export.Dir, dev.IP, users)
	if err != nil {
		return err
	}
	fmt.Printf("exported %d users to %s\n", len(users), path)
	return nil
}

// newDialer selects the terminal driver. With -simulate each registry device
// becomes a scripted terminal with a small demo roster and punch log.
// Without it a protocol driver must be linked in; none ships in this build.
func newDialer(simulate bool, registry *fleet.Registry) (terminal.Dialer, error) {
	if !simulate {
		return nil, fmt.Errorf("no terminal protocol driver is linked into this build; run with -simulate")
	}

	simFleet := sim.NewFleet(nil)
	base := time.Now().Add(-time.Hour)
	for i, dev := range registry.Devices() {
		uid := i*10 + 1
		user := terminal.UserRecordRaw{
			UID:    fmt.Sprintf("%d", uid),
			UserID: fmt.Sprintf("E%03d", uid),
			Name:   fmt.Sprintf("Demo User %d", uid),
		}
		simFleet.Add(dev.IP, &sim.Device{
			Users: []terminal.UserRecordRaw{user},
			Attendance: []terminal.AttendanceEventRaw{
				{UID: user.UID, UserID: user.UserID, Timestamp: base.Add(time.Duration(i) * time.Minute), Status: "0", Punch: "0"},
				{UID: user.UID, UserID: user.UserID, Timestamp: base.Add(time.Duration(i)*time.Minute + 30*time.Minute), Status: "1", Punch: "0"},
			},
			Live: []terminal.LiveResult{
				{Kind: terminal.LiveTimeout},
				{Kind: terminal.LiveEventReceived, Event: terminal.AttendanceEventRaw{
					UID: user.UID, UserID: user.UserID, Timestamp: time.Now(), Status: "0", Punch: "0",
				}},
			},
			// Serve mode keeps a capture loop running per device;
			// idle pulls must not spin.
			IdleDelay: 500 * time.Millisecond,
		})
	}
	return simFleet, nil
}

// getConfigPath returns the default configuration file path, honouring the
// ZKFLEET_CONFIG environment variable.
func getConfigPath() string {
	if path := os.Getenv("ZKFLEET_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
