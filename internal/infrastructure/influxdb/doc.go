// Package influxdb provides InfluxDB connectivity for fleet telemetry.
//
// It wraps the official influxdb-client-go v2 library with connection
// management and non-blocking batched writes.
//
// # Purpose
//
// This package handles time-series storage for:
//   - Live punch events from capture sessions
//   - Per-device sync summaries (fetched/inserted/skipped/errors)
//   - Whole-fleet run outcomes
//
// # Usage
//
//	cfg := config.InfluxDB{
//	    Enabled: true,
//	    URL:     "http://localhost:8086",
//	    Token:   "your-token",
//	    Org:     "zkfleet",
//	    Bucket:  "fleet_metrics",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WritePunch("192.168.1.201", "E001", 0)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Writes are non-blocking; batch errors surface via SetOnError. Connection
// and health check errors are returned directly. When the sink is disabled
// in configuration, Connect returns ErrDisabled and callers run without
// telemetry.
package influxdb
