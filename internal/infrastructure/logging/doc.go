// Package logging provides structured logging for zkfleet.
//
// It wraps log/slog with consistent defaults: JSON output for production,
// text for development, level filtering, and service/version attributes on
// every entry.
//
// Usage:
//
//	log := logging.New(cfg.Logging, "1.0.0")
//	log.Info("sync started", "devices", 4)
//	log.Error("device unreachable", "ip", ip, "error", err)
//
// Never log comm keys, passwords, or card numbers.
package logging
