// Package config loads and validates zkfleet configuration.
//
// Configuration is read from a YAML file, starting from hardcoded defaults,
// with selected values overridable through ZKFLEET_* environment variables.
//
// Loading order:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Example:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
