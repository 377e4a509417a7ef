package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for zkfleet.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database Database `yaml:"database"`
	Fleet    Fleet    `yaml:"fleet"`
	API      API      `yaml:"api"`
	MQTT     MQTT     `yaml:"mqtt"`
	InfluxDB InfluxDB `yaml:"influxdb"`
	Logging  Logging  `yaml:"logging"`
	Export   Export   `yaml:"export"`
}

// Database contains SQLite database settings.
type Database struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// Fleet contains terminal fleet settings: where the device registry file
// lives and how sessions to individual terminals are dialled.
type Fleet struct {
	// RegistryPath is the device registry document (YAML or JSON) with a
	// top-level "devices" list.
	RegistryPath string `yaml:"registry_path"`

	// Port is the terminal protocol port. ZKTeco terminals listen on 4370.
	Port int `yaml:"port"`

	// Timeout is the per-operation network timeout in seconds.
	Timeout int `yaml:"timeout"`

	// CommKey is the shared secret passed to the protocol driver.
	CommKey int `yaml:"comm_key"`

	// ForceUDP selects UDP transport; most terminal firmware prefers it.
	ForceUDP bool `yaml:"force_udp"`

	// ChunkSize is the attendance bulk-insert chunk size.
	ChunkSize int `yaml:"chunk_size"`
}

// API contains HTTP API server settings.
type API struct {
	Enabled  bool        `yaml:"enabled"`
	Host     string      `yaml:"host"`
	Port     int         `yaml:"port"`
	Timeouts APITimeouts `yaml:"timeouts"`

	// JWTSecret enables bearer-token auth on mutating routes when non-empty.
	JWTSecret string `yaml:"jwt_secret"`
}

// APITimeouts contains HTTP timeout settings in seconds.
type APITimeouts struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// MQTT contains MQTT broker connection settings for the punch event publisher.
type MQTT struct {
	Enabled bool       `yaml:"enabled"`
	Broker  MQTTBroker `yaml:"broker"`
	Auth    MQTTAuth   `yaml:"auth"`
	QoS     int        `yaml:"qos"`
}

// MQTTBroker contains MQTT broker connection details.
type MQTTBroker struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuth contains MQTT authentication credentials.
type MQTTAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// InfluxDB contains InfluxDB connection settings for the sync/punch metrics sink.
type InfluxDB struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// Logging contains logging settings.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Export contains CSV export settings.
type Export struct {
	Dir string `yaml:"dir"`
}

// Load reads configuration from a YAML file and applies environment variable
// overrides. Environment variables follow the pattern ZKFLEET_SECTION_KEY,
// for example ZKFLEET_DATABASE_PATH or ZKFLEET_MQTT_PASSWORD.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: Database{
			Path:        "./data/zkfleet.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Fleet: Fleet{
			RegistryPath: "configs/devices.yaml",
			Port:         4370,
			Timeout:      30,
			CommKey:      0,
			ForceUDP:     true,
			ChunkSize:    1000,
		},
		API: API{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeouts{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		MQTT: MQTT{
			Broker: MQTTBroker{
				Host:     "localhost",
				Port:     1883,
				ClientID: "zkfleet-core",
			},
			QoS: 1,
		},
		InfluxDB: InfluxDB{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Export: Export{
			Dir: "./exports",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ZKFLEET_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("ZKFLEET_REGISTRY_PATH"); v != "" {
		cfg.Fleet.RegistryPath = v
	}
	if v := os.Getenv("ZKFLEET_COMM_KEY"); v != "" {
		if key, err := strconv.Atoi(v); err == nil {
			cfg.Fleet.CommKey = key
		}
	}
	if v := os.Getenv("ZKFLEET_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("ZKFLEET_JWT_SECRET"); v != "" {
		cfg.API.JWTSecret = v
	}
	if v := os.Getenv("ZKFLEET_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("ZKFLEET_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("ZKFLEET_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("ZKFLEET_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.BusyTimeout < 0 {
		errs = append(errs, "database.busy_timeout must not be negative")
	}

	if c.Fleet.RegistryPath == "" {
		errs = append(errs, "fleet.registry_path is required")
	}
	if c.Fleet.Port <= 0 || c.Fleet.Port > 65535 {
		errs = append(errs, "fleet.port must be between 1 and 65535")
	}
	if c.Fleet.Timeout <= 0 {
		errs = append(errs, "fleet.timeout must be positive")
	}
	if c.Fleet.ChunkSize <= 0 {
		errs = append(errs, "fleet.chunk_size must be positive")
	}

	if c.API.Enabled {
		if c.API.Port <= 0 || c.API.Port > 65535 {
			errs = append(errs, "api.port must be between 1 and 65535")
		}
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" {
			errs = append(errs, "influxdb.org is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q is not recognised", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
