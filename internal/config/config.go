// Package config defines service configuration structures and loading hooks.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr is the loopback address the host shell calls, e.g. "127.0.0.1:9080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite file holding the scores table.
	DBPath string `koanf:"db_path"`

	// DefaultTopLimit is used by GET /scores when no limit is given.
	DefaultTopLimit int `koanf:"default_top_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            "127.0.0.1:9080",
		DBPath:          "scores.db",
		DefaultTopLimit: 5,
	}
}
