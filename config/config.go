// Package config handles configuration for the leave tracker server,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the server.
//
// Fields:
//   - Addr: HTTP bind address.
//   - DatabasePath: SQLite database file path (":memory:" for ephemeral).
//   - SessionSecret: HMAC secret for signing session JWTs (HS256).
//     Do not use the test default in prod.
//   - SessionTTL: lifetime of issued session cookies.
//   - StoreTimeout: per-call deadline applied to store operations.
//   - AllowedOrigins: CORS origins for the browser frontend.
//   - Seed: when true, load demo accounts and sample leaves on startup.
type Config struct {
	Addr           string
	DatabasePath   string
	SessionSecret  string
	SessionTTL     time.Duration
	StoreTimeout   time.Duration
	AllowedOrigins []string
	Seed           bool
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":5000"
	c.DatabasePath = "./leave_tracker.db"
	c.SessionSecret = "your-secret-key-change-in-production"
	c.SessionTTL = 24 * time.Hour
	c.StoreTimeout = 5 * time.Second
	c.AllowedOrigins = []string{"*"}
	c.Seed = false
}

// Load builds a Config by applying defaults, then overlaying values from an
// optional JSON file and finally from command-line flags.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
