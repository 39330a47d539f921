package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// jsonConfig is the intermediate shape for JSON config files. Durations are
// plain strings in time.ParseDuration syntax ("24h", "5s"). Zero values mean
// "keep the current setting" so a file can override just a subset.
type jsonConfig struct {
	Addr           string   `json:"addr"`
	DatabasePath   string   `json:"database_path"`
	SessionSecret  string   `json:"session_secret"`
	SessionTTL     string   `json:"session_ttl"`
	StoreTimeout   string   `json:"store_timeout"`
	AllowedOrigins []string `json:"allowed_origins"`
	Seed           *bool    `json:"seed"`
}

// parseJson overlays values from the JSON file named by the -config flag,
// if present. Flags parsed afterwards still win.
func parseJson(config *Config, args []string) error {
	path := configFileArg(args)
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(raw, &jc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if jc.Addr != "" {
		config.Addr = jc.Addr
	}
	if jc.DatabasePath != "" {
		config.DatabasePath = jc.DatabasePath
	}
	if jc.SessionSecret != "" {
		config.SessionSecret = jc.SessionSecret
	}
	if jc.SessionTTL != "" {
		d, err := time.ParseDuration(jc.SessionTTL)
		if err != nil {
			return fmt.Errorf("invalid session_ttl: %w", err)
		}
		config.SessionTTL = d
	}
	if jc.StoreTimeout != "" {
		d, err := time.ParseDuration(jc.StoreTimeout)
		if err != nil {
			return fmt.Errorf("invalid store_timeout: %w", err)
		}
		config.StoreTimeout = d
	}
	if len(jc.AllowedOrigins) > 0 {
		config.AllowedOrigins = jc.AllowedOrigins
	}
	if jc.Seed != nil {
		config.Seed = *jc.Seed
	}
	return nil
}

// configFileArg extracts the -config value without running the full flag
// set, so the overlay order stays defaults -> JSON -> flags.
func configFileArg(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		for _, name := range []string{"-config", "--config"} {
			if arg == name && i+1 < len(args) {
				return args[i+1]
			}
			if strings.HasPrefix(arg, name+"=") {
				return strings.TrimPrefix(arg, name+"=")
			}
		}
	}
	return ""
}
