package config

import (
	"flag"
	"io"
	"strings"
	"time"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-addr string      HTTP bind address (e.g., ":5000")
//	-db string        SQLite database path
//	-secret string    session JWT HMAC secret
//	-session-ttl int  session lifetime, hours
//	-timeout int      store operation deadline, seconds
//	-origins string   comma-separated CORS origins
//	-seed             load demo data on startup
//	-config string    path to a JSON config file (read by parseJson)
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("leave-tracker", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.Addr, "addr", config.Addr, "address and port to run server")
	fs.StringVar(&config.DatabasePath, "db", config.DatabasePath, "SQLite database path")
	fs.StringVar(&config.SessionSecret, "secret", config.SessionSecret, "session signing secret")

	sessionTTL := fs.Int("session-ttl", int(config.SessionTTL.Hours()), "session lifetime (in hours)")
	storeTimeout := fs.Int("timeout", int(config.StoreTimeout.Seconds()), "store timeout (in seconds)")

	origins := fs.String("origins", strings.Join(config.AllowedOrigins, ","), "comma-separated CORS origins")
	fs.BoolVar(&config.Seed, "seed", config.Seed, "load demo data on startup")

	// Declared so the shared args slice parses cleanly; consumed by parseJson.
	fs.String("config", "", "path to JSON config file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Hour
	config.StoreTimeout = time.Duration(*storeTimeout) * time.Second
	config.AllowedOrigins = strings.Split(*origins, ",")
	return nil
}
