/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave tracker server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults -> JSON file -> flags)
  2. Initialize SQLite store and run migrations
  3. Optionally seed demo data
  4. Create notification hub, engine, sessions, handlers
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -addr         HTTP bind address (default: :5000)
  -db           SQLite database path (default: ./leave_tracker.db)
                Use ":memory:" for in-memory database
  -secret       session signing secret
  -session-ttl  session lifetime in hours
  -timeout      store operation deadline in seconds
  -origins      comma-separated CORS origins
  -seed         load demo accounts and sample leaves
  -config       path to a JSON config file

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with demo data
  ./server -db=":memory:" -seed

  # Run on a different port with a real secret
  ./server -addr=":8080" -secret="$(openssl rand -hex 32)"

SEE ALSO:
  - config/config.go: Configuration layering
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/leave-tracker/api"
	"github.com/warp/leave-tracker/auth"
	"github.com/warp/leave-tracker/config"
	"github.com/warp/leave-tracker/leave"
	"github.com/warp/leave-tracker/notify"
	"github.com/warp/leave-tracker/store/sqlite"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Initialize store
	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if cfg.Seed {
		if err := store.Seed(ctx); err != nil {
			logger.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
		logger.Info("demo data loaded")
	}

	// Wire dependencies
	hub := notify.NewHub(logger)
	engine := leave.NewEngine(store, hub, logger, cfg.StoreTimeout)
	sessions := auth.NewSessions([]byte(cfg.SessionSecret), cfg.SessionTTL)
	handler := api.NewHandler(engine, sessions, hub, logger)

	router := api.NewRouter(handler, cfg.AllowedOrigins)

	// WriteTimeout stays zero: the SSE stream holds its response open for
	// the life of the client connection.
	server := &http.Server{
		Addr:        cfg.Addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
