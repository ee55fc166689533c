// Command purge-sessions deletes expired rows from the sessions table. It is
// only needed when the server runs without Redis; Redis expires sessions on
// its own. Run it from cron or a scheduled container.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hugh/go-roster/internal/database"
	"github.com/hugh/go-roster/internal/session"
	"github.com/hugh/go-roster/pkg/config"
	"github.com/hugh/go-roster/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	purged, err := session.NewDatabaseStore(db).PurgeExpired(ctx)
	if err != nil {
		logger.Error("failed to purge sessions", "error", err)
		os.Exit(1)
	}

	logger.Info("purged expired sessions", "count", purged)
}
