package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hugh/go-roster/internal/api"
	"github.com/hugh/go-roster/internal/api/middleware"
	"github.com/hugh/go-roster/internal/auth"
	"github.com/hugh/go-roster/internal/database"
	"github.com/hugh/go-roster/internal/employees"
	"github.com/hugh/go-roster/internal/session"
	"github.com/hugh/go-roster/internal/validation"
	"github.com/hugh/go-roster/internal/web"
	"github.com/hugh/go-roster/pkg/config"
	"github.com/hugh/go-roster/pkg/crypto"
	"github.com/hugh/go-roster/pkg/phone"
	"github.com/hugh/go-roster/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger.Info("starting go-roster server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Redis holds sessions and rate limit counters when available
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, using database sessions and no rate limiting", "error", err)
		redisClient.Close()
		redisClient = nil
	}
	cancelPing()

	var (
		sessions session.Store
		limiter  middleware.Limiter
	)
	if redisClient != nil {
		sessions = session.NewRedisStore(redisClient)
		limiter = middleware.NewRedisLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window())
	} else {
		dbStore := session.NewDatabaseStore(db)
		if purged, err := dbStore.PurgeExpired(ctx); err != nil {
			logger.Warn("failed to purge expired sessions", "error", err)
		} else if purged > 0 {
			logger.Info("purged expired sessions", "count", purged)
		}
		sessions = dbStore
	}

	// Addresses are sealed at rest when an encryption key is configured
	var sealer employees.Sealer
	if cfg.Encryption.Key != "" {
		encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
		if err != nil {
			logger.Error("failed to create encryptor", "error", err)
			os.Exit(1)
		}
		sealer = encryptor
		logger.Info("address sealing enabled", "recipient", encryptor.PublicKey())
	} else {
		logger.Warn("ENCRYPTION_KEY not set, employee addresses are stored in plaintext")
	}

	// Initialize services
	validator := validation.New()
	authService := auth.NewService(db, auth.NewJWTService(cfg.Session.Secret), sessions, validator, logger, cfg.Session.TTL())
	employeeService := employees.NewService(db, sealer, phone.NewNormalizer(cfg.Phone.DefaultRegion), validator, logger)

	templates, err := web.LoadTemplates()
	if err != nil {
		logger.Error("failed to load templates", "error", err)
		os.Exit(1)
	}

	staticFS, err := web.GetStaticFS()
	if err != nil {
		logger.Error("failed to get static fs", "error", err)
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		Auth:           authService,
		Employees:      employeeService,
		Templates:      templates,
		StaticFS:       staticFS,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Limiter:        limiter,
		CookieSecure:   cfg.Session.CookieSecure,
		TrustProxy:     cfg.Server.TrustProxy,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
	}

	if redisClient != nil {
		redisClient.Close()
	}

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.Close()
	}

	logger.Info("server stopped")
}
