package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boxoffice/api/routes"
	"boxoffice/internal/events"
	"boxoffice/internal/holds"
	"boxoffice/internal/lease"
	"boxoffice/internal/notifier"
	"boxoffice/internal/seats"
	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/database"
	"boxoffice/internal/sweeper"
	"boxoffice/internal/venues"
	"boxoffice/pkg/cache"
	"boxoffice/pkg/clock"
	"boxoffice/pkg/logger"
	"boxoffice/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		appLogger.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to initialize databases", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	systemClock := clock.NewSystem()

	// Lease store: Redis in production, in-memory when Redis is absent
	// (single-instance development only).
	var leases lease.Manager
	if db.Redis != nil {
		redisLeases := lease.NewRedisManager(db.GetRedis())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := redisLeases.PreloadScripts(ctx); err != nil {
			appLogger.Error("failed to preload lease scripts", slog.Any("error", err))
			// Scripts load lazily on first use; keep going.
		}
		cancel()
		leases = redisLeases
		appLogger.Info("lease store: redis")
	} else {
		leases = lease.NewMemoryManager(systemClock)
		appLogger.Info("lease store: in-memory (redis unavailable)")
	}

	// Change notification: always the in-process hub; Kafka added when
	// configured so other instances see the transitions too.
	hub := notifier.NewHub(64)
	sinks := notifier.Fanout{hub}
	if cfg.Kafka.Enabled {
		kafkaNotifier, err := notifier.NewKafkaNotifier(notifier.DefaultKafkaConfig(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		if err != nil {
			appLogger.Error("failed to initialize kafka notifier", slog.Any("error", err))
		} else {
			sinks = append(sinks, kafkaNotifier)
			defer kafkaNotifier.Close()
			appLogger.Info("kafka notifier enabled",
				slog.Any("brokers", cfg.Kafka.Brokers),
				slog.String("topic", cfg.Kafka.Topic),
			)
		}
	}
	var notify notifier.Notifier = sinks

	var cacheService cache.Service
	if db.Redis != nil {
		cacheService = cache.NewService(db.GetRedis())
	}

	venueRepo := venues.NewRepository(db.GetPostgreSQL())
	eventRepo := events.NewRepository(db.GetPostgreSQL())
	seatRepo := seats.NewRepository(db.GetPostgreSQL())
	resolver := seats.NewResolver(venueRepo, eventRepo, seatRepo, leases, cacheService, cfg.Redis.CacheTTL)
	issuer := holds.NewTokenIssuer(cfg.Token.Secret, systemClock)

	// Background reclaim of legacy persisted holds.
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	holdSweeper := sweeper.New(seatRepo, resolver, notify, systemClock, sweeper.Config{
		Interval:      cfg.Inventory.SweepInterval,
		WarningWindow: cfg.Inventory.ExpiryWarning,
	})
	holdSweeper.Start(sweepCtx)
	defer holdSweeper.Stop()

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedis(), &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("booking_requests", cfg.RateLimit.BookingRequests),
		)
	}

	engine := setupEngine(rateLimiter)
	routes.NewRouter(cfg, db, &routes.Dependencies{
		Leases:   leases,
		Notifier: notify,
		Hub:      hub,
		Resolver: resolver,
		SeatRepo: seatRepo,
		Issuer:   issuer,
		Clock:    systemClock,
	}).SetupRoutes(engine)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("api_base", cfg.GetAPIBasePath()),
			slog.Bool("redis", db.Redis != nil),
			slog.Bool("kafka", cfg.Kafka.Enabled),
			slog.Bool("rate_limiting", rateLimiter != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("server exited gracefully")
}

func setupEngine(rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(requestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	return engine
}

func requestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
	}
}
