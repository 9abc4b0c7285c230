// Package main is the entry point of the ledger API server.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"kosh/internal/config"
	"kosh/internal/handlers"
	"kosh/internal/logging"
	"kosh/internal/metrics"
	"kosh/internal/middleware"
	"kosh/internal/repositories"
	"kosh/internal/repositories/cache"
	"kosh/internal/routes"
	"kosh/internal/services/auth"
	"kosh/internal/services/moneyrequest"
	"kosh/internal/services/pin"
	"kosh/internal/services/transfer"
	"kosh/internal/services/user"
	"kosh/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.LoadEnv()
	cfg := config.Load()

	logger, sync := logging.New(config.IsProduction())
	defer func() { _ = sync() }()

	db, err := repositories.Open(cfg.DB)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	if err := repositories.Ping(db); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	if err := repositories.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	logger.Info("connected to database", zap.String("host", cfg.DB.Host), zap.String("name", cfg.DB.Name))

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get database instance", zap.Error(err))
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("failed to close database connection", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go logPoolStats(ctx, logger, sqlDB.Stats)

	cacheService := cache.NewCacheService(cache.NewRedisClient(cfg.Redis), wallet.CacheDuration)
	defer func() {
		if err := cacheService.Close(); err != nil {
			logger.Warn("failed to close redis connection", zap.Error(err))
		}
	}()
	if err := cacheService.HealthCheck(ctx); err != nil {
		// Summaries fall back to the database while redis is away.
		logger.Warn("redis unavailable", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	store := repositories.NewStore(db)
	summaries := wallet.NewSummaryCache(cacheService, logger)
	pins := pin.NewService(store, logger,
		pin.WithLimits(cfg.PinMaxAttempts, cfg.PinLockout),
		pin.WithBcryptCost(cfg.BcryptCost),
	)
	transfers := transfer.NewService(store, pins, summaries, collector, logger)
	requests := moneyrequest.NewService(store, pins, logger,
		moneyrequest.WithCache(summaries),
		moneyrequest.WithMetrics(collector),
	)
	wallets := wallet.NewService(store, summaries, logger)
	users := user.NewService(store, logger, user.WithBcryptCost(cfg.BcryptCost))
	authService := auth.NewService(store.Users, cfg.JWTSecret, cfg.JWTTTL, logger)

	app := fiber.New(fiber.Config{AppName: "kosh"})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use("/api/users/signup", authLimiter())
	app.Use("/api/users/login", authLimiter())

	authMiddleware := middleware.NewAuthMiddleware(authService, handlers.AccessTokenCookie, logger)
	routes.SetupRoutes(app, routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService, cfg.JWTTTL, logger),
		Users:         handlers.NewUserHandler(users, wallets, pins, summaries, logger),
		Wallet:        handlers.NewWalletHandler(transfers, logger),
		MoneyRequests: handlers.NewMoneyRequestHandler(requests, logger),
		Transactions:  handlers.NewTransactionHandler(wallets, logger),
		Health:        handlers.NewHealthHandler(db, cacheService),
		Metrics:       adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	}, authMiddleware.Handler)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}

func authLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	})
}
