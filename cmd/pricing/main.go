package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/timeout"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/pos-pricing/internal/currency"
	"github.com/richxcame/pos-pricing/internal/products"
	"github.com/richxcame/pos-pricing/internal/scheduler"
	"github.com/richxcame/pos-pricing/pkg/common"
	"github.com/richxcame/pos-pricing/pkg/config"
	"github.com/richxcame/pos-pricing/pkg/database"
	"github.com/richxcame/pos-pricing/pkg/eventbus"
	"github.com/richxcame/pos-pricing/pkg/health"
	"github.com/richxcame/pos-pricing/pkg/httpclient"
	"github.com/richxcame/pos-pricing/pkg/logger"
	"github.com/richxcame/pos-pricing/pkg/middleware"
	"github.com/richxcame/pos-pricing/pkg/ratelimit"
	"github.com/richxcame/pos-pricing/pkg/redis"
	"github.com/richxcame/pos-pricing/pkg/resilience"
	"go.uber.org/zap"
)

const (
	serviceName    = "pricing-service"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Starting pricing service",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
		zap.String("environment", cfg.Server.Environment),
	)

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(&cfg.Database); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Connected to database")

	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	healthChecks := map[string]func() error{
		"database": health.DatabaseChecker(db),
		"redis":    health.RedisChecker(redisClient.Client),
	}

	var publisher currency.EventPublisher
	var bus *eventbus.Bus
	if cfg.NATS.Enabled {
		bus, err = eventbus.Connect(cfg.NATS.URL, serviceName)
		if err != nil {
			logger.Warn("Failed to connect to NATS, rate update events disabled", zap.Error(err))
		} else {
			defer bus.Close()
			publisher = bus
			healthChecks["nats"] = health.NATSChecker(bus.Conn())
		}
	}

	var feed currency.FeedInterface
	if cfg.Rates.RefreshEnabled {
		breaker := resilience.NewCircuitBreaker(
			resilience.SettingsFromConfig("rates-feed", cfg.Breaker),
			resilience.SkipFallback("rates-feed"),
		)
		feedHTTP := httpclient.NewClient(cfg.Rates.FeedURL, cfg.Rates.FeedTimeout).
			Apply(httpclient.WithDefaultRetry(), httpclient.WithBreaker(breaker))
		feed = currency.NewFeedClient(feedHTTP, cfg.Rates.APIKey)
	}

	anchor, err := currency.ParseCode(cfg.Rates.Anchor)
	if err != nil {
		logger.Fatal("Invalid anchor currency", zap.Error(err))
	}
	official, err := currency.ParseCode(cfg.Rates.OfficialCurrency)
	if err != nil {
		logger.Fatal("Invalid official currency", zap.Error(err))
	}

	currencyRepo := currency.NewRepository(db)
	rateCache := currency.NewRedisCache(redisClient.Client, cfg.Redis.RateCacheTTL)
	currencyService := currency.NewService(currencyRepo, feed, rateCache, publisher, currency.ServiceConfig{
		Anchor:                  anchor,
		OfficialCurrency:        official,
		DefaultProfitPercentage: cfg.Rates.DefaultProfitPct,
		EventSource:             serviceName,
	})
	limiter := ratelimit.NewLimiter(redisClient.Client, cfg.RateLimit)
	currencyHandler := currency.NewHandler(currencyService).
		GuardRefresh(ratelimit.PerTenant(limiter, limiter.RuleFor(cfg.RateLimit.RefreshLimit)))

	productsRepo := products.NewRepository(db)
	productsService := products.NewService(productsRepo, currencyService)
	productsHandler := products.NewHandler(productsService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if bus != nil {
		if err := products.NewEventHandler(productsService).RegisterSubscriptions(ctx, bus); err != nil {
			logger.Warn("Failed to subscribe to rate updates", zap.Error(err))
		}
	}

	var worker *scheduler.Worker
	if feed != nil {
		worker = scheduler.NewWorker(currencyService, logger.Get(), cfg.Rates.RefreshInterval)
		go worker.Start(ctx)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(serviceName))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", middleware.TenantIDHeader, "X-Correlation-ID"}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", common.HealthCheckWithDeps(serviceName, serviceVersion, healthChecks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(timeout.New(
		timeout.WithTimeout(cfg.Server.RequestTimeout),
		timeout.WithResponse(func(c *gin.Context) {
			common.ErrorResponse(c, http.StatusGatewayTimeout, "request timed out")
		}),
	))
	currencyHandler.RegisterRoutes(api)
	productsHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	if worker != nil {
		worker.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
