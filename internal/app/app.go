// Package app provides application-level coordination and dependency injection.
// It orchestrates the initialization of all service components, manages their lifecycles,
// and provides a clean application structure following dependency inversion principles.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/adapters/primary/rest"
	"github.com/fashionai/stylist-service/internal/adapters/secondary/gemini"
	"github.com/fashionai/stylist-service/internal/adapters/secondary/ipapi"
	"github.com/fashionai/stylist-service/internal/adapters/secondary/openweather"
	"github.com/fashionai/stylist-service/internal/config"
	"github.com/fashionai/stylist-service/internal/core/ports"
	"github.com/fashionai/stylist-service/internal/core/services"
	"github.com/fashionai/stylist-service/internal/infrastructure/cache"
	"github.com/fashionai/stylist-service/internal/infrastructure/circuitbreaker"
	"github.com/fashionai/stylist-service/internal/infrastructure/database"
	"github.com/fashionai/stylist-service/internal/infrastructure/ratelimit"
	"github.com/fashionai/stylist-service/internal/middleware"
	"github.com/fashionai/stylist-service/internal/observability"
	"github.com/fashionai/stylist-service/internal/version"
)

// Server represents the HTTP server instance.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// App manages the application lifecycle and dependencies.
type App struct {
	cfg       *config.Config
	server    *Server
	logger    *zap.Logger
	telemetry *observability.Telemetry
	db        *database.PostgresDB
	gemini    *gemini.Client
}

// New creates a new application instance.
//
// Returns:
//   - *App: Configured application instance
//   - error: Logger initialization error
func New() (*App, error) {
	logger, err := zap.NewProduction()

	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg := config.Load()

	return &App{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Start initializes and starts all application components. Every
// dependency degrades independently: no telemetry, no Redis, no
// database, and no AI key all still produce a serving API.
//
// Parameters:
//   - ctx: Context for initialization
//
// Returns:
//   - error: Server start error
func (a *App) Start(ctx context.Context) error {
	if err := a.initTelemetry(ctx); err != nil {
		a.logger.Warn("failed to initialize telemetry, continuing without it", zap.Error(err))
	}

	cacheService, rateLimitService := a.initRedisServices(ctx)

	if err := a.initDatabase(); err != nil {
		a.logger.Warn("failed to connect to database, continuing without it", zap.Error(err))
	}

	var repo ports.DailyOutfitRepository
	var statsProvider ports.GenerationStatsProvider

	if a.db != nil {
		adapter := NewRepositoryAdapter(a.db)
		repo = adapter
		statsProvider = adapter
	}

	locationService := services.NewLocationService(a.initGeoClient(), a.logger)

	weatherEnabled := a.cfg.External.OpenWeatherAPIKey != ""
	weatherService := services.NewWeatherService(
		a.initWeatherClient(),
		weatherEnabled,
		cacheService,
		a.logger,
	)

	textGenerator := a.initTextGenerator(ctx)
	outfitGenerator := services.NewOutfitGenerator(textGenerator, textGenerator != nil, a.logger)

	ootdService := services.NewOOTDService(
		repo,
		locationService,
		weatherService,
		outfitGenerator,
		a.logger,
	)

	if a.telemetry != nil {
		ootdService = NewInstrumentedOOTDService(ootdService, a.telemetry)
	}

	ootdHandler := rest.NewOOTDHandler(ootdService, a.logger)
	weatherHandler := rest.NewWeatherHandler(locationService, weatherService, outfitGenerator, a.logger)

	statsHandler := rest.NewStatsHandler(statsProvider, a.logger)

	rateLimitMiddleware := middleware.NewRateLimitMiddleware(
		rateLimitService,
		a.cfg.RateLimit.RPS,
		a.cfg.RateLimit.Window,
		a.logger,
	)

	authMiddleware := middleware.NewAuthMiddleware(a.cfg.Auth.SessionSecret, a.logger)

	if a.cfg.Auth.SessionSecret == "" {
		a.logger.Warn("no session secret configured, running in development auth mode")
	}

	router := a.setupRouter(
		ootdHandler,
		weatherHandler,
		statsHandler,
		rateLimitMiddleware,
		authMiddleware,
		a.telemetry,
	)

	a.server = &Server{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", a.cfg.Server.Port),
			Handler: router,
		},
		logger: a.logger,
	}

	go func() {
		a.logger.Info("starting HTTP server", zap.String("port", a.cfg.Server.Port))

		if err := a.server.server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				a.logger.Fatal("failed to start server", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down all application components.
func (a *App) Stop() {
	a.logger.Info("shutting down application...")

	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := a.server.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to shutdown server gracefully", zap.Error(err))
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database connection", zap.Error(err))
		}
	}

	if a.gemini != nil {
		if err := a.gemini.Close(); err != nil {
			a.logger.Error("failed to close Gemini client", zap.Error(err))
		}
	}

	if a.telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := a.telemetry.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to shutdown telemetry", zap.Error(err))
		}
	}

	if err := a.logger.Sync(); err != nil {
		// Sync can fail on some platforms, ignore the error
		_ = err
	}
}

// WaitForShutdown blocks until the server receives a shutdown signal.
func (a *App) WaitForShutdown() {
	// Wait for the interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	a.logger.Info("shutdown signal received")
}

// initTelemetry initializes OpenTelemetry providers.
//
// Parameters:
//   - ctx: Context for initialization
//
// Returns:
//   - error: Telemetry initialization error
func (a *App) initTelemetry(ctx context.Context) error {
	telemetryConfig := observability.Config{
		ServiceName:    a.cfg.Observability.ServiceName,
		ServiceVersion: a.cfg.Observability.ServiceVersion,
		Environment:    a.cfg.Observability.Environment,
		OTLPEndpoint:   a.cfg.Observability.OTLPEndpoint,
		SampleRate:     a.cfg.Observability.SampleRate,
	}

	var err error
	a.telemetry, err = observability.InitTelemetry(ctx, telemetryConfig, a.logger)

	return err
}

// initRedisServices initializes Redis-based or memory-based cache and rate limiting.
//
// Parameters:
//   - ctx: Context for Redis connection testing
//
// Returns:
//   - ports.CacheService: Cache implementation (Redis or memory)
//   - ports.RateLimitService: Rate limiter implementation (Redis or memory)
func (a *App) initRedisServices(ctx context.Context) (ports.CacheService, ports.RateLimitService) {
	if !a.cfg.Redis.Enabled {
		a.logger.Info("Redis disabled, using memory-based services")

		memCache := cache.NewMemoryCache(5*time.Minute, 10*time.Minute, a.logger)
		memRateLimit := middleware.NewMemoryRateLimiter(a.logger)

		return memCache, memRateLimit
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         a.cfg.Redis.Addr,
		Password:     a.cfg.Redis.Password,
		DB:           a.cfg.Redis.DB,
		PoolSize:     a.cfg.Redis.PoolSize,
		MinIdleConns: a.cfg.Redis.MinIdleConns,
		MaxRetries:   a.cfg.Redis.MaxRetries,
		DialTimeout:  a.cfg.Redis.DialTimeout,
		ReadTimeout:  a.cfg.Redis.ReadTimeout,
		WriteTimeout: a.cfg.Redis.WriteTimeout,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		a.logger.Warn("Redis connection failed, falling back to memory-based services", zap.Error(err))

		memCache := cache.NewMemoryCache(5*time.Minute, 10*time.Minute, a.logger)
		memRateLimit := middleware.NewMemoryRateLimiter(a.logger)

		return memCache, memRateLimit
	}

	a.logger.Info("Redis connected successfully")

	redisCfg := cache.Config{
		Addr:         a.cfg.Redis.Addr,
		Password:     a.cfg.Redis.Password,
		DB:           a.cfg.Redis.DB,
		PoolSize:     a.cfg.Redis.PoolSize,
		MinIdleConns: a.cfg.Redis.MinIdleConns,
		MaxRetries:   a.cfg.Redis.MaxRetries,
		DialTimeout:  a.cfg.Redis.DialTimeout,
		ReadTimeout:  a.cfg.Redis.ReadTimeout,
		WriteTimeout: a.cfg.Redis.WriteTimeout,
	}

	cacheService, _ := cache.NewRedisCache(redisCfg, a.logger)
	rateLimitService := ratelimit.NewRedisRateLimiter(redisClient, a.logger)

	return cacheService, rateLimitService
}

// initDatabase initializes PostgreSQL database connection.
//
// Returns:
//   - error: Database connection or initialization error
func (a *App) initDatabase() error {
	if !a.cfg.Database.Enabled {
		return nil
	}

	dbConfig := database.Config{
		Host:                  a.cfg.Database.Host,
		Port:                  a.cfg.Database.Port,
		User:                  a.cfg.Database.User,
		Password:              a.cfg.Database.Password,
		Database:              a.cfg.Database.Database,
		SSLMode:               a.cfg.Database.SSLMode,
		MaxConnections:        a.cfg.Database.MaxConnections,
		MaxIdleConnections:    a.cfg.Database.MaxIdleConnections,
		ConnectionMaxLifetime: a.cfg.Database.ConnectionMaxLifetime,
	}

	var err error
	a.db, err = database.NewPostgresDB(dbConfig, a.logger)

	return err
}

// initGeoClient creates the geolocation client with circuit breaker protection.
//
// Returns:
//   - ports.GeoClient: ip-api client wrapped with circuit breaker
func (a *App) initGeoClient() ports.GeoClient {
	httpClient := &http.Client{
		Timeout: a.cfg.External.HTTPTimeout,
	}

	geoClient := ipapi.NewClient(a.cfg.External.GeoBaseURL, httpClient, a.logger)
	cbManager := circuitbreaker.NewManager(a.logger)

	return &CircuitBreakerGeoClient{
		client: geoClient,
		cb: cbManager.GetBreaker("geo-api", circuitbreaker.Config{
			MaxRequests: 3,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
		}),
	}
}

// initWeatherClient creates a weather client with circuit breaker protection.
//
// Returns:
//   - ports.WeatherClient: OpenWeatherMap client wrapped with circuit breaker
func (a *App) initWeatherClient() ports.WeatherClient {
	httpClient := &http.Client{
		Timeout: a.cfg.External.HTTPTimeout,
	}

	weatherClient := openweather.NewClient(
		a.cfg.External.OpenWeatherBaseURL,
		a.cfg.External.OpenWeatherAPIKey,
		httpClient,
		a.logger,
	)

	cbManager := circuitbreaker.NewManager(a.logger)

	return &CircuitBreakerWeatherClient{
		client: weatherClient,
		cb: cbManager.GetBreaker("openweather-api", circuitbreaker.Config{
			MaxRequests: 3,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
		}),
	}
}

// initTextGenerator creates the Gemini text generator with circuit
// breaker protection, or nil when no API key is configured.
//
// Parameters:
//   - ctx: Context for SDK initialization
//
// Returns:
//   - ports.TextGenerator: Gemini client wrapped with circuit breaker, or nil
func (a *App) initTextGenerator(ctx context.Context) ports.TextGenerator {
	if a.cfg.External.GeminiAPIKey == "" {
		a.logger.Info("no Gemini API key configured, outfit generation uses fallback templates")
		return nil
	}

	client, err := gemini.NewClient(ctx, a.cfg.External.GeminiAPIKey, a.cfg.External.GeminiModel, a.logger)

	if err != nil {
		a.logger.Warn("failed to initialize Gemini client, outfit generation uses fallback templates",
			zap.Error(err))

		return nil
	}

	a.gemini = client
	cbManager := circuitbreaker.NewManager(a.logger)

	return &CircuitBreakerTextGenerator{
		client: client,
		cb: cbManager.GetBreaker("gemini-api", circuitbreaker.Config{
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     60 * time.Second,
		}),
	}
}

// setupRouter creates and configures the HTTP router with all middleware.
//
// Parameters:
//   - ootdHandler: Handler for daily outfit endpoints
//   - weatherHandler: Handler for weather endpoints
//   - statsHandler: Handler for generation statistics
//   - rateLimitMiddleware: Rate-limiting middleware instance
//   - authMiddleware: Session token middleware instance
//   - telemetry: Telemetry instance for observability
//
// Returns:
//   - http.Handler: Configured router with all routes and middleware
func (a *App) setupRouter(
	ootdHandler *rest.OOTDHandler,
	weatherHandler *rest.WeatherHandler,
	statsHandler *rest.StatsHandler,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	authMiddleware *middleware.AuthMiddleware,
	telemetry *observability.Telemetry,
) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	// Version endpoint
	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		versionInfo := version.Get()

		if err := json.NewEncoder(w).Encode(versionInfo); err != nil {
			a.logger.Error("failed to encode version info", zap.Error(err))
		}
	}).Methods("GET")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Apply observability middleware if telemetry is available
	if telemetry != nil {
		obsMiddleware := middleware.NewObservabilityMiddleware(telemetry, a.logger)
		router.Use(obsMiddleware.TracingMiddleware)
		router.Use(obsMiddleware.MetricsMiddleware)
	}

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Apply rate limiting and authentication to API routes
	if rateLimitMiddleware != nil {
		api.Use(rateLimitMiddleware.Middleware)
	}

	api.Use(authMiddleware.Middleware)

	// Daily outfit endpoints
	api.HandleFunc("/outfits/smart/ootd", ootdHandler.GetTodayOutfit).Methods("GET")
	api.HandleFunc("/outfits/stats", statsHandler.GetGenerationStats).Methods("GET")

	// Weather endpoints
	api.HandleFunc("/weather/current", weatherHandler.GetCurrentWeather).Methods("GET")
	api.HandleFunc("/weather/coordinates", weatherHandler.GetWeatherByCoordinates).Methods("GET")
	api.HandleFunc("/weather/recommendations/auto", weatherHandler.GetAutoRecommendations).Methods("GET")

	return router
}
