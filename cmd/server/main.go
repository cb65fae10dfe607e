package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/fathiyyah28/proyek-sub000/internal/application/catalog"
	invapp "github.com/fathiyyah28/proyek-sub000/internal/application/inventory"
	tradeapp "github.com/fathiyyah28/proyek-sub000/internal/application/trade"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/auth"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/cache"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/config"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/logger"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/persistence"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/storage"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/telemetry"
	"github.com/fathiyyah28/proyek-sub000/internal/interfaces/http/handler"
	"github.com/fathiyyah28/proyek-sub000/internal/interfaces/http/middleware"
	"github.com/fathiyyah28/proyek-sub000/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/fathiyyah28/proyek-sub000/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Perfume Ledger API
//	@version		1.0
//	@description	Stock ledger and fulfillment engine for a multi-branch refill perfume shop

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const proofUploadPath = "/api/v1/orders/proofs"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(cfg.Log, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Telemetry comes first so the logger can be bridged to OTLP
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logs export", zap.Error(err))
	}
	log := logsProvider.Bridge(baseLog)
	defer func() { _ = log.Sync() }()

	log.Info("Starting perfume ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("time_zone", cfg.App.Location().String()),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracerConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsPeriod,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Database.SlowQueryThresh)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	tracingPlugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Database.SlowQueryThresh,
	}, log)
	if err := tracingPlugin.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(ctx, db.DB, meterProvider, telemetry.DBMetricsConfig{
		SlowQueryThreshold: cfg.Database.SlowQueryThresh,
	}, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}

	// Repositories and services
	repos := persistence.NewRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB, cfg.Database.LockTimeout)

	bottleFee, err := cfg.Inventory.BottleFeeDecimal()
	if err != nil {
		log.Fatal("Invalid inventory.bottle_fee", zap.Error(err))
	}
	deriver := catalog.NewPriceDeriver(bottleFee)

	proofStore, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize proof storage", zap.Error(err))
	}
	proofService := tradeapp.NewProofService(proofStore, cfg.Storage.MaxUploadSize, log)

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.Idempotency.RequireRedis),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}

	productService := catalogapp.NewProductService(scope, repos.Products, log)
	stockService := invapp.NewStockService(scope, repos.Products, repos.GlobalStock, repos.History, repos.BranchStock, log)
	stockService.SetLowStockThreshold(cfg.Inventory.LowStockThresholdMl)
	distributionService := invapp.NewDistributionService(scope, repos.Distributions, log)

	orderService := tradeapp.NewOrderService(scope, repos.Products, repos.BranchStock, repos.Orders, deriver, log)
	orderService.SetPriceHealer(productService)
	orderService.SetProofVerifier(proofService)
	orderService.SetIdempotencyStore(idempotencyStore, cfg.Idempotency.TTL)

	saleService := tradeapp.NewSaleService(scope, repos.Sales, deriver, log)
	saleService.SetPriceHealer(productService)
	saleService.SetLocation(cfg.App.Location())

	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:    meterProvider.Meter("perfume.ledger"),
			Logger:   log,
			LowStock: stockService,
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		businessMetrics.StartPeriodicCollection(ctx, time.Minute)
		stockService.SetBusinessMetrics(businessMetrics)
		distributionService.SetBusinessMetrics(businessMetrics)
		orderService.SetBusinessMetrics(businessMetrics)
		saleService.SetBusinessMetrics(businessMetrics)
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	tracingCfg.Enabled = tracerProvider.IsEnabled()

	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = profiler.IsEnabled()

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(tracingCfg))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimitWithOverrides(cfg.HTTP.MaxBodySize, map[string]int64{
		// multipart framing on top of the file itself
		proofUploadPath: cfg.Storage.MaxUploadSize + 64<<10,
	}))
	if meterProvider.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(meterProvider.Meter("http.server"), log))
	}
	engine.Use(middleware.ProfilingWithConfig(profilingCfg))

	systemHandler := handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion)
	systemHandler.AddCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any", middleware.SwaggerProtection(cfg.Swagger), ginSwagger.WrapHandler(swaggerFiles.Handler))
		log.Info("Swagger UI enabled", zap.Strings("allowed_ips", cfg.Swagger.AllowedIPs))
	}

	api := router.NewRouter(engine).Use(
		middleware.JWTAuthMiddleware(jwtService),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
	)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go rateLimiter.Run(ctx)
		api.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	router.RegisterLedger(api, router.Handlers{
		Product:      handler.NewProductHandler(productService),
		Stock:        handler.NewStockHandler(stockService),
		Distribution: handler.NewDistributionHandler(distributionService),
		Order:        handler.NewOrderHandler(orderService, proofService),
		Sale:         handler.NewSaleHandler(saleService, cfg.App.Location()),
	}).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if businessMetrics != nil {
		businessMetrics.Stop()
	}
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if err := idempotencyStore.Close(); err != nil {
		log.Error("Error closing idempotency store", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited")
	_ = log.Sync()
	if err := logsProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Error("Error shutting down logger provider", zap.Error(err))
	}
}
