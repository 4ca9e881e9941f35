package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"trujobs-api/config"
	_ "trujobs-api/docs" // registers the swagger spec
	"trujobs-api/internal/delivery/http/middleware"
	v1 "trujobs-api/internal/delivery/http/v1"
	"trujobs-api/internal/domain"
	"trujobs-api/internal/repository/mongodb"
	"trujobs-api/internal/usecase"
	"trujobs-api/pkg/auth"
	"trujobs-api/pkg/blob"
	"trujobs-api/pkg/logger"
	"trujobs-api/pkg/matching"
	"trujobs-api/pkg/metrics"
	"trujobs-api/pkg/notify"
	redisclient "trujobs-api/pkg/redis"
	"trujobs-api/pkg/security"
	"trujobs-api/pkg/validation"
)

// @title           TruJobs API
// @version         1.0
// @description     HR registration and approval, job postings and resume matching.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	logger.Log.Info("Starting trujobs api", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	audit := security.NewAuditLogger("trujobs-api")
	defer audit.Sync()

	// 3. Setup Database
	store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoTransactions)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Log.Warn("Failed to close database", "error", err)
		}
	}()
	audit.SetSink(mongodb.NewAuditRepository(store))

	// 4. Setup Repositories
	hrRepo := mongodb.NewHRRepository(store)
	jobRepo := mongodb.NewJobRepository(store)
	userRepo := mongodb.NewUserRepository(store)

	// 5. Setup collaborators
	m := metrics.New()

	verifier, err := auth.NewVerifier(ctx, cfg.GoogleVerifyMode, cfg.GoogleClientID)
	if err != nil {
		logger.Log.Error("Failed to build token verifier", "error", err)
		os.Exit(1)
	}

	blobStore, err := blob.New(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to set up blob storage", "provider", cfg.BlobProvider, "error", err)
		os.Exit(1)
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisclient.New(ctx, redisclient.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting falls back to memory", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	matchingClient := matching.NewClient(cfg.MatchingBaseURL, cfg.MatchingAPIKey, cfg.MatchingTimeout)
	notifier := notify.New(cfg)
	if !cfg.SMTPConfigured() {
		logger.Log.Warn("SMTP not configured - HR status emails are disabled")
	}

	// 6. Setup UseCases
	validate := validation.New()
	admins := domain.NewAdminAllowList(cfg.AdminEmails)

	hrUC := usecase.NewHRUsecase(hrRepo, notifier, admins, validate, audit, m)
	jobUC := usecase.NewJobUsecase(jobRepo, hrRepo, matchingClient, validate, audit, m)
	adminUC := usecase.NewAdminUsecase(userRepo, admins, validate, audit)
	uploadUC := usecase.NewUploadUsecase(blobStore, matchingClient, cfg.UploadMaxBytes, audit, m)

	healthDeps := map[string]usecase.Pinger{"mongo": store}
	if rdb != nil {
		healthDeps["redis"] = usecase.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	if p, ok := blobStore.(usecase.Pinger); ok {
		healthDeps["blob"] = p
	}
	healthUC := usecase.NewHealthUsecase(healthDeps)

	// 7. Setup Router
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	router := v1.NewRouter(v1.RouterDeps{
		HRUC:     hrUC,
		JobUC:    jobUC,
		AdminUC:  adminUC,
		UploadUC: uploadUC,
		HealthUC: healthUC,

		Verifier:    verifier,
		Admins:      admins,
		RateLimiter: middleware.NewRateLimiter(ctx, rdb, m, audit),
		Metrics:     m,
		Audit:       audit,

		GlobalLimit: middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window),
		UploadLimit: middleware.UploadRateLimitConfig(cfg.RateLimitUploadThreshold, window),

		CORSOrigins:    cfg.CORSAllowedOrigins,
		Release:        cfg.GinMode == gin.ReleaseMode,
		UploadMaxBytes: cfg.UploadMaxBytes,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
