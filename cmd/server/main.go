package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/recipehub/backend/internal/events"
	"github.com/anonto42/recipehub/backend/internal/handlers"
	"github.com/anonto42/recipehub/backend/internal/middleware"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"github.com/anonto42/recipehub/backend/internal/router"
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/anonto42/recipehub/backend/pkg/config"
	"github.com/anonto42/recipehub/backend/pkg/firebase"
	"github.com/anonto42/recipehub/backend/pkg/logger"
	"github.com/anonto42/recipehub/backend/pkg/metrics"
	"github.com/anonto42/recipehub/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.AppName, cfg.Env)
	if !cfg.EnvFileLoaded() {
		log.Debug("No .env file found, assuming environment variables are set.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize databases")
	}
	defer db.CloseDB()

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := repositories.EnsureIndexes(indexCtx, db.Database); err != nil {
		log.WithError(err).Fatal("Failed to create indexes")
	}
	cancel()

	// --- Repositories ---
	userRepo := repositories.NewMongoUserRepository(db.Database)
	recipeRepo := repositories.NewMongoRecipeRepository(db.Database)
	tx := repositories.NewMongoTransactor(db.Mongo, cfg.MongoTransactions)

	var notificationRepo repositories.NotificationRepository = repositories.NewMongoNotificationRepository(db.Database)
	if cfg.NotificationStore == "postgres" {
		if db.Postgres == nil {
			log.Fatal("NOTIFICATION_STORE=postgres requires POSTGRES_URL")
		}
		pgRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
		if err := pgRepo.AutoMigrate(); err != nil {
			log.WithError(err).Fatal("Failed to auto migrate notifications")
		}
		notificationRepo = pgRepo
		log.Info("Notifications stored in PostgreSQL")
	}

	// --- Notification fan-out ---
	wmLogger := events.NewLogrusAdapter(log)
	busCfg := events.DefaultConfig()
	bus := events.NewBus(busCfg, wmLogger)
	dispatcher, err := events.NewDispatcher(busCfg, bus, notificationRepo, wmLogger)
	if err != nil {
		log.WithError(err).Fatal("Failed to create event dispatcher")
	}

	var sink *events.RabbitSink
	if cfg.AMQPURL != "" {
		sink, err = events.NewRabbitSink(cfg.AMQPURL, cfg.AMQPNotificationQueue)
		if err != nil {
			log.WithError(err).Warn("AMQP unavailable, push forwarding disabled")
		} else {
			dispatcher.AddForwarder(events.NewForwarder(sink, events.DefaultBreakerConfig(), wmLogger))
			log.WithField("queue", sink.Queue).Info("Push forwarding enabled")
		}
	}
	dispatcherDone := dispatcher.Start(ctx)

	// --- Identity ---
	var verifier services.TokenVerifier
	var firebaseVerifier middleware.FirebaseVerifier
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, log)
	switch {
	case errors.Is(err, firebase.ErrNotConfigured):
		log.Info("Firebase not configured, firebase login disabled")
	case err != nil:
		log.WithError(err).Warn("Failed to initialize Firebase, firebase login disabled")
	default:
		verifier = firebaseApp.AuthClient
		firebaseVerifier = firebaseApp.AuthClient
	}
	jwtManager := middleware.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// --- Rate limiting ---
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
	}

	// --- Services ---
	engagement := services.NewEngagementService(userRepo, recipeRepo, tx, bus, log)
	aggregator := services.NewAggregator(userRepo, recipeRepo, recipeRepo)
	deps := router.Dependencies{
		Accounts:   services.NewAccountService(userRepo, jwtManager, verifier, log),
		Graph:      services.NewSocialGraph(userRepo, recipeRepo, tx, bus, log),
		Engagement: engagement,
		Feed:       services.NewFeedService(userRepo, recipeRepo),
		Recipes:    services.NewRecipeService(userRepo, recipeRepo),
		Inbox:      services.NewInbox(notificationRepo, userRepo, recipeRepo),
		Aggregator: aggregator,
		Admin:      services.NewAdminService(userRepo, recipeRepo, tx, engagement, aggregator, log),
		Auth:       middleware.NewAuthenticator(jwtManager, userRepo, firebaseVerifier),
		Throttle:   middleware.RateLimit(rdb, cfg.RateLimitMax, cfg.RateLimitWindow, middleware.KeyByUserID("social"), log),
		Store:      db,
		Logger:     log,
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.JSONSerializer = handlers.JSONSerializer{}
	e.HTTPErrorHandler = handlers.ErrorHandler(log)

	config.SetupMiddleware(e, cfg, log)
	router.SetupRoutes(e, deps)

	metricsServer := metrics.NewServer(":" + cfg.MetricsPort)
	go func() {
		if err := metricsServer.Start(); err != nil {
			log.WithError(err).Error("Metrics server stopped")
		}
	}()

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	if err := dispatcher.Close(); err != nil {
		log.WithError(err).Error("Event dispatcher shutdown failed")
	}
	if err := <-dispatcherDone; err != nil {
		log.WithError(err).Error("Event dispatcher stopped with error")
	}
	if err := bus.Close(); err != nil {
		log.WithError(err).Error("Event bus shutdown failed")
	}
	sink.Close()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Metrics server shutdown failed")
	}
	log.Info("Shutdown complete")
}
