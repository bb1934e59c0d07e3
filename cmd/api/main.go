package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artisanconnect/booking-backend/internal/adapters/cache"
	"github.com/artisanconnect/booking-backend/internal/adapters/database"
	"github.com/artisanconnect/booking-backend/internal/adapters/events"
	"github.com/artisanconnect/booking-backend/internal/adapters/locks"
	"github.com/artisanconnect/booking-backend/internal/adapters/providers/payments"
	"github.com/artisanconnect/booking-backend/internal/api/handlers"
	"github.com/artisanconnect/booking-backend/internal/api/routes"
	"github.com/artisanconnect/booking-backend/internal/application/services"
	"github.com/artisanconnect/booking-backend/internal/domain/providers"
	"github.com/artisanconnect/booking-backend/internal/domain/repositories"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/clients/postgres"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/clients/redis"
	stripeclient "github.com/artisanconnect/booking-backend/internal/infrastructure/clients/stripe"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/observability"
	"github.com/artisanconnect/booking-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env, cfg.Server.LogLevel)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	logger.Info().Msg("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache and events")
		redisClient = nil
	} else {
		defer redisClient.Close()
		logger.Info().Msg("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for booking lifecycle events
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		defer eventBus.Close()

		// The in-process audit consumer of the lifecycle channel.
		eventListener := services.NewBookingEventListener(eventBus)
		go func() {
			if err := eventListener.Run(ctx); err != nil {
				logger.Warn().Err(err).Msg("booking event listener stopped")
			}
		}()

		logger.Info().Msg("event bus initialized successfully")
	} else {
		logger.Info().Msg("event bus disabled (Redis not available)")
	}

	// Initialize adapters

	baseServiceAdapter := database.NewServiceAdapter(pgClient)

	var serviceAdapter repositories.ServiceRepository
	if cacheProvider != nil {
		serviceAdapter = database.NewCachedServiceAdapter(baseServiceAdapter, cacheProvider)
		logger.Info().Msg("service adapter wrapped with caching layer")
	} else {
		serviceAdapter = baseServiceAdapter
		logger.Warn().Msg("service adapter running without cache (Redis unavailable)")
	}

	providerAdapter := database.NewProviderAdapter(pgClient)
	scheduleAdapter := database.NewScheduleAdapter(pgClient)
	bookingAdapter := database.NewBookingAdapter(pgClient)
	busyBlockAdapter := database.NewBusyBlockAdapter(pgClient)

	conflictGuard := locks.NewPostgresGuard(pgClient)

	paymentProvider, err := payments.NewPaymentProvider(&cfg.Stripe)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize payment provider")
	}
	logger.Info().Str("provider", paymentProvider.Name()).Msg("payment provider initialized")

	// Initialize services

	availabilityService := services.NewAvailabilityService(
		providerAdapter,
		scheduleAdapter,
		bookingAdapter,
		busyBlockAdapter,
		cfg.Booking.SlotStepMinutes,
	)

	bookingService := services.NewBookingService(
		serviceAdapter,
		providerAdapter,
		bookingAdapter,
		availabilityService,
		conflictGuard,
		paymentProvider,
		eventBus,
	)

	paymentSyncService := services.NewPaymentSyncService(bookingAdapter, eventBus)

	// Initialize handlers

	serviceHandler := handlers.NewServiceHandler(serviceAdapter)
	availabilityHandler := handlers.NewAvailabilityHandler(serviceAdapter, availabilityService)
	bookingHandler := handlers.NewBookingHandler(bookingService)

	// The webhook endpoint only exists when signature verification is possible.
	var stripeWebhookHandler *handlers.StripeWebhookHandler
	if cfg.Stripe.SecretKey != "" && cfg.Stripe.WebhookSecret != "" {
		stripeClient, err := stripeclient.NewClient(&cfg.Stripe)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize Stripe client")
		}
		stripeWebhookHandler = handlers.NewStripeWebhookHandler(stripeClient, paymentSyncService)
		logger.Info().Msg("Stripe webhook handler initialized")
	} else {
		logger.Warn().Msg("Stripe webhook endpoint disabled (secret key or webhook secret missing)")
	}

	// Set up router
	router := routes.NewRouter(
		serviceHandler,
		availabilityHandler,
		bookingHandler,
		stripeWebhookHandler,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}
