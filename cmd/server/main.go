package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/keyboxhn/keybox/internal/bulk"
	"github.com/keyboxhn/keybox/internal/cache"
	"github.com/keyboxhn/keybox/internal/config"
	"github.com/keyboxhn/keybox/internal/db"
	"github.com/keyboxhn/keybox/internal/domains/customers"
	customersModels "github.com/keyboxhn/keybox/internal/domains/customers/models"
	"github.com/keyboxhn/keybox/internal/domains/messages"
	"github.com/keyboxhn/keybox/internal/domains/packages"
	"github.com/keyboxhn/keybox/internal/domains/templates"
	templatesModels "github.com/keyboxhn/keybox/internal/domains/templates/models"
	"github.com/keyboxhn/keybox/internal/health"
	"github.com/keyboxhn/keybox/internal/metrics"
	"github.com/keyboxhn/keybox/internal/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	config.SetupLogging(cfg.LogLevel, cfg.LogFormat)

	db, err := db.ConnectAndMigrate(cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize RabbitMQ
	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rabbitMQ.Close()

	// Redis is optional: without it lists are not cached, bulk sessions live
	// in memory and idempotency keys are not checked.
	var redisClient *redis.Client
	if client, err := cache.NewClient(context.Background(), cfg.RedisURL); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without cache")
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	var (
		sessions bulk.Store = bulk.NewMemoryStore(cfg.BulkSessionTTL)
		reserver cache.KeyReserver
	)
	if redisClient != nil {
		sessions = bulk.NewRedisStore(redisClient, "keybox:bulk:", cfg.BulkSessionTTL)
		reserver = cache.NewRedisReserver(redisClient, "keybox:idempotency:")
	}

	metrics.InitAPIMetrics()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", cache.IdempotencyHeader},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware)
	r.Use(cache.Idempotency(reserver, cfg.IdempotencyTTL))

	customerHandler := customers.NewHandler(db,
		cache.NewCollection[customersModels.Customer](redisClient, "keybox:customers", cfg.CacheTTL))
	r.Route("/customers", func(r chi.Router) {
		customerHandler.RegisterCustomerRoutes(r)
	})

	templateHandler := templates.NewHandler(db,
		customerHandler.Service(),
		cache.NewCollection[templatesModels.Template](redisClient, "keybox:templates", cfg.CacheTTL),
		rabbitMQ,
		templates.Settings{
			Region:      cfg.DefaultRegion,
			Location:    cfg.Location,
			PaymentsURL: cfg.PaymentsURL,
		},
	)
	bulkHandler := bulk.NewHandler(sessions, templateHandler.Service())
	r.Route("/templates", func(r chi.Router) {
		templateHandler.RegisterTemplateRoutes(r)
		bulkHandler.RegisterUploadRoute(r)
	})
	r.Route("/bulk", func(r chi.Router) {
		bulkHandler.RegisterBulkRoutes(r)
	})

	packageHandler := packages.NewHandler(db, customerHandler.Service(), rabbitMQ, packages.Settings{
		Region:      cfg.DefaultRegion,
		PaymentsURL: cfg.PaymentsURL,
	})
	r.Route("/packages", func(r chi.Router) {
		packageHandler.RegisterPackageRoutes(r)
	})

	messageHandler := messages.NewHandler(db)
	r.Route("/messages", func(r chi.Router) {
		messageHandler.RegisterMessageRoutes(r)
	})

	healthHandler := health.NewHandler(db, rabbitMQ, redisClient)
	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Msg("server starting on :" + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("received signal, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("server stopped")
}
