package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/keyboxhn/keybox/internal/config"
	"github.com/keyboxhn/keybox/internal/db"
	"github.com/keyboxhn/keybox/internal/domains/messages"
	"github.com/keyboxhn/keybox/internal/metrics"
	"github.com/keyboxhn/keybox/internal/queue"
	"github.com/keyboxhn/keybox/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	config.SetupLogging(cfg.LogLevel, cfg.LogFormat)

	// Connect to database
	dbConn, err := db.ConnectAndMigrate(cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer dbConn.Close()

	// Connect to RabbitMQ
	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rabbitMQ.Close()

	metrics.InitWorkerMetrics()
	if addr := cfg.WorkerMetricsAddr; addr != "" {
		go func() {
			log.Info().Str("addr", addr).Msg("serving worker metrics")
			if err := http.ListenAndServe(addr, metrics.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("worker metrics server failed")
			}
		}()
	}

	w := worker.NewWorker(rabbitMQ, dbConn)

	pruner := worker.NewPruner(messages.NewService(messages.NewRepository(dbConn)), cfg.MessageRetention, cfg.PruneInterval)
	go pruner.Start()

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	}()

	// Start worker
	err = w.Start(ctx)
	pruner.Stop()
	if err != nil {
		log.Fatal().Err(err).Msg("worker failed")
	}

	log.Info().Msg("worker stopped")
}
