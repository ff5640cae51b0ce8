package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"miningauto/apps/miner/internal/api"
	"miningauto/apps/miner/internal/config"
	"miningauto/apps/miner/internal/etherscan"
	"miningauto/apps/miner/internal/event_publisher"
	"miningauto/apps/miner/internal/prices"
	"miningauto/apps/miner/internal/report"
	"miningauto/apps/miner/internal/repository"
	"miningauto/apps/miner/internal/session"
)

func main() {
	// Initialize zap logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	durationMinutes := flag.Int("duration-minutes", 1, "Duration to run mining automation in minutes")
	flag.Parse()

	if *durationMinutes <= 0 {
		logger.Fatal("Duration must be a positive number of minutes", zap.Int("duration_minutes", *durationMinutes))
	}

	// Load configuration from environment variables; any problem is fatal
	// before the mining loop starts
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	logger.Info("Starting mining automation with configuration",
		zap.String("wallet_address", cfg.WalletAddress),
		zap.Int("duration_minutes", *durationMinutes),
		zap.Int("cadence_seconds", cfg.CadenceSeconds),
		zap.Float64("liquidation_target_usd", cfg.LiquidationTargetUSD),
		zap.Bool("db_enabled", cfg.DbURL != ""),
		zap.Bool("kafka_enabled", cfg.KafkaBroker != ""),
		zap.Int("api_port", cfg.APIPort),
	)

	balanceClient := etherscan.NewClient(cfg.EtherscanBaseURL, cfg.EtherscanAPIKey, logger)
	priceClient := prices.NewClient(cfg.CoinGeckoBaseURL, logger)

	sinks := []session.Sink{report.NewCSVReporter("reports", logger)}

	// Connect to database if persistence is configured
	if cfg.DbURL != "" {
		db, err := sql.Open("postgres", cfg.DbURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := repository.InitMigration(db); err != nil {
			logger.Fatal("Failed to initialize database", zap.Error(err))
		}

		sinks = append(sinks, repository.NewSessionRepository(db, logger))
	}

	// Create event publisher if Kafka is configured
	if cfg.KafkaBroker != "" {
		eventPublisher, err := event_publisher.NewEventPublisher(cfg.KafkaBroker, cfg.KafkaTopic, logger)
		if err != nil {
			logger.Fatal("Failed to create event publisher", zap.Error(err))
		}
		defer eventPublisher.Close()

		sinks = append(sinks, eventPublisher)
	}

	runner := session.NewRunner(
		cfg,
		balanceClient,
		priceClient,
		sinks,
		os.Stdout,
		time.Duration(cfg.CadenceSeconds)*time.Second,
		logger,
	)

	// Create and start status API server
	var apiServer *api.Server
	if cfg.APIPort > 0 {
		apiServer = api.NewServer(cfg.APIPort, runner, balanceClient, logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error("API server failed", zap.Error(err))
			}
		}()
	}

	// Cancel the session on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal, stopping mining session", zap.String("signal", sig.String()))
		cancel()
	}()

	result, runErr := runner.Run(ctx, time.Duration(*durationMinutes)*time.Minute)

	// Shutdown API server gracefully
	if apiServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := apiServer.Stop(shutdownCtx); err != nil {
			logger.Error("Error shutting down API server", zap.Error(err))
		}
	}

	if runErr != nil {
		logger.Error("Mining session did not complete", zap.Error(runErr))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("Mining session complete",
		zap.String("session_id", result.SessionID),
		zap.Int("total_iterations", result.TotalIterations),
		zap.Float64("total_seconds", result.TotalSeconds),
	)
}
