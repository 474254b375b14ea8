package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/paystream-engine/internal/api_gateway"
	gatewayservice "github.com/paystream-engine/internal/api_gateway/service"
	"github.com/paystream-engine/internal/config"
	"github.com/paystream-engine/internal/engine"
	"github.com/paystream-engine/internal/logger"
	"github.com/paystream-engine/internal/platform/messaging/consumers"
	"github.com/paystream-engine/internal/platform/messaging/producers"
	"github.com/paystream-engine/internal/processor/consumer"
	"github.com/paystream-engine/internal/processor/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("ledger_server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Ledger Server",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize the in-memory ledger engine shared by the HTTP gateway and
	// the Kafka consumer
	eng := engine.New(engine.Config{AllowRedispute: cfg.Engine.AllowRedispute})

	// Initialize Kafka producers
	eventProducer, err := producers.NewLedgerEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize ledger event producer", "error", err)
		os.Exit(1)
	}

	operationProducer, err := producers.NewOperationReqMessageProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize operation request producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer is nil if DLQTopic is not configured. The interface must stay
	// nil in that case so the handler's nil check works.
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}

	// Initialize the processing service behind a worker pool
	baseService := service.NewProcessingService(eng, eventProducer, cfg.Engine.DepositRetryAttempts, log)
	processingService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka consumer and its handler
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)
	operationEventHandler := consumer.NewOperationEventHandler(
		log,
		processingService,
		deadLetters,
	)

	// Initialize gateway services
	accountService := gatewayservice.NewAccountService(eng, log)
	operationService := gatewayservice.NewOperationService(processingService, operationProducer, log)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, accountService, operationService)
	log.Info("REST server initialized")

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.OperationsTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.OperationsTopic, cfg.Kafka.ConsumerGroup, operationEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shutdown the worker pool so in-flight operations finish before the
	// producers close
	log.Info("Shutting down worker pool", "running_workers", processingService.Running())
	processingService.Shutdown()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Wait for the consumer goroutine to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close Kafka producers and consumer
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	if err = operationProducer.Close(); err != nil {
		log.Error("Error closing operation request producer", "error", err)
	}

	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing ledger event producer", "error", err)
	}

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Ledger Server shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Ledger Server shutdown completed with errors")
	} else {
		log.Info("Ledger Server shutdown completed successfully")
	}
}
