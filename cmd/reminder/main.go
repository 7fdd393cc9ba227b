package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	app_service "circles-claim-reminder/internal/application/service"
	"circles-claim-reminder/internal/domain/entity"
	domain_service "circles-claim-reminder/internal/domain/service"
	"circles-claim-reminder/internal/infrastructure/config"
	"circles-claim-reminder/internal/infrastructure/database"
	"circles-claim-reminder/internal/infrastructure/logger"
	"circles-claim-reminder/internal/infrastructure/messaging"
	"circles-claim-reminder/internal/infrastructure/rpc"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.NewLogger(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// Create FX application
	app := fx.New(
		// Provide dependencies
		fx.Supply(cfg),
		fx.Supply(log),
		fx.Supply(&cfg.RPC),
		fx.Supply(&cfg.NATS),
		fx.Supply(&cfg.Neo4J),
		fx.Provide(func() *zap.Logger { return log.Logger }),

		// Infrastructure providers
		fx.Provide(
			rpc.NewClient,
			rpc.NewCirclesLedgerRepository,
			database.NewNeo4JClient,
			database.NewNeo4JSnapshotRepository,
			messaging.NewNATSConsumer,
			messaging.NewNATSReminderDispatcher,
			func(d *messaging.NATSReminderDispatcher) domain_service.ReminderDispatcher { return d },
		),

		// Domain services
		fx.Provide(
			domain_service.NewInputNormalizer,
			domain_service.NewTrustGraphAggregator,
			func(cfg *config.Config) *domain_service.AccrualCalculator {
				return domain_service.NewAccrualCalculator(domain_service.AccrualParams{
					HourlyRate:     cfg.Accrual.HourlyRate,
					MaxAccrualDays: cfg.Accrual.MaxAccrualDays,
				})
			},
			func(cfg *config.Config) *domain_service.ReminderPrioritizer {
				return domain_service.NewReminderPrioritizer(cfg.Accrual.DailyUnit, cfg.Accrual.HourlyRate)
			},
			// No name-service resolver is deployed; handle requests fail
			// with ErrUnresolvedHandle until a deployment supplies one.
			func() domain_service.NameResolver { return nil },
		),

		// Application providers
		fx.Provide(
			app_service.NewAggregationApplicationService,
			app_service.NewReminderApplicationService,
		),

		// Lifecycle hooks
		fx.Invoke(startReminderService),
		fx.Invoke(startHealthServer),

		// Configure logging
		fx.WithLogger(func() fxevent.Logger {
			return fxevent.NopLogger
		}),
	)

	// Start the application
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Error("Failed to start application", zap.Error(err))
		os.Exit(1)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down application...")

	// Stop the application
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application gracefully", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped successfully")
}

// startReminderService wires the request intake to the reminder service
func startReminderService(
	lifecycle fx.Lifecycle,
	consumer *messaging.NATSConsumer,
	dispatcher *messaging.NATSReminderDispatcher,
	reminderService domain_service.ReminderService,
	neo4jClient *database.Neo4JClient,
	log *zap.Logger,
	cfg *config.Config,
) {
	// The request loop must outlive the start hook's context.
	runCtx, cancel := context.WithCancel(context.Background())

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting reminder service...")

			if err := neo4jClient.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect to Neo4J: %w", err)
			}

			log.Info("NATS configuration",
				zap.String("url", cfg.NATS.URL),
				zap.String("stream_name", cfg.NATS.StreamName),
				zap.String("subject_prefix", cfg.NATS.SubjectPrefix),
				zap.Bool("enabled", cfg.NATS.Enabled),
			)

			if err := consumer.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect to NATS: %w", err)
			}
			if err := dispatcher.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect dispatcher to NATS: %w", err)
			}

			// Start request processing
			go processRequests(runCtx, consumer, reminderService, log, cfg)

			log.Info("Reminder service started successfully")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping reminder service...")
			cancel()
			if err := neo4jClient.Close(ctx); err != nil {
				log.Error("Failed to close Neo4J connection", zap.Error(err))
			}
			if err := dispatcher.Disconnect(); err != nil {
				log.Error("Failed to disconnect dispatcher", zap.Error(err))
			}
			return consumer.Disconnect()
		},
	})
}

// startHealthServer starts the liveness and readiness endpoints
func startHealthServer(
	lifecycle fx.Lifecycle,
	cfg *config.Config,
	consumer *messaging.NATSConsumer,
	neo4jClient *database.Neo4JClient,
	logger *logger.Logger,
) {
	var server *http.Server
	watchCtx, stopWatch := context.WithCancel(context.Background())

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting health server...", zap.Int("port", cfg.App.HTTPPort))

			mux := http.NewServeMux()
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"status":"ok"}`))
			})
			mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
				checkCtx, cancel := context.WithTimeout(r.Context(), cfg.Health.Timeout)
				defer cancel()

				if !ready(checkCtx, cfg, consumer, neo4jClient) {
					w.WriteHeader(http.StatusServiceUnavailable)
					w.Write([]byte(`{"status":"unavailable"}`))
					return
				}
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"status":"ready"}`))
			})

			server = &http.Server{
				Addr:        fmt.Sprintf(":%d", cfg.App.HTTPPort),
				Handler:     mux,
				ReadTimeout: cfg.Health.Timeout,
			}

			// Start server in background
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("Health server error", zap.Error(err))
				}
			}()

			go watchConnectivity(watchCtx, cfg, consumer, neo4jClient, logger)

			logger.Info("Health server started successfully")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping health server...")
			stopWatch()
			if server != nil {
				return server.Shutdown(ctx)
			}
			return nil
		},
	})
}

// ready reports whether every enabled backend is reachable
func ready(ctx context.Context, cfg *config.Config, consumer *messaging.NATSConsumer, neo4jClient *database.Neo4JClient) bool {
	if cfg.NATS.Enabled && !consumer.IsConnected() {
		return false
	}
	if cfg.Neo4J.Enabled && !neo4jClient.IsConnected(ctx) {
		return false
	}
	return true
}

// watchConnectivity periodically logs lost backend connections
func watchConnectivity(
	ctx context.Context,
	cfg *config.Config,
	consumer *messaging.NATSConsumer,
	neo4jClient *database.Neo4JClient,
	logger *logger.Logger,
) {
	ticker := time.NewTicker(cfg.Health.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cfg.NATS.Enabled && !consumer.IsConnected() {
				logger.Warn("NATS connection is down")
			}
			checkCtx, cancel := context.WithTimeout(ctx, cfg.Health.Timeout)
			if cfg.Neo4J.Enabled && !neo4jClient.IsConnected(checkCtx) {
				logger.Warn("Neo4J connection is down")
			}
			cancel()
		}
	}
}

// processRequests feeds reminder requests into a broadcast worker pool
func processRequests(
	ctx context.Context,
	consumer *messaging.NATSConsumer,
	reminderService domain_service.ReminderService,
	log *zap.Logger,
	cfg *config.Config,
) {
	reqChan := consumer.GetRequestChannel()

	jobChan := make(chan *entity.ReminderRequest, cfg.App.WorkerPoolSize)
	var wg sync.WaitGroup

	// Start worker pool
	for i := 0; i < cfg.App.WorkerPoolSize; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			log.Info("Starting broadcast worker", zap.Int("worker_id", workerID))

			for req := range jobChan {
				result, err := reminderService.Broadcast(ctx, *req)
				if err != nil {
					log.Error("Failed to broadcast reminders",
						zap.String("identifier", req.Identifier),
						zap.Int("worker_id", workerID),
						zap.Error(err))
					continue
				}
				log.Info("Broadcast request served",
					zap.String("root", result.Root.Hex()),
					zap.Int("connections", result.Connections),
					zap.Int("sent", result.Sent),
					zap.Int("skipped", result.Skipped),
					zap.Int("failed", result.Failed),
					zap.Bool("dry_run", result.DryRun),
					zap.Int("worker_id", workerID))
			}
		}(i)
	}

	// Process incoming requests
	for {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return

		case req := <-reqChan:
			jobChan <- req
		}
	}
}
