package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sanayimarketi/marketplace/internal/marketplace/auth"
	"github.com/sanayimarketi/marketplace/internal/marketplace/config"
	"github.com/sanayimarketi/marketplace/internal/marketplace/controller"
	"github.com/sanayimarketi/marketplace/internal/marketplace/db"
	"github.com/sanayimarketi/marketplace/internal/marketplace/events"
	"github.com/sanayimarketi/marketplace/internal/marketplace/handlers"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	repo, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
	}()

	producer, closeProducer := initProducer(cfg, logger)
	defer closeProducer()

	applicationSvc := controller.NewApplicationService(repo, producer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.ImportTopic != "" {
		consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.ImportGroupID, cfg.ImportTopic, logger)
		consumer.RegisterHandler(applicationSvc.HandleImport)
		consumer.Start(ctx)
		defer consumer.Close()
	}

	applicationHandler := handlers.NewApplicationHandler(applicationSvc, logger)
	authInterceptor := auth.NewAuthInterceptor(cfg.JWTSecret)

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger, grpc.UnaryInterceptor(authInterceptor.Unary()))
	server.RegisterGRPCHandler(applicationHandler)
	if err := server.RegisterHTTPGateway(applicationHandler, cfg.JWTSecret); err != nil {
		logger.Fatal("Failed to register HTTP gateway", zap.Error(err))
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start servers", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

// initDatabase connects to PostgreSQL, retrying until cfg.StartupTimeout.
func initDatabase(cfg *config.Config, logger *zap.Logger) (*db.Repository, error) {
	dbConf := &db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = cfg.StartupTimeout

	var repo *db.Repository
	err := backoff.RetryNotify(func() error {
		var err error
		repo, err = db.NewRepository(dbConf)
		return err
	}, policy, func(err error, next time.Duration) {
		logger.Warn("Database not ready, retrying", zap.Error(err), zap.Duration("backoff", next))
	})
	return repo, err
}

// initProducer returns the Kafka producer, or a no-op one when no brokers are
// configured.
func initProducer(cfg *config.Config, logger *zap.Logger) (controller.EventProducer, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("No Kafka brokers configured, workflow events are disabled")
		return events.NopProducer{}, func() {}
	}

	producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic, cfg.StartupTimeout)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka producer", zap.Error(err))
	}
	return producer, producer.Close
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then shuts down servers.
func waitForShutdown(server *handlers.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.Stop()
	logger.Info("Servers stopped properly")
}
