package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/hsvida/incident-workflow/internal/application/service"
	"github.com/hsvida/incident-workflow/internal/config"
	"github.com/hsvida/incident-workflow/internal/infrastructure/persistence/repository"
	"github.com/hsvida/incident-workflow/internal/infrastructure/persistence/sqlite"
	"github.com/hsvida/incident-workflow/internal/infrastructure/storage"
	httpadapter "github.com/hsvida/incident-workflow/internal/interfaces/http"
	"github.com/hsvida/incident-workflow/internal/report"
	"github.com/hsvida/incident-workflow/pkg/database"
	"github.com/hsvida/incident-workflow/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting incident notification workflow service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Create necessary directories
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.Fatal("Failed to create database directory", zap.Error(err))
	}

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Transaction manager over the shared connection pool
	txManager := sqlite.NewDB(db.DB, logger)

	// Initialize repositories
	notifRepo := repository.NewNotificationRepository(db.DB, logger)
	actionRepo := repository.NewActionRepository(db.DB, logger)
	historyRepo := repository.NewHistoryRepository(db.DB, logger)
	attachmentRepo := repository.NewAttachmentRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)

	// Initialize attachment storage
	fileStorage, err := storage.NewLocalFileStorage(cfg.Storage.AttachmentDir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize attachment storage", zap.Error(err))
	}

	// Initialize application services
	serviceLogger := &zapLoggerAdapter{logger: logger}

	services := httpadapter.Services{
		Intake: service.NewIntakeService(
			notifRepo, historyRepo, attachmentRepo, fileStorage, txManager, serviceLogger),
		Classification: service.NewClassificationService(
			notifRepo, historyRepo, userRepo, txManager, serviceLogger),
		Execution: service.NewExecutionService(
			notifRepo, actionRepo, historyRepo, userRepo, fileStorage, txManager, serviceLogger),
		Review: service.NewReviewService(
			notifRepo, historyRepo, txManager, serviceLogger),
		Approval: service.NewApprovalService(
			notifRepo, historyRepo, txManager, serviceLogger),
		Report: service.NewReportService(notifRepo, serviceLogger),
	}

	// Initialize register exporter
	exporter := report.NewRegisterExporter(logger)

	// Initialize HTTP server
	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Host:          cfg.Server.Host,
			Port:          cfg.Server.Port,
			ReadTimeout:   cfg.Server.ReadTimeout,
			WriteTimeout:  cfg.Server.WriteTimeout,
			MaxUploadSize: cfg.Storage.MaxUploadSize,
		},
		services,
		userRepo,
		exporter,
		serviceLogger,
	)

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
