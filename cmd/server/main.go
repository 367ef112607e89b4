package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/ideen-revvo/credit-workflow/internal/application/service"
	"github.com/ideen-revvo/credit-workflow/internal/config"
	"github.com/ideen-revvo/credit-workflow/internal/infrastructure/persistence/repository"
	"github.com/ideen-revvo/credit-workflow/internal/infrastructure/persistence/sqlite"
	"github.com/ideen-revvo/credit-workflow/internal/interfaces/http"
	"github.com/ideen-revvo/credit-workflow/internal/report"
	"github.com/ideen-revvo/credit-workflow/pkg/database"
	"github.com/ideen-revvo/credit-workflow/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

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

	logger.Info("Starting credit-limit approval workflow engine",
		zap.Int("port", cfg.Server.Port))

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

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories and the transaction manager share one connection pool
	txManager := sqlite.NewDB(db.DB, logger)
	policyRepo := repository.NewPolicyRepository(db.DB, logger)
	requestRepo := repository.NewRequestRepository(db.DB, logger)
	workflowRepo := repository.NewWorkflowRepository(db.DB, logger)
	auditRepo := repository.NewAuditRepository(db.DB, logger)

	serviceLogger := utils.NewSugarAdapter(logger)

	resolver := service.NewRuleResolver(policyRepo, serviceLogger)
	builder := service.NewWorkflowBuilder(resolver, requestRepo, workflowRepo, auditRepo, txManager, serviceLogger)
	coordinator := service.NewApprovalCoordinator(workflowRepo, auditRepo, txManager, serviceLogger)
	exporter := report.NewAuditReportExporter(workflowRepo, auditRepo, logger)

	server := http.NewServer(http.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, builder, coordinator, policyRepo, exporter, serviceLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
