package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"account_ledger/internal/api"
	"account_ledger/internal/config"
	"account_ledger/internal/domain"
	"account_ledger/internal/ledger"
	"account_ledger/internal/repository/memory"
	"account_ledger/internal/service"
	"account_ledger/pkg/crypto"
	"account_ledger/pkg/metrics"
)

const appName = "account_ledger"

func main() {
	logger := setupLogger()
	logger.Info("Starting application", slog.String("name", appName))

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	accountRepo := memory.NewAccountRepository()
	txRepo := memory.NewTransactionRepository()
	locks := ledger.NewLockSet()

	notificationService := service.NewNotificationService(
		&service.MockEmailService{},
		&service.MockSMSService{},
		cfg.NotificationWorkers,
		logger,
	)

	accountService := ledger.NewAccountService(accountRepo, locks, logger)
	applyTypeRules(accountService, cfg)
	transactionService := ledger.NewTransactionService(accountRepo, txRepo, notificationService, locks, logger)
	transferService := ledger.NewTransferService(accountRepo, txRepo, notificationService, locks, logger)
	interestService := ledger.NewInterestService(accountRepo, txRepo, notificationService, locks, logger)
	statementService := ledger.NewStatementService(accountRepo, txRepo, logger)

	metricsCollector := metrics.NewMetricsCollector(logger)
	var signer *crypto.Signer
	if cfg.SigningKey != "" {
		signer = crypto.NewSigner(cfg.SigningKey, logger)
	}

	apiHandler := api.NewAPIHandler(
		accountService,
		transactionService,
		transferService,
		interestService,
		statementService,
		metricsCollector,
		signer,
		logger,
	)

	metricsServer := metricsCollector.StartMetricsServer(":" + cfg.MetricsPort)
	httpServer := startHTTPServer(apiHandler, ":"+cfg.ServerPort, logger)
	waitForShutdown(logger, httpServer, metricsServer, notificationService)
	logger.Info("Application shutdown complete")
}

func setupLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func applyTypeRules(accountService *ledger.AccountService, cfg config.Config) {
	accountService.SetTypeRules(domain.AccountTypeChecking, domain.TypeRules{
		MinimumBalance:       decimal.RequireFromString(cfg.CheckingMinimumBalance),
		OverdraftLimit:       decimal.RequireFromString(cfg.CheckingOverdraftLimit),
		MaxDailyTransactions: cfg.CheckingMaxDailyTransactions,
	}, domain.NewFlatRateStrategy(cfg.CheckingInterestRate))

	accountService.SetTypeRules(domain.AccountTypeSavings, domain.TypeRules{
		MinimumBalance:       decimal.RequireFromString(cfg.SavingsMinimumBalance),
		OverdraftLimit:       decimal.Zero,
		MaxDailyTransactions: cfg.SavingsMaxDailyTransactions,
	}, domain.NewFlatRateStrategy(cfg.SavingsInterestRate))
}

func startHTTPServer(apiHandler *api.APIHandler, addr string, logger *slog.Logger) *http.Server {
	server := &http.Server{
		Addr:         addr,
		Handler:      apiHandler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	return server
}

func waitForShutdown(
	logger *slog.Logger,
	httpServer *http.Server,
	metricsServer *http.Server,
	notificationService *service.NotificationService,
) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
	}
	if err := notificationService.Shutdown(ctx); err != nil {
		logger.Error("Notification service shutdown failed", slog.String("error", err.Error()))
	}
}
