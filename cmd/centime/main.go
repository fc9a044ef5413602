package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"centime/internal/cli"
	"centime/internal/export"
	apphttp "centime/internal/http"
	"centime/internal/log"
	"centime/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	logger.Info("Starting centime server")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional; without it alerts are computed but not delivered.
	var publisher services.NotificationPublisher
	if client := cli.InitAMQP(logger, cfg); client != nil {
		defer client.Close()
		publisher = client
	}

	alerts := services.NewAlertEngine(repo, publisher)
	transactions := services.NewTransactionService(repo, alerts)
	recurring := services.NewRecurringService(repo, transactions, publisher)
	categories := services.NewCategoryService(repo)
	accounts := services.NewAccountService(repo)
	goals := services.NewGoalService(repo, publisher)
	reports := services.NewReportService(repo)

	var exporter apphttp.ExportSink
	if cfg.SheetsExportEnabled() {
		sheets, err := export.NewGoogleSheets(context.Background(), export.GoogleConfig{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", log.FieldError, err)
			os.Exit(1)
		}
		exporter = sheets
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Storage:      repo,
		Transactions: transactions,
		Recurring:    recurring,
		Categories:   categories,
		Accounts:     accounts,
		Goals:        goals,
		Reports:      reports,
		Exporter:     exporter,
		CacheSize:    cfg.ReportCacheSize,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting HTTP server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
