package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"rekapbot/bot"
	"rekapbot/config"
	"rekapbot/database"
	"rekapbot/ocr"
	"rekapbot/repository"
	"rekapbot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting rekap bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Apply pending migrations
	log.Info("Running database migrations...")
	if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db)

	// Initialize services
	log.Info("Initializing services...")
	accountService := service.NewAccountService(uowFactory)
	recapService := service.NewRecapService(uowFactory)
	ledgerService := service.NewLedgerService(uowFactory)
	withdrawalService := service.NewWithdrawalService(uowFactory)
	settingsService := service.NewSettingsService(uowFactory)
	ocrClient := ocr.NewClient(cfg.OCRAPIKey)
	depositService := service.NewDepositService(uowFactory, ocrClient)
	log.Info("Services initialized successfully")

	// Initialize Telegram bot
	log.Info("Initializing Telegram bot...")
	telegramBot, err := bot.New(cfg, accountService, recapService, ledgerService, withdrawalService, depositService, settingsService)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	go telegramBot.Run(ctx)

	log.WithField("environment", cfg.Environment).Info("Bot is running")
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down bot...")

	select {
	case <-telegramBot.Done():
	case <-time.After(10 * time.Second):
		log.Warn("Shutdown timeout exceeded")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
