package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram_booking_bot/internal/audit"
	"telegram_booking_bot/internal/booking/memory"
	botpkg "telegram_booking_bot/internal/bot"
	"telegram_booking_bot/internal/bot/service"
	"telegram_booking_bot/internal/calendar/google"
	"telegram_booking_bot/internal/config"
	"telegram_booking_bot/internal/scheduling"
	"telegram_booking_bot/internal/server"
	"telegram_booking_bot/internal/storage/sqlite"
	"telegram_booking_bot/pkg/logger"

	tgbot "github.com/go-telegram/bot"
)

const version = "1.0.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Telegram Booking Bot...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(logger.LevelInfo)
	appLogger.Info("Configuration loaded successfully")

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}()

	appLogger.Info("Storage initialized successfully")

	auditLog, err := audit.Open(cfg.Booking.AuditLogFile)
	if err != nil {
		log.Fatalf("Failed to open audit log: %v", err)
	}
	defer func() {
		if err := auditLog.Close(); err != nil {
			log.Printf("Error closing audit log: %v", err)
		}
	}()

	location := cfg.Location()
	clock := scheduling.NewClock(location)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calendarClient, err := google.New(ctx, cfg.Calendar.CredentialsJSON, cfg.Calendar.CalendarID, location)
	if err != nil {
		log.Fatalf("Failed to create calendar client: %v", err)
	}

	appLogger.Info("Calendar client created successfully")

	parser := scheduling.NewParser(clock)
	oracle := scheduling.NewOracle(calendarClient, clock, cfg.Booking.MinFutureMinutes, appLogger)
	suggester := scheduling.NewSuggester(oracle, clock, cfg.Booking.WorkStartHour, cfg.Booking.WorkEndHour, appLogger)
	committer := scheduling.NewCommitter(calendarClient, oracle, clock, appLogger)

	requests := memory.NewStore()

	telegramBot, err := tgbot.New(cfg.Telegram.Token)
	if err != nil {
		log.Fatalf("Failed to create Telegram bot: %v", err)
	}

	appLogger.Info("Telegram bot created successfully")

	botService := service.NewService(telegramBot, store, cfg)
	dispatcher := botpkg.NewDispatcher(botService, parser, clock, oracle, suggester, committer, requests, auditLog)

	if err := setupWebhook(telegramBot, cfg.Telegram.WebhookURL); err != nil {
		log.Fatalf("Failed to setup webhook: %v", err)
	}

	appLogger.Info("Webhook configured successfully")

	srv := server.New(cfg, appLogger, store, dispatcher, telegramBot, version)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.Info("Shutdown signal received, starting graceful shutdown...")
		cancel()
	}()

	appLogger.Info("Starting HTTP server on port " + cfg.Server.Port)
	if err := srv.Start(ctx); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	appLogger.Info("Server stopped gracefully")
}

// setupWebhook настраивает webhook для Telegram бота
func setupWebhook(bot *tgbot.Bot, webhookURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := bot.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{}); err != nil {
		log.Printf("Warning: failed to delete existing webhook: %v", err)
	}

	params := &tgbot.SetWebhookParams{
		URL: webhookURL,
	}

	if _, err := bot.SetWebhook(ctx, params); err != nil {
		return err
	}

	log.Printf("Webhook set to %s", webhookURL)
	return nil
}
