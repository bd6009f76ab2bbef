package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	botpkg "telegram_booking_bot/internal/bot"
	"telegram_booking_bot/internal/config"
	"telegram_booking_bot/internal/middleware"
	"telegram_booking_bot/internal/storage"
	"telegram_booking_bot/pkg/logger"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server представляет HTTP сервер с webhook обработчиком и middleware
type Server struct {
	httpServer    *http.Server
	config        *config.Config
	log           *logger.Logger
	rateLimiter   *middleware.RateLimiter
	healthChecker *HealthChecker
	dispatcher    *botpkg.Dispatcher
	telegramBot   *tgbot.Bot
}

// New создает новый HTTP сервер
func New(
	cfg *config.Config,
	log *logger.Logger,
	store storage.Storage,
	dispatcher *botpkg.Dispatcher,
	telegramBot *tgbot.Bot,
	version string,
) *Server {
	server := &Server{
		config:        cfg,
		log:           log,
		rateLimiter:   middleware.NewRateLimiter(100, time.Minute, log),
		healthChecker: NewHealthChecker(store, version),
		dispatcher:    dispatcher,
		telegramBot:   telegramBot,
	}

	server.httpServer = &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        server.setupRoutes(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	return server
}

// setupRoutes настраивает маршруты с middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthChecker.HealthHandler)
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.Handle("/metrics", promhttp.Handler())

	// Middleware применяются в обратном порядке
	h := http.Handler(mux)
	h = middleware.PrometheusMiddleware(h)
	h = middleware.HTTPRateLimitMiddleware(s.rateLimiter)(h)

	return h
}

// handleWebhook обрабатывает Telegram webhook
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var update tgmodels.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.log.Error("Failed to decode Telegram update", logger.Error(err))
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	s.dispatcher.HandleUpdate(ctx, s.telegramBot, &update)

	s.log.Debug("Webhook processed",
		logger.Int64("update_id", update.ID),
		logger.Int64("processing_time_ms", time.Since(start).Milliseconds()),
	)

	w.WriteHeader(http.StatusOK)
}

// Start запускает сервер и блокируется до завершения контекста
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("Starting HTTP server", logger.String("addr", s.httpServer.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown корректно завершает работу сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if s.rateLimiter != nil {
		s.rateLimiter.Close()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Error during server shutdown", logger.Error(err))
		return err
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}
