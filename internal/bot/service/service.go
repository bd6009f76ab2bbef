package service

import (
	"context"
	"log"

	"telegram_booking_bot/internal/config"
	"telegram_booking_bot/internal/storage"
	"telegram_booking_bot/pkg/errors"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// Service представляет основной сервис Telegram бота
type Service struct {
	bot     *bot.Bot
	storage storage.Storage
	config  *config.Config
}

// NewService создает новый экземпляр сервиса бота
func NewService(bot *bot.Bot, storage storage.Storage, config *config.Config) *Service {
	return &Service{
		bot:     bot,
		storage: storage,
		config:  config,
	}
}

// Config возвращает конфигурацию бота
func (s *Service) Config() *config.Config {
	return s.config
}

// Storage возвращает хранилище
func (s *Service) Storage() storage.Storage {
	return s.storage
}

// RegisterUser сохраняет пользователя в базе
func (s *Service) RegisterUser(ctx context.Context, telegramID int64, username, firstName string) error {
	return s.storage.SaveUser(ctx, telegramID, username, firstName)
}

// SaveIncoming сохраняет входящее сообщение в историю переписки
func (s *Service) SaveIncoming(ctx context.Context, telegramID int64, text string) {
	if err := s.storage.SaveMessage(ctx, telegramID, "user", text); err != nil {
		log.Printf("Failed to save incoming message from %d: %v", telegramID, err)
	}
}

// SendMessage отправляет сообщение пользователю
func (s *Service) SendMessage(ctx context.Context, chatID int64, text string, replyMarkup tgmodels.ReplyMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: replyMarkup,
	}

	_, err := s.bot.SendMessage(ctx, params)
	if err != nil {
		return errors.ErrTelegramAPI.WithError(err)
	}
	if saveErr := s.storage.SaveMessage(ctx, chatID, "bot", text); saveErr != nil {
		log.Printf("Failed to save outgoing message to %d: %v", chatID, saveErr)
	}
	return nil
}

// SendSimpleMessage отправляет простое текстовое сообщение
func (s *Service) SendSimpleMessage(ctx context.Context, chatID int64, text string) error {
	return s.SendMessage(ctx, chatID, text, nil)
}

// SendError отправляет сообщение об ошибке пользователю
func (s *Service) SendError(ctx context.Context, chatID int64, message string) {
	if err := s.SendSimpleMessage(ctx, chatID, message); err != nil {
		log.Printf("Failed to send error message to %d: %v", chatID, err)
	}
}

// AnswerCallbackQuery отвечает на callback query
func (s *Service) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	params := &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackQueryID,
		Text:            text,
	}

	if _, err := s.bot.AnswerCallbackQuery(ctx, params); err != nil {
		return errors.ErrTelegramAPI.WithError(err)
	}
	return nil
}

// DeleteMessage удаляет сообщение
func (s *Service) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	params := &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	}

	if _, err := s.bot.DeleteMessage(ctx, params); err != nil {
		return errors.ErrTelegramAPI.WithError(err)
	}
	return nil
}

// NotifyAdmins отправляет сообщение всем администраторам
func (s *Service) NotifyAdmins(ctx context.Context, text string, replyMarkup tgmodels.ReplyMarkup) {
	for _, adminID := range s.config.Telegram.AdminIDs {
		if err := s.SendMessage(ctx, adminID, text, replyMarkup); err != nil {
			log.Printf("Failed to notify admin %d: %v", adminID, err)
		}
	}
}

// IsAdmin проверяет, является ли пользователь администратором
func (s *Service) IsAdmin(userID int64) bool {
	return s.config.IsAdmin(userID)
}

// Close закрывает соединения сервиса
func (s *Service) Close() error {
	return s.storage.Close()
}
