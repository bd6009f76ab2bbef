package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	botservice "telegram_booking_bot/internal/bot/service"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// StartHandler обрабатывает команду /start
type StartHandler struct {
	service *botservice.Service
}

// NewStartHandler создает новый обработчик команды /start
func NewStartHandler(service *botservice.Service) *StartHandler {
	return &StartHandler{service: service}
}

// Handle обрабатывает команду /start
func (h *StartHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || !strings.HasPrefix(update.Message.Text, "/start") {
		return
	}

	chatID := update.Message.Chat.ID
	from := update.Message.From

	if from != nil {
		if err := h.service.RegisterUser(ctx, from.ID, from.Username, from.FirstName); err != nil {
			log.Printf("Failed to register user %d: %v", from.ID, err)
		}
	}

	name := ""
	if from != nil && from.FirstName != "" {
		name = ", " + from.FirstName
	}

	message := fmt.Sprintf(
		"Здравствуйте%s! Я помогу записаться на массаж и спа-процедуры.\n\n"+
			"Напишите /book, чтобы оформить запись пошагово, "+
			"или просто напишите желаемые дату и время, например: «завтра в 18:30».",
		name,
	)

	if err := h.service.SendSimpleMessage(ctx, chatID, message); err != nil {
		log.Printf("Failed to send greeting to %d: %v", chatID, err)
	}
}
