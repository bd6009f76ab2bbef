package handlers

import (
	"context"
	"log"
	"strings"

	"telegram_booking_bot/internal/bot/fsm"
	botservice "telegram_booking_bot/internal/bot/service"
	"telegram_booking_bot/internal/scheduling"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Ключевые слова, по которым свободный текст считается попыткой записаться
var bookingIntentWords = []string{
	"запис", "забронир", "бронь", "хочу", "можно", "свободно", "прийти", "прием", "приём",
}

// FreeformHandler разбирает свободный текст и запускает диалог записи с предзаполнением
type FreeformHandler struct {
	service *botservice.Service
	booking *BookingHandler
	parser  *scheduling.Parser
	clock   *scheduling.Clock
}

// NewFreeformHandler создает новый обработчик свободного текста
func NewFreeformHandler(
	service *botservice.Service,
	bookingHandler *BookingHandler,
	parser *scheduling.Parser,
	clock *scheduling.Clock,
) *FreeformHandler {
	return &FreeformHandler{
		service: service,
		booking: bookingHandler,
		parser:  parser,
		clock:   clock,
	}
}

// Handle обрабатывает свободный текст вне диалога записи
func (h *FreeformHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	text := update.Message.Text

	parsed := h.parser.Parse(text)

	if !parsed.HasDate() && !parsed.HasTime() && !h.hasBookingIntent(text) {
		h.sendUsageHint(ctx, chatID)
		return
	}

	state := &fsm.State{
		Date: parsed.Date,
		Time: parsed.Time,
	}

	// Время без даты трактуем как сегодня
	if parsed.HasTime() && !parsed.HasDate() {
		state.Date = h.clock.Now().Format(scheduling.DateLayout)
	}

	if service := h.inferService(text); service != "" {
		state.Service = service
	}

	h.booking.BeginWith(ctx, chatID, userID, state)
}

func (h *FreeformHandler) hasBookingIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range bookingIntentWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// inferService ищет в тексте упоминание одной из услуг из пресетов
func (h *FreeformHandler) inferService(text string) string {
	lower := strings.ToLower(text)
	for _, preset := range h.service.Config().Booking.ServicePresets {
		if strings.Contains(lower, strings.ToLower(preset)) {
			return preset
		}
	}
	return ""
}

func (h *FreeformHandler) sendUsageHint(ctx context.Context, chatID int64) {
	hint := "Я бот для записи на массаж и спа-процедуры.\n\n" +
		"Напишите /book, чтобы оформить запись пошагово, " +
		"или напишите желаемые дату и время, например: «запишите меня завтра на 18:30»."
	if err := h.service.SendSimpleMessage(ctx, chatID, hint); err != nil {
		log.Printf("Failed to send usage hint to %d: %v", chatID, err)
	}
}
