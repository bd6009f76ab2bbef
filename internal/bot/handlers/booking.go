package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"telegram_booking_bot/internal/audit"
	"telegram_booking_bot/internal/booking"
	"telegram_booking_bot/internal/bot/fsm"
	"telegram_booking_bot/internal/bot/keyboard"
	botservice "telegram_booking_bot/internal/bot/service"
	"telegram_booking_bot/internal/scheduling"
	"telegram_booking_bot/pkg/metrics"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// BookingHandler ведет пошаговый диалог оформления заявки
type BookingHandler struct {
	service   *botservice.Service
	states    *fsm.Manager
	parser    *scheduling.Parser
	clock     *scheduling.Clock
	oracle    *scheduling.Oracle
	suggester *scheduling.Suggester
	requests  booking.Store
	audit     *audit.Log
}

// NewBookingHandler создает новый обработчик диалога записи
func NewBookingHandler(
	service *botservice.Service,
	states *fsm.Manager,
	parser *scheduling.Parser,
	clock *scheduling.Clock,
	oracle *scheduling.Oracle,
	suggester *scheduling.Suggester,
	requests booking.Store,
	auditLog *audit.Log,
) *BookingHandler {
	return &BookingHandler{
		service:   service,
		states:    states,
		parser:    parser,
		clock:     clock,
		oracle:    oracle,
		suggester: suggester,
		requests:  requests,
		audit:     auditLog,
	}
}

// Begin начинает диалог записи с выбора услуги
func (h *BookingHandler) Begin(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	cfg := h.service.Config()

	h.states.Set(userID, &fsm.State{
		Step:        fsm.StepService,
		DurationMin: cfg.Booking.DefaultDurationMin,
	})

	kb := keyboard.CreateServiceKeyboard(cfg.Booking.ServicePresets)
	if err := h.service.SendMessage(ctx, chatID, "Какую услугу вы хотите? Выберите из списка или напишите свою.", kb); err != nil {
		log.Printf("Failed to send service prompt to %d: %v", chatID, err)
	}
}

// BeginWith начинает диалог с уже известными полями, пропуская заполненные шаги.
// Предзаполненная пара дата/время проверяется сразу, как и при обычном вводе:
// прошедший или занятый слот сбрасывается до начала диалога.
func (h *BookingHandler) BeginWith(ctx context.Context, chatID int64, userID int64, state *fsm.State) {
	if state.DurationMin == 0 {
		state.DurationMin = h.service.Config().Booking.DefaultDurationMin
	}

	if state.Date != "" && state.Time != "" {
		h.verifyPrefilledSlot(ctx, chatID, state)
	}

	state.Step = h.nextStep(state)
	h.states.Set(userID, state)
	h.prompt(ctx, chatID, state)
}

// verifyPrefilledSlot проверяет предзаполненный слот так же, как handleTime,
// и сбрасывает непригодные поля, чтобы диалог переспросил их
func (h *BookingHandler) verifyPrefilledSlot(ctx context.Context, chatID int64, state *fsm.State) {
	start, err := h.clock.Combine(state.Date, state.Time)
	if err != nil {
		state.Date = ""
		state.Time = ""
		return
	}

	if !h.clock.IsFuture(start, h.oracle.Grace()) {
		state.Time = ""
		h.service.SendError(ctx, chatID, "Это время уже прошло, выберем другое.")
		return
	}

	if !h.oracle.CheckAvailable(ctx, state.Date, state.Time, state.DurationMin) {
		state.Time = ""
		h.offerAlternatives(ctx, chatID, start, state.DurationMin)
	}
}

// Continue обрабатывает очередной ответ пользователя в диалоге
func (h *BookingHandler) Continue(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	state, ok := h.states.Get(userID)
	if !ok {
		return
	}

	if strings.EqualFold(text, "/cancel") || strings.EqualFold(text, "отмена") {
		h.states.Clear(userID)
		h.service.SendError(ctx, chatID, "Оформление записи отменено.")
		return
	}

	switch state.Step {
	case fsm.StepService:
		h.handleService(ctx, chatID, userID, state, text)
	case fsm.StepName:
		h.handleName(ctx, chatID, userID, state, text)
	case fsm.StepPhone:
		h.handlePhone(ctx, chatID, userID, state, text)
	case fsm.StepDate:
		h.handleDate(ctx, chatID, userID, state, text)
	case fsm.StepTime:
		h.handleTime(ctx, chatID, userID, state, text)
	case fsm.StepComment:
		h.handleComment(ctx, chatID, userID, state, text)
	}
}

func (h *BookingHandler) handleService(ctx context.Context, chatID, userID int64, state *fsm.State, text string) {
	if len([]rune(text)) < 2 {
		h.service.SendError(ctx, chatID, "Пожалуйста, напишите название услуги (минимум 2 символа).")
		return
	}

	state.Service = text
	h.advance(ctx, chatID, userID, state)
}

func (h *BookingHandler) handleName(ctx context.Context, chatID, userID int64, state *fsm.State, text string) {
	if len([]rune(text)) < 2 {
		h.service.SendError(ctx, chatID, "Пожалуйста, напишите ваше имя (минимум 2 символа).")
		return
	}

	state.ClientName = text
	h.advance(ctx, chatID, userID, state)
}

func (h *BookingHandler) handlePhone(ctx context.Context, chatID, userID int64, state *fsm.State, text string) {
	phone, ok := NormalizePhone(text)
	if !ok {
		h.service.SendError(ctx, chatID, "Не могу распознать номер телефона. Напишите его в формате +7XXXXXXXXXX.")
		return
	}

	state.Phone = phone
	h.advance(ctx, chatID, userID, state)
}

func (h *BookingHandler) handleDate(ctx context.Context, chatID, userID int64, state *fsm.State, text string) {
	date, ok := h.parser.ParseDateToken(text)
	if !ok {
		h.service.SendError(ctx, chatID, "Не могу распознать дату. Напишите, например: «завтра», «25 декабря» или «2025-12-25».")
		return
	}

	state.Date = date
	h.advance(ctx, chatID, userID, state)
}

func (h *BookingHandler) handleTime(ctx context.Context, chatID, userID int64, state *fsm.State, text string) {
	timeStr, ok := h.parser.ParseTimeToken(text)
	if !ok {
		h.service.SendError(ctx, chatID, "Не могу распознать время. Напишите, например: «18:30».")
		return
	}

	start, err := h.clock.Combine(state.Date, timeStr)
	if err != nil {
		h.service.SendError(ctx, chatID, "Не получилось собрать дату и время. Попробуйте еще раз.")
		return
	}

	if !h.clock.IsFuture(start, h.oracle.Grace()) {
		h.service.SendError(ctx, chatID, "Это время уже прошло. Напишите другое время.")
		return
	}

	if !h.oracle.CheckAvailable(ctx, state.Date, timeStr, state.DurationMin) {
		h.offerAlternatives(ctx, chatID, start, state.DurationMin)
		return
	}

	state.Time = timeStr
	h.advance(ctx, chatID, userID, state)
}

func (h *BookingHandler) handleComment(ctx context.Context, chatID, userID int64, state *fsm.State, text string) {
	if isEmptyComment(text) {
		state.Comment = ""
	} else {
		state.Comment = text
	}

	h.submit(ctx, chatID, userID, state)
}

// advance вычисляет следующий незаполненный шаг и задает вопрос
func (h *BookingHandler) advance(ctx context.Context, chatID, userID int64, state *fsm.State) {
	state.Step = h.nextStep(state)
	h.states.Set(userID, state)
	h.prompt(ctx, chatID, state)
}

func (h *BookingHandler) nextStep(state *fsm.State) fsm.Step {
	switch {
	case state.Service == "":
		return fsm.StepService
	case state.ClientName == "":
		return fsm.StepName
	case state.Phone == "":
		return fsm.StepPhone
	case state.Date == "":
		return fsm.StepDate
	case state.Time == "":
		return fsm.StepTime
	default:
		return fsm.StepComment
	}
}

func (h *BookingHandler) prompt(ctx context.Context, chatID int64, state *fsm.State) {
	var text string
	var markup models.ReplyMarkup

	switch state.Step {
	case fsm.StepService:
		text = "Какую услугу вы хотите? Выберите из списка или напишите свою."
		markup = keyboard.CreateServiceKeyboard(h.service.Config().Booking.ServicePresets)
	case fsm.StepName:
		text = "Как вас зовут?"
		markup = keyboard.CreateRemoveKeyboard()
	case fsm.StepPhone:
		text = "Ваш номер телефона для связи?"
	case fsm.StepDate:
		text = "На какую дату записать? Например: «завтра» или «25 декабря»."
	case fsm.StepTime:
		text = "На какое время? Например: «18:30»."
	case fsm.StepComment:
		text = "Есть пожелания или комментарий? Если нет, напишите «нет»."
	default:
		return
	}

	if err := h.service.SendMessage(ctx, chatID, text, markup); err != nil {
		log.Printf("Failed to send booking prompt to %d: %v", chatID, err)
	}
}

// offerAlternatives сообщает о занятом времени и предлагает ближайшие свободные слоты
func (h *BookingHandler) offerAlternatives(ctx context.Context, chatID int64, wanted time.Time, durationMin int) {
	cfg := h.service.Config()
	slots := h.suggester.Suggest(ctx, wanted,
		time.Duration(durationMin)*time.Minute,
		time.Duration(cfg.Booking.SlotStepMinutes)*time.Minute,
		cfg.Booking.SuggestLimit, cfg.Booking.SuggestDaysAhead)

	if len(slots) == 0 {
		h.service.SendError(ctx, chatID, "К сожалению, это время занято, и я не нашел свободных слотов поблизости. Попробуйте другую дату.")
		return
	}

	kb := keyboard.CreateSlotSuggestionKeyboard(slots)
	text := "К сожалению, это время занято. Могу предложить ближайшие свободные слоты:"
	if err := h.service.SendMessage(ctx, chatID, text, kb); err != nil {
		log.Printf("Failed to send slot suggestions to %d: %v", chatID, err)
	}
}

// Reopen восстанавливает диалог из отклоненной заявки, чтобы клиент мог
// выбрать предложенный слот, не вводя свои данные заново
func (h *BookingHandler) Reopen(userID int64, req *booking.Request) {
	h.states.Set(userID, &fsm.State{
		Step:        fsm.StepTime,
		Service:     req.Service,
		ClientName:  req.ClientName,
		Phone:       req.Phone,
		Date:        req.Date,
		DurationMin: req.DurationMin,
	})
}

// AcceptSlot обрабатывает выбор предложенного слота из inline клавиатуры
func (h *BookingHandler) AcceptSlot(ctx context.Context, chatID, userID int64, date, timeStr string) {
	state, ok := h.states.Get(userID)
	if !ok {
		h.service.SendError(ctx, chatID, "Диалог записи уже завершен. Напишите /book, чтобы начать заново.")
		return
	}

	state.Date = date
	state.Time = timeStr
	h.advance(ctx, chatID, userID, state)
}

// submit создает заявку, пишет аудит и уведомляет администраторов
func (h *BookingHandler) submit(ctx context.Context, chatID, userID int64, state *fsm.State) {
	req := &booking.Request{
		UserID:      userID,
		ChatID:      chatID,
		Service:     state.Service,
		ClientName:  state.ClientName,
		Phone:       state.Phone,
		Date:        state.Date,
		Time:        state.Time,
		DurationMin: state.DurationMin,
		Comment:     state.Comment,
	}

	if err := h.requests.Create(ctx, req); err != nil {
		log.Printf("Failed to create booking request for %d: %v", userID, err)
		h.service.SendError(ctx, chatID, "Не получилось сохранить заявку. Попробуйте позже.")
		return
	}

	h.states.Clear(userID)

	metrics.RecordBookingCreated()
	if pending, err := h.requests.CountPending(ctx); err == nil {
		metrics.SetPendingRequests(float64(pending))
	}

	if err := h.audit.Record(audit.EventCreated, req.ID,
		fmt.Sprintf("user=%d service=%q at=%s %s", userID, req.Service, req.Date, req.Time)); err != nil {
		log.Printf("Failed to write audit record for %s: %v", req.ID, err)
	}

	confirmation := fmt.Sprintf(
		"Ваша заявка принята!\n\nУслуга: %s\nДата: %s\nВремя: %s\n\nАдминистратор подтвердит запись в ближайшее время.",
		req.Service, req.Date, req.Time,
	)
	if err := h.service.SendMessage(ctx, chatID, confirmation, keyboard.CreateRemoveKeyboard()); err != nil {
		log.Printf("Failed to send booking confirmation to %d: %v", chatID, err)
	}

	adminText := fmt.Sprintf(
		"Новая заявка %s\n\nУслуга: %s\nИмя: %s\nТелефон: %s\nДата: %s\nВремя: %s",
		req.ID, req.Service, req.ClientName, req.Phone, req.Date, req.Time,
	)
	if req.Comment != "" {
		adminText += "\nКомментарий: " + req.Comment
	}
	h.service.NotifyAdmins(ctx, adminText, keyboard.CreateAdminDecisionKeyboard(req.ID))
}

// NormalizePhone приводит номер к виду +7XXXXXXXXXX
func NormalizePhone(raw string) (string, bool) {
	var digits []rune
	plus := false
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, r)
		case r == '+' && i == 0:
			plus = true
		case r == ' ' || r == '-' || r == '(' || r == ')':
			// разделители пропускаем
		default:
			return "", false
		}
	}

	if len(digits) < 10 {
		return "", false
	}

	// Российский формат: 8XXXXXXXXXX эквивалентен +7XXXXXXXXXX
	if !plus && len(digits) == 11 && digits[0] == '8' {
		return "+7" + string(digits[1:]), true
	}

	if plus {
		return "+" + string(digits), true
	}
	return string(digits), true
}

func isEmptyComment(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "нет", "-", "no", "":
		return true
	}
	return false
}
