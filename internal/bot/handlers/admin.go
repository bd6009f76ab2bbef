package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"strings"
	"time"

	"telegram_booking_bot/internal/audit"
	"telegram_booking_bot/internal/booking"
	"telegram_booking_bot/internal/bot/keyboard"
	botservice "telegram_booking_bot/internal/bot/service"
	"telegram_booking_bot/internal/scheduling"
	"telegram_booking_bot/internal/storage/models"
	"telegram_booking_bot/pkg/errors"
	"telegram_booking_bot/pkg/metrics"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// AdminHandler обрабатывает решения администратора по заявкам
type AdminHandler struct {
	service   *botservice.Service
	booking   *BookingHandler
	requests  booking.Store
	committer *scheduling.Committer
	suggester *scheduling.Suggester
	clock     *scheduling.Clock
	audit     *audit.Log
}

// NewAdminHandler создает новый обработчик callback запросов администратора
func NewAdminHandler(
	service *botservice.Service,
	bookingHandler *BookingHandler,
	requests booking.Store,
	committer *scheduling.Committer,
	suggester *scheduling.Suggester,
	clock *scheduling.Clock,
	auditLog *audit.Log,
) *AdminHandler {
	return &AdminHandler{
		service:   service,
		booking:   bookingHandler,
		requests:  requests,
		committer: committer,
		suggester: suggester,
		clock:     clock,
		audit:     auditLog,
	}
}

// Handle обрабатывает callback query от inline кнопок
func (h *AdminHandler) Handle(ctx context.Context, b *tgbot.Bot, update *tgmodels.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}

	data := cb.Data
	chatID := cb.Message.Message.Chat.ID
	userID := cb.From.ID

	switch {
	case strings.HasPrefix(data, "adm:confirm:"):
		h.handleDecision(ctx, cb, strings.TrimPrefix(data, "adm:confirm:"), true)
	case strings.HasPrefix(data, "adm:cancel:"):
		h.handleDecision(ctx, cb, strings.TrimPrefix(data, "adm:cancel:"), false)
	case strings.HasPrefix(data, "slot:"):
		// Выбор предложенного слота клиентом: slot:<date>:<time>
		parts := strings.SplitN(data, ":", 3)
		if len(parts) != 3 {
			h.answer(ctx, cb.ID, "Некорректные данные")
			return
		}
		h.answer(ctx, cb.ID, "")
		h.booking.AcceptSlot(ctx, chatID, userID, parts[1], parts[2])
	default:
		log.Printf("Unknown callback data from %d: %s", userID, data)
		h.answer(ctx, cb.ID, "Неизвестная команда")
	}
}

func (h *AdminHandler) handleDecision(ctx context.Context, cb *tgmodels.CallbackQuery, requestID string, confirm bool) {
	adminID := cb.From.ID
	adminChatID := cb.Message.Message.Chat.ID

	if !h.service.IsAdmin(adminID) {
		h.answer(ctx, cb.ID, "Недостаточно прав")
		return
	}

	req, err := h.requests.Get(ctx, requestID)
	if err != nil {
		if stderrors.Is(err, errors.ErrRequestNotFound) {
			h.answer(ctx, cb.ID, "Заявка не найдена или уже обработана")
			return
		}
		log.Printf("Failed to get request %s: %v", requestID, err)
		h.answer(ctx, cb.ID, "Ошибка при получении заявки")
		return
	}

	if req.Status.IsTerminal() {
		h.answer(ctx, cb.ID, "Заявка уже обработана")
		return
	}

	if confirm {
		h.confirm(ctx, cb, req, adminID, adminChatID)
	} else {
		h.cancel(ctx, cb, req, adminID, adminChatID)
	}
}

// confirm повторно проверяет слот и создает событие в календаре
func (h *AdminHandler) confirm(ctx context.Context, cb *tgmodels.CallbackQuery, req *booking.Request, adminID, adminChatID int64) {
	result, err := h.committer.Commit(ctx, req)
	if err != nil {
		// Календарь недоступен или событие не создалось: заявка остается в ожидании
		log.Printf("Failed to commit request %s: %v", req.ID, err)
		h.answer(ctx, cb.ID, "Календарь недоступен, попробуйте позже")
		h.service.SendError(ctx, adminChatID,
			fmt.Sprintf("Не удалось подтвердить заявку %s: календарь недоступен. Заявка остается в ожидании.", req.ID))
		return
	}

	if result.Status == scheduling.StatusUnavailable {
		// Слот заняли между созданием заявки и подтверждением
		h.answer(ctx, cb.ID, "Время уже занято")
		h.removeDecisionKeyboard(ctx, cb)
		h.discardAndSuggest(ctx, req, adminChatID)
		return
	}

	if _, err := h.requests.SetStatus(ctx, req.ID, booking.StatusConfirmed, adminID); err != nil {
		log.Printf("Failed to mark request %s confirmed: %v", req.ID, err)
	}

	metrics.RecordBookingConfirmed()
	if pending, err := h.requests.CountPending(ctx); err == nil {
		metrics.SetPendingRequests(float64(pending))
	}

	if err := h.audit.Record(audit.EventConfirmed, req.ID,
		fmt.Sprintf("admin=%d at=%s %s", adminID, req.Date, req.Time)); err != nil {
		log.Printf("Failed to write audit record for %s: %v", req.ID, err)
	}

	appt := &models.Appointment{
		UserID:      req.UserID,
		RequestID:   req.ID,
		Service:     req.Service,
		ClientName:  req.ClientName,
		Phone:       req.Phone,
		Date:        req.Date,
		Time:        req.Time,
		DurationMin: req.DurationMin,
		Comment:     req.Comment,
		EventLink:   result.Link,
	}
	if err := h.service.Storage().CreateAppointment(ctx, appt); err != nil {
		log.Printf("Failed to save appointment for request %s: %v", req.ID, err)
	}

	h.answer(ctx, cb.ID, "Заявка подтверждена")
	h.removeDecisionKeyboard(ctx, cb)

	clientText := fmt.Sprintf(
		"Ваша запись подтверждена!\n\nУслуга: %s\nДата: %s\nВремя: %s",
		req.Service, req.Date, req.Time,
	)
	if result.Link != "" {
		clientText += "\n\nСобытие в календаре: " + result.Link
	}
	if err := h.service.SendSimpleMessage(ctx, req.ChatID, clientText); err != nil {
		log.Printf("Failed to notify client %d: %v", req.ChatID, err)
	}

	h.service.NotifyAdmins(ctx, fmt.Sprintf("Заявка %s подтверждена администратором.", req.ID), nil)
}

// discardAndSuggest удаляет неактуальную заявку и предлагает клиенту свободные слоты
func (h *AdminHandler) discardAndSuggest(ctx context.Context, req *booking.Request, adminChatID int64) {
	if err := h.requests.Delete(ctx, req.ID); err != nil {
		log.Printf("Failed to delete stale request %s: %v", req.ID, err)
	}
	if pending, err := h.requests.CountPending(ctx); err == nil {
		metrics.SetPendingRequests(float64(pending))
	}

	h.service.SendError(ctx, adminChatID,
		fmt.Sprintf("Время заявки %s уже занято в календаре. Клиенту предложены другие слоты.", req.ID))

	cfg := h.service.Config()

	var slots []scheduling.Slot
	if start, err := h.clock.Combine(req.Date, req.Time); err == nil {
		slots = h.suggester.Suggest(ctx, start,
			time.Duration(req.DurationMin)*time.Minute,
			time.Duration(cfg.Booking.SlotStepMinutes)*time.Minute,
			cfg.Booking.SuggestLimit, cfg.Booking.SuggestDaysAhead)
	} else {
		slots = h.suggester.Next(ctx, req.DurationMin,
			cfg.Booking.SlotStepMinutes, cfg.Booking.SuggestLimit, cfg.Booking.SuggestDaysAhead)
	}

	text := fmt.Sprintf("К сожалению, время %s %s уже занято.", req.Date, req.Time)
	if len(slots) == 0 {
		text += " Напишите /book, чтобы выбрать другое время."
		h.service.SendError(ctx, req.ChatID, text)
		return
	}

	// Возобновляем диалог из полей заявки: состояние клиента было очищено
	// при ее создании, без него выбор слота упирался бы в завершенный диалог
	h.booking.Reopen(req.UserID, req)

	text += " Могу предложить ближайшие свободные слоты:"
	if err := h.service.SendMessage(ctx, req.ChatID, text, keyboard.CreateSlotSuggestionKeyboard(slots)); err != nil {
		log.Printf("Failed to send slot suggestions to %d: %v", req.ChatID, err)
	}
}

func (h *AdminHandler) cancel(ctx context.Context, cb *tgmodels.CallbackQuery, req *booking.Request, adminID, adminChatID int64) {
	if _, err := h.requests.SetStatus(ctx, req.ID, booking.StatusCanceled, adminID); err != nil {
		if stderrors.Is(err, errors.ErrRequestAlreadyProcessed) {
			h.answer(ctx, cb.ID, "Заявка уже обработана")
			return
		}
		log.Printf("Failed to cancel request %s: %v", req.ID, err)
		h.answer(ctx, cb.ID, "Ошибка при отклонении заявки")
		return
	}

	metrics.RecordBookingCanceled()
	if pending, err := h.requests.CountPending(ctx); err == nil {
		metrics.SetPendingRequests(float64(pending))
	}

	if err := h.audit.Record(audit.EventCanceled, req.ID,
		fmt.Sprintf("admin=%d", adminID)); err != nil {
		log.Printf("Failed to write audit record for %s: %v", req.ID, err)
	}

	h.answer(ctx, cb.ID, "Заявка отклонена")
	h.removeDecisionKeyboard(ctx, cb)

	clientText := "К сожалению, вашу заявку не удалось подтвердить. Напишите /book, чтобы выбрать другое время."
	if err := h.service.SendSimpleMessage(ctx, req.ChatID, clientText); err != nil {
		log.Printf("Failed to notify client %d: %v", req.ChatID, err)
	}

	h.service.NotifyAdmins(ctx, fmt.Sprintf("Заявка %s отклонена администратором.", req.ID), nil)
}

// HandleUpcoming отвечает администратору списком предстоящих записей
func (h *AdminHandler) HandleUpcoming(ctx context.Context, b *tgbot.Bot, update *tgmodels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	if !h.service.IsAdmin(update.Message.From.ID) {
		h.service.SendError(ctx, chatID, "Команда доступна только администраторам.")
		return
	}

	today := h.clock.Now().Format(scheduling.DateLayout)
	appts, err := h.service.Storage().GetUpcomingAppointments(ctx, today)
	if err != nil {
		log.Printf("Failed to get upcoming appointments: %v", err)
		h.service.SendError(ctx, chatID, "Не удалось получить список записей.")
		return
	}

	if len(appts) == 0 {
		h.service.SendError(ctx, chatID, "Предстоящих записей нет.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Предстоящие записи:\n")
	for _, a := range appts {
		fmt.Fprintf(&sb, "\n%s %s | %s | %s, %s", a.Date, a.Time, a.Service, a.ClientName, a.Phone)
	}

	if err := h.service.SendSimpleMessage(ctx, chatID, sb.String()); err != nil {
		log.Printf("Failed to send upcoming appointments to %d: %v", chatID, err)
	}
}

// removeDecisionKeyboard убирает сообщение с кнопками решения после того,
// как заявка обработана, чтобы исключить повторные нажатия
func (h *AdminHandler) removeDecisionKeyboard(ctx context.Context, cb *tgmodels.CallbackQuery) {
	msg := cb.Message.Message
	if msg == nil {
		return
	}
	if err := h.service.DeleteMessage(ctx, msg.Chat.ID, msg.ID); err != nil {
		log.Printf("Failed to delete decision message %d: %v", msg.ID, err)
	}
}

func (h *AdminHandler) answer(ctx context.Context, callbackID, text string) {
	if err := h.service.AnswerCallbackQuery(ctx, callbackID, text); err != nil {
		log.Printf("Failed to answer callback query: %v", err)
	}
}
