package bot

import (
	"context"
	"log"
	"strings"

	"telegram_booking_bot/internal/audit"
	"telegram_booking_bot/internal/booking"
	"telegram_booking_bot/internal/bot/fsm"
	"telegram_booking_bot/internal/bot/handlers"
	"telegram_booking_bot/internal/bot/service"
	"telegram_booking_bot/internal/scheduling"
	"telegram_booking_bot/pkg/metrics"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Dispatcher управляет обработкой входящих обновлений от Telegram
type Dispatcher struct {
	service         *service.Service
	states          *fsm.Manager
	startHandler    *handlers.StartHandler
	bookingHandler  *handlers.BookingHandler
	freeformHandler *handlers.FreeformHandler
	adminHandler    *handlers.AdminHandler
	defaultHandler  *handlers.DefaultHandler
}

// NewDispatcher создает новый диспетчер обновлений
func NewDispatcher(
	svc *service.Service,
	parser *scheduling.Parser,
	clock *scheduling.Clock,
	oracle *scheduling.Oracle,
	suggester *scheduling.Suggester,
	committer *scheduling.Committer,
	requests booking.Store,
	auditLog *audit.Log,
) *Dispatcher {
	states := fsm.NewManager()
	bookingHandler := handlers.NewBookingHandler(svc, states, parser, clock, oracle, suggester, requests, auditLog)

	return &Dispatcher{
		service:         svc,
		states:          states,
		startHandler:    handlers.NewStartHandler(svc),
		bookingHandler:  bookingHandler,
		freeformHandler: handlers.NewFreeformHandler(svc, bookingHandler, parser, clock),
		adminHandler:    handlers.NewAdminHandler(svc, bookingHandler, requests, committer, suggester, clock, auditLog),
		defaultHandler:  handlers.NewDefaultHandler(svc),
	}
}

// HandleUpdate обрабатывает входящее обновление от Telegram
func (d *Dispatcher) HandleUpdate(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		metrics.RecordRequest("callback", "received")
		d.adminHandler.Handle(ctx, bot, update)
		return
	}

	if update.Message != nil && update.Message.From != nil {
		userID := update.Message.From.ID
		text := update.Message.Text

		d.service.SaveIncoming(ctx, userID, text)

		switch {
		case strings.HasPrefix(text, "/start"):
			metrics.RecordRequest("start", "received")
			d.startHandler.Handle(ctx, bot, update)
		case strings.HasPrefix(text, "/book"):
			metrics.RecordRequest("book", "received")
			d.bookingHandler.Begin(ctx, bot, update)
		case strings.HasPrefix(text, "/upcoming"):
			metrics.RecordRequest("upcoming", "received")
			d.adminHandler.HandleUpcoming(ctx, bot, update)
		case d.states.Active(userID):
			metrics.RecordRequest("booking_step", "received")
			d.bookingHandler.Continue(ctx, bot, update)
		case text != "":
			metrics.RecordRequest("freeform", "received")
			d.freeformHandler.Handle(ctx, bot, update)
		default:
			d.defaultHandler.Handle(ctx, bot, update)
		}
		return
	}

	log.Printf("Received unknown update type: %+v", update)
}
