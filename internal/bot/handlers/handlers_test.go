package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"telegram_booking_bot/internal/audit"
	"telegram_booking_bot/internal/booking"
	"telegram_booking_bot/internal/booking/memory"
	"telegram_booking_bot/internal/bot/fsm"
	botservice "telegram_booking_bot/internal/bot/service"
	"telegram_booking_bot/internal/calendar"
	"telegram_booking_bot/internal/config"
	"telegram_booking_bot/internal/scheduling"
	"telegram_booking_bot/internal/storage/sqlite"
	"telegram_booking_bot/pkg/errors"
	"telegram_booking_bot/pkg/logger"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// telegramAPIStub подменяет Telegram Bot API и запоминает вызванные методы
type telegramAPIStub struct {
	srv   *httptest.Server
	mu    sync.Mutex
	calls []string
}

func newTelegramAPIStub(t *testing.T) *telegramAPIStub {
	t.Helper()
	stub := &telegramAPIStub{}
	stub.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		stub.mu.Lock()
		stub.calls = append(stub.calls, method)
		stub.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if method == "sendMessage" {
			w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":1,"chat":{"id":1,"type":"private"}}}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	t.Cleanup(stub.srv.Close)
	return stub
}

func (s *telegramAPIStub) called(method string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calls {
		if c == method {
			return true
		}
	}
	return false
}

// fakeCalendarClient заменяет внешний календарь в тестах обработчиков
type fakeCalendarClient struct {
	busyAll bool
}

func (f *fakeCalendarClient) FreeBusy(ctx context.Context, timeMin, timeMax time.Time) ([]calendar.BusyInterval, error) {
	if f.busyAll {
		return []calendar.BusyInterval{{Start: timeMin, End: timeMax}}, nil
	}
	return nil, nil
}

func (f *fakeCalendarClient) InsertEvent(ctx context.Context, ev *calendar.Event) (string, error) {
	return "https://calendar.example/event/1", nil
}

type handlerEnv struct {
	api      *telegramAPIStub
	calendar *fakeCalendarClient
	states   *fsm.Manager
	requests booking.Store
	booking  *BookingHandler
	admin    *AdminHandler
}

const testAdminID int64 = 100

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	api := newTelegramAPIStub(t)
	tb, err := tgbot.New("123456:test", tgbot.WithServerURL(api.srv.URL), tgbot.WithSkipGetMe())
	if err != nil {
		t.Fatalf("failed to create bot: %v", err)
	}

	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		Telegram: config.TelegramConfig{AdminIDs: []int64{testAdminID}},
		Booking: config.BookingConfig{
			MinFutureMinutes:   5,
			DefaultDurationMin: 60,
			WorkStartHour:      10,
			WorkEndHour:        21,
			SlotStepMinutes:    30,
			SuggestLimit:       3,
			SuggestDaysAhead:   2,
			ServicePresets:     []string{"Тайский массаж"},
		},
	}

	auditLog, err := audit.Open(filepath.Join(t.TempDir(), "audit.log"))
	if err != nil {
		t.Fatalf("failed to open audit log: %v", err)
	}
	t.Cleanup(func() { auditLog.Close() })

	cal := &fakeCalendarClient{}
	clock := scheduling.NewClock(time.UTC)
	lg := logger.New(logger.LevelFatal)
	parser := scheduling.NewParser(clock)
	oracle := scheduling.NewOracle(cal, clock, cfg.Booking.MinFutureMinutes, lg)
	suggester := scheduling.NewSuggester(oracle, clock, cfg.Booking.WorkStartHour, cfg.Booking.WorkEndHour, lg)
	committer := scheduling.NewCommitter(cal, oracle, clock, lg)

	svc := botservice.NewService(tb, store, cfg)
	states := fsm.NewManager()
	requests := memory.NewStore()

	bookingHandler := NewBookingHandler(svc, states, parser, clock, oracle, suggester, requests, auditLog)
	adminHandler := NewAdminHandler(svc, bookingHandler, requests, committer, suggester, clock, auditLog)

	return &handlerEnv{
		api:      api,
		calendar: cal,
		states:   states,
		requests: requests,
		booking:  bookingHandler,
		admin:    adminHandler,
	}
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(scheduling.DateLayout)
}

func prefilledState(date, timeStr string) *fsm.State {
	return &fsm.State{
		Service:    "Тайский массаж",
		ClientName: "Иван",
		Phone:      "+79991234567",
		Date:       date,
		Time:       timeStr,
	}
}

func TestBeginWith_PastSlotRejected(t *testing.T) {
	env := newHandlerEnv(t)
	ctx := context.Background()

	env.booking.BeginWith(ctx, 1, 1, prefilledState("2020-01-02", "10:00"))

	state, ok := env.states.Get(1)
	if !ok {
		t.Fatal("dialog state not created")
	}
	if state.Step == fsm.StepComment {
		t.Fatal("past slot must not skip straight to the comment step")
	}
	if state.Step != fsm.StepTime {
		t.Errorf("step = %v, want StepTime", state.Step)
	}
	if state.Time != "" {
		t.Errorf("past time kept in state: %q", state.Time)
	}
}

func TestBeginWith_BusySlotRejected(t *testing.T) {
	env := newHandlerEnv(t)
	env.calendar.busyAll = true
	ctx := context.Background()

	env.booking.BeginWith(ctx, 1, 1, prefilledState(futureDate(7), "12:00"))

	state, ok := env.states.Get(1)
	if !ok {
		t.Fatal("dialog state not created")
	}
	if state.Step != fsm.StepTime {
		t.Errorf("step = %v, want StepTime", state.Step)
	}
	if state.Time != "" {
		t.Errorf("busy time kept in state: %q", state.Time)
	}
}

func TestBeginWith_FreeSlotSkipsToComment(t *testing.T) {
	env := newHandlerEnv(t)
	ctx := context.Background()

	date := futureDate(7)
	env.booking.BeginWith(ctx, 1, 1, prefilledState(date, "12:00"))

	state, ok := env.states.Get(1)
	if !ok {
		t.Fatal("dialog state not created")
	}
	if state.Step != fsm.StepComment {
		t.Errorf("step = %v, want StepComment", state.Step)
	}
	if state.Date != date || state.Time != "12:00" {
		t.Errorf("slot = %s %s, want %s 12:00", state.Date, state.Time, date)
	}
}

func TestDiscardAndSuggest_ReopensDialog(t *testing.T) {
	env := newHandlerEnv(t)
	ctx := context.Background()

	req := &booking.Request{
		UserID:      42,
		ChatID:      42,
		Service:     "Тайский массаж",
		ClientName:  "Иван",
		Phone:       "+79991234567",
		Date:        futureDate(7),
		Time:        "12:00",
		DurationMin: 60,
	}
	if err := env.requests.Create(ctx, req); err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	env.admin.discardAndSuggest(ctx, req, testAdminID)

	state, ok := env.states.Get(42)
	if !ok {
		t.Fatal("client dialog must be reopened so slot buttons keep working")
	}
	if state.Step != fsm.StepTime {
		t.Errorf("step = %v, want StepTime", state.Step)
	}
	if state.Service != req.Service || state.ClientName != req.ClientName || state.Phone != req.Phone {
		t.Errorf("client fields not carried over: %+v", state)
	}

	if _, err := env.requests.Get(ctx, req.ID); !stderrors.Is(err, errors.ErrRequestNotFound) {
		t.Errorf("discarded request must be deleted, got %v", err)
	}

	// Выбор предложенного слота продолжает диалог с шага комментария
	env.booking.AcceptSlot(ctx, 42, 42, futureDate(8), "13:00")

	state, ok = env.states.Get(42)
	if !ok {
		t.Fatal("dialog state lost after slot selection")
	}
	if state.Step != fsm.StepComment {
		t.Errorf("step after slot selection = %v, want StepComment", state.Step)
	}
	if state.Time != "13:00" {
		t.Errorf("time = %q, want 13:00", state.Time)
	}
}

func TestAdminCancel_RemovesDecisionKeyboard(t *testing.T) {
	env := newHandlerEnv(t)
	ctx := context.Background()

	req := &booking.Request{
		UserID:      42,
		ChatID:      42,
		Service:     "Тайский массаж",
		ClientName:  "Иван",
		Phone:       "+79991234567",
		Date:        futureDate(7),
		Time:        "12:00",
		DurationMin: 60,
	}
	if err := env.requests.Create(ctx, req); err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	update := &tgmodels.Update{
		CallbackQuery: &tgmodels.CallbackQuery{
			ID:      "cb1",
			From:    tgmodels.User{ID: testAdminID},
			Message: tgmodels.MaybeInaccessibleMessage{Message: &tgmodels.Message{ID: 7, Chat: tgmodels.Chat{ID: testAdminID}}},
			Data:    "adm:cancel:" + req.ID,
		},
	}
	env.admin.Handle(ctx, nil, update)

	got, err := env.requests.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("failed to get request: %v", err)
	}
	if got.Status != booking.StatusCanceled {
		t.Errorf("status = %s, want %s", got.Status, booking.StatusCanceled)
	}

	if !env.api.called("deleteMessage") {
		t.Error("decision keyboard message must be deleted after the decision")
	}
}
