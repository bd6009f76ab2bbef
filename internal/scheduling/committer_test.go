package scheduling

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"telegram_booking_bot/internal/booking"
	"telegram_booking_bot/internal/calendar"
	apperrors "telegram_booking_bot/pkg/errors"
)

func testRequest() *booking.Request {
	return &booking.Request{
		ID:          "abc1234567",
		UserID:      42,
		ChatID:      42,
		Service:     "Тайский массаж",
		ClientName:  "Анна",
		Phone:       "+79991234567",
		Date:        "2025-06-16",
		Time:        "18:30",
		DurationMin: 60,
		Comment:     "после работы",
		Status:      booking.StatusPending,
	}
}

func newTestCommitter(t *testing.T, client *fakeCalendar) *Committer {
	t.Helper()
	clock := testClock(t, fixedNow())
	oracle := NewOracle(client, clock, 5, testLogger())
	return NewCommitter(client, oracle, clock, testLogger())
}

func TestCommitter_Commit_CreatesEvent(t *testing.T) {
	client := &fakeCalendar{link: "https://calendar.example/event/1"}
	committer := newTestCommitter(t, client)

	result, err := committer.Commit(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if result.Status != StatusCreated {
		t.Fatalf("Commit status = %v, want StatusCreated", result.Status)
	}
	if result.Link != client.link {
		t.Errorf("Commit link = %q, want %q", result.Link, client.link)
	}

	if len(client.inserted) != 1 {
		t.Fatalf("expected 1 inserted event, got %d", len(client.inserted))
	}
	event := client.inserted[0]
	if !strings.Contains(event.Summary, "Тайский массаж") || !strings.Contains(event.Summary, "Анна") {
		t.Errorf("event summary %q missing service or client name", event.Summary)
	}
	if !strings.Contains(event.Description, "+79991234567") {
		t.Errorf("event description %q missing phone", event.Description)
	}
	if !strings.Contains(event.Description, "после работы") {
		t.Errorf("event description %q missing comment", event.Description)
	}

	wantStart := time.Date(2025, time.June, 16, 18, 30, 0, 0, committer.clock.Location())
	if !event.Start.Equal(wantStart) {
		t.Errorf("event start = %v, want %v", event.Start, wantStart)
	}
	if !event.End.Equal(wantStart.Add(time.Hour)) {
		t.Errorf("event end = %v, want %v", event.End, wantStart.Add(time.Hour))
	}
}

func TestCommitter_Commit_SlotTakenBetweenApprovalAndCommit(t *testing.T) {
	// Слот был свободен при создании заявки, но занят к моменту подтверждения
	loc := fixedNow().Location()
	client := &fakeCalendar{busy: []calendar.BusyInterval{{
		Start: time.Date(2025, time.June, 16, 18, 0, 0, 0, loc),
		End:   time.Date(2025, time.June, 16, 19, 0, 0, 0, loc),
	}}}
	committer := newTestCommitter(t, client)

	result, err := committer.Commit(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if result.Status != StatusUnavailable {
		t.Errorf("Commit status = %v, want StatusUnavailable", result.Status)
	}
	if len(client.inserted) != 0 {
		t.Error("event must not be created for a busy slot")
	}
}

func TestCommitter_Commit_PastSlot(t *testing.T) {
	client := &fakeCalendar{}
	committer := newTestCommitter(t, client)

	req := testRequest()
	req.Date = "2025-06-14"

	result, err := committer.Commit(context.Background(), req)
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if result.Status != StatusUnavailable {
		t.Errorf("Commit status = %v, want StatusUnavailable", result.Status)
	}
	if client.freeBusyCalls != 0 {
		t.Error("past slot must not reach the calendar")
	}
}

func TestCommitter_Commit_CalendarUnavailable(t *testing.T) {
	client := &fakeCalendar{freeBusyErr: stderrors.New("network error")}
	committer := newTestCommitter(t, client)

	_, err := committer.Commit(context.Background(), testRequest())
	if !stderrors.Is(err, apperrors.ErrCalendarUnavailable) {
		t.Errorf("expected ErrCalendarUnavailable, got %v", err)
	}
	if len(client.inserted) != 0 {
		t.Error("event must not be created when calendar is unavailable")
	}
}

func TestCommitter_Commit_InsertFailure(t *testing.T) {
	client := &fakeCalendar{insertErr: stderrors.New("quota exceeded")}
	committer := newTestCommitter(t, client)

	_, err := committer.Commit(context.Background(), testRequest())
	if !stderrors.Is(err, apperrors.ErrCommitFailed) {
		t.Errorf("expected ErrCommitFailed, got %v", err)
	}
}

func TestCommitter_Commit_InvalidDate(t *testing.T) {
	committer := newTestCommitter(t, &fakeCalendar{})

	req := testRequest()
	req.Date = "мусор"

	if _, err := committer.Commit(context.Background(), req); err == nil {
		t.Error("expected error for invalid date")
	}
}
