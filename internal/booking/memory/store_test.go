package memory

import (
	"context"
	stderrors "errors"
	"testing"

	"telegram_booking_bot/internal/booking"
	apperrors "telegram_booking_bot/pkg/errors"
)

func newRequest() *booking.Request {
	return &booking.Request{
		UserID:      42,
		ChatID:      42,
		Service:     "Массаж спины",
		ClientName:  "Анна",
		Phone:       "+79991234567",
		Date:        "2025-06-16",
		Time:        "18:30",
		DurationMin: 60,
	}
}

func TestStore_CreateAssignsIDAndPending(t *testing.T) {
	store := NewStore()
	req := newRequest()

	if err := store.Create(context.Background(), req); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if len(req.ID) != requestIDLength {
		t.Errorf("request ID %q has length %d, want %d", req.ID, len(req.ID), requestIDLength)
	}
	if req.Status != booking.StatusPending {
		t.Errorf("new request status = %q, want %q", req.Status, booking.StatusPending)
	}
	if req.CreatedAt.IsZero() {
		t.Error("CreatedAt must be set on create")
	}

	got, err := store.Get(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Service != req.Service || got.Date != req.Date {
		t.Errorf("stored request differs: got %+v", got)
	}
}

func TestStore_GetUnknown(t *testing.T) {
	store := NewStore()

	_, err := store.Get(context.Background(), "missing")
	if !stderrors.Is(err, apperrors.ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestStore_SetStatusTransitions(t *testing.T) {
	store := NewStore()
	req := newRequest()
	if err := store.Create(context.Background(), req); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	confirmed, err := store.SetStatus(context.Background(), req.ID, booking.StatusConfirmed, 777)
	if err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if confirmed.Status != booking.StatusConfirmed {
		t.Errorf("status = %q, want %q", confirmed.Status, booking.StatusConfirmed)
	}
	if confirmed.ConfirmedBy != 777 {
		t.Errorf("ConfirmedBy = %d, want 777", confirmed.ConfirmedBy)
	}

	// Конечный статус финален
	if _, err := store.SetStatus(context.Background(), req.ID, booking.StatusCanceled, 777); !stderrors.Is(err, apperrors.ErrRequestAlreadyProcessed) {
		t.Errorf("expected ErrRequestAlreadyProcessed, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store := NewStore()
	req := newRequest()
	if err := store.Create(context.Background(), req); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := store.Delete(context.Background(), req.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.Get(context.Background(), req.ID); !stderrors.Is(err, apperrors.ErrRequestNotFound) {
		t.Errorf("deleted request still found: %v", err)
	}
	if err := store.Delete(context.Background(), req.ID); !stderrors.Is(err, apperrors.ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound on double delete, got %v", err)
	}
}

func TestStore_CountPending(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first := newRequest()
	second := newRequest()
	if err := store.Create(ctx, first); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := store.Create(ctx, second); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if count, _ := store.CountPending(ctx); count != 2 {
		t.Errorf("CountPending = %d, want 2", count)
	}

	if _, err := store.SetStatus(ctx, first.ID, booking.StatusConfirmed, 777); err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}

	if count, _ := store.CountPending(ctx); count != 1 {
		t.Errorf("CountPending after confirm = %d, want 1", count)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore()
	req := newRequest()
	if err := store.Create(context.Background(), req); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, _ := store.Get(context.Background(), req.ID)
	got.Service = "изменено"

	again, _ := store.Get(context.Background(), req.ID)
	if again.Service != "Массаж спины" {
		t.Errorf("mutation of returned copy leaked into store: %q", again.Service)
	}
}
