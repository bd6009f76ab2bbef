package booking

import (
	"context"
	"time"
)

// Status описывает статус заявки на запись
type Status string

const (
	// StatusPending означает, что заявка ожидает решения администратора
	StatusPending Status = "PENDING"
	// StatusConfirmed означает, что заявка подтверждена и событие создано
	StatusConfirmed Status = "CONFIRMED"
	// StatusCanceled означает, что заявка отменена администратором
	StatusCanceled Status = "CANCELED"
)

// IsTerminal сообщает, является ли статус конечным.
// Из конечного статуса переходов нет.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCanceled
}

// Request представляет заявку на запись, собранную диалогом и ожидающую решения
// администратора
type Request struct {
	ID          string
	UserID      int64
	ChatID      int64
	CreatedAt   time.Time
	Service     string
	ClientName  string
	Phone       string
	Date        string // 2006-01-02
	Time        string // 15:04
	DurationMin int
	Comment     string
	Status      Status
	ConfirmedBy int64
}

// Store определяет интерфейс хранилища заявок.
// Хранилище владеет жизненным циклом записей; ядро планирования читает
// заявку и инициирует переходы статуса, но не хранит заявки само.
type Store interface {
	// Create сохраняет новую заявку, присваивая ей идентификатор и статус PENDING
	Create(ctx context.Context, req *Request) error

	// Get возвращает заявку по идентификатору
	Get(ctx context.Context, id string) (*Request, error)

	// SetStatus выполняет переход PENDING -> CONFIRMED/CANCELED.
	// Повторный переход из конечного статуса отклоняется.
	SetStatus(ctx context.Context, id string, status Status, adminID int64) (*Request, error)

	// Delete удаляет заявку из хранилища
	Delete(ctx context.Context, id string) error

	// CountPending возвращает количество ожидающих заявок
	CountPending(ctx context.Context) (int, error)
}
