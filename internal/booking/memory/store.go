package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"telegram_booking_bot/internal/booking"
	"telegram_booking_bot/pkg/errors"

	"github.com/google/uuid"
)

// requestIDLength задает длину короткого идентификатора заявки в сообщениях
const requestIDLength = 10

// Store реализует booking.Store в памяти.
// Заявки живут до решения администратора; процесс-рестарт их теряет,
// что приемлемо: клиент просто отправит заявку заново.
type Store struct {
	mu       sync.RWMutex
	requests map[string]*booking.Request
}

// NewStore создает пустое хранилище заявок
func NewStore() *Store {
	return &Store{
		requests: make(map[string]*booking.Request),
	}
}

// Create сохраняет новую заявку со статусом PENDING
func (s *Store) Create(ctx context.Context, req *booking.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.ID == "" {
		req.ID = newRequestID()
	}
	req.Status = booking.StatusPending
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}

	stored := *req
	s.requests[req.ID] = &stored
	return nil
}

// Get возвращает копию заявки по идентификатору
func (s *Store) Get(ctx context.Context, id string) (*booking.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, errors.ErrRequestNotFound.WithContext(id)
	}

	cp := *req
	return &cp, nil
}

// SetStatus выполняет переход статуса заявки.
// Конечные статусы финальны: повторная обработка отклоняется.
func (s *Store) SetStatus(ctx context.Context, id string, status booking.Status, adminID int64) (*booking.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, errors.ErrRequestNotFound.WithContext(id)
	}
	if req.Status.IsTerminal() {
		return nil, errors.ErrRequestAlreadyProcessed.WithContext(string(req.Status))
	}

	req.Status = status
	req.ConfirmedBy = adminID

	cp := *req
	return &cp, nil
}

// Delete удаляет заявку
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[id]; !ok {
		return errors.ErrRequestNotFound.WithContext(id)
	}
	delete(s.requests, id)
	return nil
}

// CountPending возвращает количество ожидающих заявок
func (s *Store) CountPending(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, req := range s.requests {
		if req.Status == booking.StatusPending {
			count++
		}
	}
	return count, nil
}

// newRequestID генерирует короткий идентификатор заявки
func newRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:requestIDLength]
}
