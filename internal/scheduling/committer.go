package scheduling

import (
	"context"
	"fmt"
	"time"

	"telegram_booking_bot/internal/booking"
	"telegram_booking_bot/internal/calendar"
	"telegram_booking_bot/pkg/errors"
	"telegram_booking_bot/pkg/logger"
)

// CommitStatus описывает исход подтверждения заявки
type CommitStatus int

const (
	// StatusCreated означает, что событие создано в календаре
	StatusCreated CommitStatus = iota
	// StatusUnavailable означает, что слот в прошлом или занят и событие не создано
	StatusUnavailable
)

// CommitResult содержит результат подтверждения заявки
type CommitResult struct {
	Status CommitStatus
	Link   string
}

// Committer создает событие в календаре после повторной проверки слота.
// Между одобрением заявки и подтверждением может пройти время, поэтому
// будущность и доступность проверяются заново непосредственно перед записью.
type Committer struct {
	client calendar.Client
	oracle *Oracle
	clock  *Clock
	log    *logger.Logger
}

// NewCommitter создает обработчик подтверждения заявок
func NewCommitter(client calendar.Client, oracle *Oracle, clock *Clock, log *logger.Logger) *Committer {
	return &Committer{
		client: client,
		oracle: oracle,
		clock:  clock,
		log:    log,
	}
}

// Commit повторно проверяет слот и создает событие в календаре.
// Прошедший или занятый слот возвращается как StatusUnavailable без ошибки,
// чтобы вызывающая сторона могла предложить альтернативы.
// Недоступность календаря и сбой создания события возвращаются разными ошибками:
// во втором случае слот, возможно, все еще свободен.
func (c *Committer) Commit(ctx context.Context, req *booking.Request) (CommitResult, error) {
	start, err := c.clock.Combine(req.Date, req.Time)
	if err != nil {
		return CommitResult{}, err
	}
	end := start.Add(time.Duration(req.DurationMin) * time.Minute)

	if !c.clock.IsFuture(start, c.oracle.Grace()) {
		return CommitResult{Status: StatusUnavailable}, nil
	}

	free, err := c.oracle.IsFree(ctx, start, end)
	if err != nil {
		return CommitResult{}, err
	}
	if !free {
		return CommitResult{Status: StatusUnavailable}, nil
	}

	link, err := c.client.InsertEvent(ctx, &calendar.Event{
		Summary:     fmt.Sprintf("%s — %s", req.Service, req.ClientName),
		Description: buildDescription(req),
		Start:       start,
		End:         end,
	})
	if err != nil {
		return CommitResult{}, errors.ErrCommitFailed.WithError(err)
	}

	c.log.Info("booking committed",
		logger.String("request_id", req.ID),
		logger.String("date", req.Date),
		logger.String("time", req.Time),
		logger.String("link", link))

	return CommitResult{Status: StatusCreated, Link: link}, nil
}

// buildDescription собирает описание события для администратора
func buildDescription(req *booking.Request) string {
	desc := fmt.Sprintf("Имя: %s\nТелефон: %s\nУслуга: %s\n", req.ClientName, req.Phone, req.Service)
	if req.Comment != "" {
		desc += fmt.Sprintf("Комментарий: %s\n", req.Comment)
	}
	return desc
}
