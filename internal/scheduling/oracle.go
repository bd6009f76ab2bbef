package scheduling

import (
	"context"
	"time"

	"telegram_booking_bot/internal/calendar"
	"telegram_booking_bot/pkg/errors"
	"telegram_booking_bot/pkg/logger"
)

// freeBusyPadding расширяет окно запроса freebusy, чтобы не потерять
// интервалы, начинающиеся или заканчивающиеся ровно на границе слота
const freeBusyPadding = time.Minute

// Oracle проверяет занятость интервалов во внешнем календаре.
// Единственным источником правды о занятом времени служит сам календарь:
// локального состояния расписания у ядра нет.
type Oracle struct {
	client       calendar.Client
	clock        *Clock
	graceMinutes int
	log          *logger.Logger
}

// NewOracle создает оракул доступности поверх клиента календаря
func NewOracle(client calendar.Client, clock *Clock, graceMinutes int, log *logger.Logger) *Oracle {
	return &Oracle{
		client:       client,
		clock:        clock,
		graceMinutes: graceMinutes,
		log:          log,
	}
}

// IsFree сообщает, свободен ли интервал [start, end).
// Интервалы не в будущем отклоняются без обращения к календарю.
// При недоступности календаря возвращается (false, ошибка): неопределенность
// трактуется как «занято», чтобы исключить двойную запись.
func (o *Oracle) IsFree(ctx context.Context, start, end time.Time) (bool, error) {
	if !o.clock.IsFuture(start, o.graceMinutes) {
		return false, nil
	}

	busy, err := o.client.FreeBusy(ctx, start.Add(-freeBusyPadding), end.Add(freeBusyPadding))
	if err != nil {
		return false, errors.ErrCalendarUnavailable.WithError(err)
	}

	return !Overlaps(start, end, busy), nil
}

// CheckAvailable выполняет IsFree для пары дата/время, не пропуская
// наружу никаких ошибок: сбой календаря означает «недоступно»
func (o *Oracle) CheckAvailable(ctx context.Context, dateStr, timeStr string, durationMin int) bool {
	start, err := o.clock.Combine(dateStr, timeStr)
	if err != nil {
		return false
	}
	end := start.Add(time.Duration(durationMin) * time.Minute)

	free, err := o.IsFree(ctx, start, end)
	if err != nil {
		o.log.Warn("availability check failed, treating slot as busy",
			logger.String("date", dateStr),
			logger.String("time", timeStr),
			logger.Error(err))
		return false
	}
	return free
}

// Grace возвращает настроенный запас в минутах для проверки будущего
func (o *Oracle) Grace() int {
	return o.graceMinutes
}

// Overlaps проверяет пересечение [start, end) с занятыми интервалами.
// Интервалы полуоткрытые: соприкосновение границ пересечением не считается.
func Overlaps(start, end time.Time, busy []calendar.BusyInterval) bool {
	for _, b := range busy {
		if b.Start.Before(end) && b.End.After(start) {
			return true
		}
	}
	return false
}
