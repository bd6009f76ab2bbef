package scheduling

import (
	"context"
	"time"

	"telegram_booking_bot/pkg/logger"
	"telegram_booking_bot/pkg/metrics"
)

// Slot представляет кандидата свободного окна для записи
type Slot struct {
	Date string
	Time string
}

// Suggester подбирает ближайшие свободные слоты, сканируя рабочие часы
// вперед по дням с фиксированным шагом
type Suggester struct {
	oracle        *Oracle
	clock         *Clock
	workStartHour int
	workEndHour   int
	log           *logger.Logger
}

// NewSuggester создает подборщик слотов с заданными рабочими часами
func NewSuggester(oracle *Oracle, clock *Clock, workStartHour, workEndHour int, log *logger.Logger) *Suggester {
	return &Suggester{
		oracle:        oracle,
		clock:         clock,
		workStartHour: workStartHour,
		workEndHour:   workEndHour,
		log:           log,
	}
}

// Suggest возвращает до limit свободных слотов, начиная с startFrom,
// в порядке возрастания времени. Результаты не кэшируются: состояние
// календаря могло измениться между вызовами.
// Сбой оракула обрывает сканирование, возвращая уже собранное:
// недоступность календаря деградирует до «меньше предложений», а не до сбоя.
func (s *Suggester) Suggest(ctx context.Context, startFrom time.Time, duration, step time.Duration, limit, daysAhead int) []Slot {
	if limit <= 0 || step <= 0 || duration <= 0 {
		return nil
	}

	from := roundUpToStep(startFrom.In(s.clock.Location()), step)
	var out []Slot

	for offset := 0; offset <= daysAhead; offset++ {
		day := from.AddDate(0, 0, offset)
		workStart := time.Date(day.Year(), day.Month(), day.Day(), s.workStartHour, 0, 0, 0, s.clock.Location())
		workEnd := time.Date(day.Year(), day.Month(), day.Day(), s.workEndHour, 0, 0, 0, s.clock.Location())

		cursor := workStart
		if offset == 0 && from.After(workStart) {
			cursor = from
		}

		for !cursor.Add(duration).After(workEnd) {
			free, err := s.oracle.IsFree(ctx, cursor, cursor.Add(duration))
			if err != nil {
				s.log.Warn("slot scan aborted on calendar failure",
					logger.Int("collected", len(out)),
					logger.Error(err))
				metrics.RecordSuggestions(len(out))
				return out
			}
			if free {
				out = append(out, Slot{
					Date: cursor.Format(DateLayout),
					Time: cursor.Format(TimeLayout),
				})
				if len(out) >= limit {
					metrics.RecordSuggestions(len(out))
					return out
				}
			}
			cursor = cursor.Add(step)
		}
	}

	metrics.RecordSuggestions(len(out))
	return out
}

// Next выполняет подбор с настройками по умолчанию: от текущего момента с учетом
// запаса оракула
func (s *Suggester) Next(ctx context.Context, durationMin, stepMin, limit, daysAhead int) []Slot {
	startFrom := s.clock.Now().Add(time.Duration(s.oracle.Grace()) * time.Minute)
	return s.Suggest(ctx, startFrom,
		time.Duration(durationMin)*time.Minute,
		time.Duration(stepMin)*time.Minute,
		limit, daysAhead)
}

// roundUpToStep округляет момент вверх до ближайшего кратного шага
// в пределах суток
func roundUpToStep(t time.Time, step time.Duration) time.Time {
	t = t.Truncate(time.Minute)
	sinceMidnight := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	if rem := sinceMidnight % step; rem != 0 {
		t = t.Add(step - rem)
	}
	return t
}
