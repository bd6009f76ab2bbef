package calendar

import (
	"context"
	"time"
)

// BusyInterval представляет занятый интервал [Start, End) внешнего календаря
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Event представляет данные для создания события в календаре
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// Client определяет интерфейс внешнего календаря.
// FreeBusy возвращает занятые интервалы, пересекающие окно [timeMin, timeMax].
// InsertEvent создает событие и возвращает ссылку на него.
type Client interface {
	FreeBusy(ctx context.Context, timeMin, timeMax time.Time) ([]BusyInterval, error)
	InsertEvent(ctx context.Context, event *Event) (string, error)
}
