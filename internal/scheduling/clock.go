package scheduling

import (
	"fmt"
	"time"

	"telegram_booking_bot/pkg/errors"
)

const (
	// DateLayout задает формат даты во всех внешних интерфейсах ядра
	DateLayout = "2006-01-02"
	// TimeLayout задает формат времени во всех внешних интерфейсах ядра
	TimeLayout = "15:04"
)

// Clock предоставляет текущее время в настроенном часовом поясе
// и проверку «момент достаточно далеко в будущем»
type Clock struct {
	location *time.Location
	now      func() time.Time
}

// NewClock создает часы для указанного часового пояса
func NewClock(location *time.Location) *Clock {
	return &Clock{
		location: location,
		now:      time.Now,
	}
}

// Now возвращает текущий момент в настроенном поясе
func (c *Clock) Now() time.Time {
	return c.now().In(c.location)
}

// Location возвращает настроенный часовой пояс
func (c *Clock) Location() *time.Location {
	return c.location
}

// Combine собирает дату и время в момент в настроенном поясе
func (c *Clock) Combine(dateStr, timeStr string) (time.Time, error) {
	if _, err := time.Parse(TimeLayout, timeStr); err != nil {
		return time.Time{}, errors.ErrInvalidTime.WithError(
			fmt.Errorf("cannot parse time %q: %w", timeStr, err))
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, dateStr+" "+timeStr, c.location)
	if err != nil {
		return time.Time{}, errors.ErrInvalidDate.WithError(
			fmt.Errorf("cannot combine %q %q: %w", dateStr, timeStr, err))
	}
	return t, nil
}

// IsFuture сообщает, находится ли момент строго позже now + grace.
// Момент, равный текущему, будущим не считается.
func (c *Clock) IsFuture(t time.Time, graceMinutes int) bool {
	return t.After(c.Now().Add(time.Duration(graceMinutes) * time.Minute))
}
