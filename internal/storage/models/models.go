package models

import "time"

// User представляет пользователя бота
type User struct {
	ID         int64     `json:"id" db:"id"`
	TelegramID int64     `json:"telegram_id" db:"telegram_id"`
	Username   string    `json:"username" db:"username"`
	FirstName  string    `json:"first_name" db:"first_name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Appointment представляет подтвержденную запись клиента
type Appointment struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	RequestID   string    `json:"request_id" db:"request_id"`
	Service     string    `json:"service" db:"service"`
	ClientName  string    `json:"client_name" db:"client_name"`
	Phone       string    `json:"phone" db:"phone"`
	Date        string    `json:"date" db:"date"`
	Time        string    `json:"time" db:"time"`
	DurationMin int       `json:"duration_min" db:"duration_min"`
	Comment     string    `json:"comment" db:"comment"`
	EventLink   string    `json:"event_link" db:"event_link"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// GetFormattedDateTime возвращает отформатированные дату и время записи
func (a *Appointment) GetFormattedDateTime() string {
	return a.Date + " " + a.Time
}

// Message представляет сообщение из истории переписки
type Message struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
