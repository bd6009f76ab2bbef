package storage

import (
	"context"
	"telegram_booking_bot/internal/storage/models"
)

// UserRepository определяет интерфейс для работы с пользователями
type UserRepository interface {
	SaveUser(ctx context.Context, telegramID int64, username, firstName string) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
}

// AppointmentRepository определяет интерфейс для работы с подтвержденными записями
type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, appt *models.Appointment) error
	GetUserAppointments(ctx context.Context, telegramID int64) ([]*models.Appointment, error)
	GetUpcomingAppointments(ctx context.Context, fromDate string) ([]*models.Appointment, error)
}

// MessageRepository определяет интерфейс для истории переписки
type MessageRepository interface {
	SaveMessage(ctx context.Context, telegramID int64, role, content string) error
	GetHistory(ctx context.Context, telegramID int64, limit int) ([]*models.Message, error)
}

// Storage объединяет все репозитории в единый интерфейс
type Storage interface {
	UserRepository
	AppointmentRepository
	MessageRepository
	Close() error
	Ping(ctx context.Context) error
}
