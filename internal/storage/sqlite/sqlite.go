package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"telegram_booking_bot/internal/storage/models"
	"telegram_booking_bot/pkg/errors"
	"telegram_booking_bot/pkg/metrics"

	_ "modernc.org/sqlite"
)

// SQLiteStorage реализует интерфейс Storage для SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// New создает новое подключение к SQLite базе данных
func New(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.ErrDatabaseConnection.WithError(err)
	}

	// SQLite поддерживает только одно write-подключение
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	storage := &SQLiteStorage{db: db}

	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return storage, nil
}

// migrate выполняет миграции базы данных
func (s *SQLiteStorage) migrate() error {
	// Включаем WAL mode для лучшей конкурентности
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if _, err := s.db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			telegram_id INTEGER UNIQUE NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			request_id TEXT NOT NULL,
			service TEXT NOT NULL,
			client_name TEXT NOT NULL,
			phone TEXT NOT NULL,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			duration_min INTEGER NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			event_link TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(user_id) REFERENCES users(telegram_id)
		)`,
		`CREATE TABLE IF NOT EXISTS message_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_telegram_id ON users(telegram_id)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_user_id ON appointments(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(date)`,
		`CREATE INDEX IF NOT EXISTS idx_message_history_user_id ON message_history(user_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration query: %w", err)
		}
	}

	return nil
}

// Close закрывает подключение к базе данных
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping проверяет подключение к базе данных
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveUser сохраняет пользователя, обновляя имя при повторном визите
func (s *SQLiteStorage) SaveUser(ctx context.Context, telegramID int64, username, firstName string) error {
	query := `INSERT INTO users (telegram_id, username, first_name) VALUES (?, ?, ?)
			  ON CONFLICT(telegram_id) DO UPDATE SET
				username = excluded.username,
				first_name = excluded.first_name,
				updated_at = CURRENT_TIMESTAMP`

	_, err := s.db.ExecContext(ctx, query, telegramID, username, firstName)
	if err != nil {
		metrics.RecordDatabaseOperation("insert", "users", "error")
		return fmt.Errorf("failed to save user: %w", err)
	}

	metrics.RecordDatabaseOperation("insert", "users", "success")
	return nil
}

// GetUserByTelegramID получает пользователя по telegram_id
func (s *SQLiteStorage) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, telegram_id, username, first_name, created_at, updated_at
			  FROM users WHERE telegram_id = ?`

	err := s.db.QueryRowContext(ctx, query, telegramID).Scan(
		&user.ID, &user.TelegramID, &user.Username, &user.FirstName,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// CreateAppointment сохраняет подтвержденную запись
func (s *SQLiteStorage) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	query := `INSERT INTO appointments (user_id, request_id, service, client_name, phone, date, time, duration_min, comment, event_link)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		appt.UserID, appt.RequestID, appt.Service, appt.ClientName, appt.Phone,
		appt.Date, appt.Time, appt.DurationMin, appt.Comment, appt.EventLink,
	)
	if err != nil {
		metrics.RecordDatabaseOperation("insert", "appointments", "error")
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get appointment ID: %w", err)
	}

	appt.ID = id
	metrics.RecordDatabaseOperation("insert", "appointments", "success")
	return nil
}

// GetUserAppointments получает записи пользователя, новые первыми
func (s *SQLiteStorage) GetUserAppointments(ctx context.Context, telegramID int64) ([]*models.Appointment, error) {
	query := `SELECT id, user_id, request_id, service, client_name, phone, date, time, duration_min, comment, event_link, created_at
			  FROM appointments WHERE user_id = ?
			  ORDER BY date DESC, time DESC`

	return s.queryAppointments(ctx, query, telegramID)
}

// GetUpcomingAppointments получает записи начиная с указанной даты
func (s *SQLiteStorage) GetUpcomingAppointments(ctx context.Context, fromDate string) ([]*models.Appointment, error) {
	query := `SELECT id, user_id, request_id, service, client_name, phone, date, time, duration_min, comment, event_link, created_at
			  FROM appointments WHERE date >= ?
			  ORDER BY date, time`

	return s.queryAppointments(ctx, query, fromDate)
}

func (s *SQLiteStorage) queryAppointments(ctx context.Context, query string, args ...any) ([]*models.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointments: %w", err)
	}
	defer rows.Close()

	var appts []*models.Appointment
	for rows.Next() {
		appt := &models.Appointment{}
		err := rows.Scan(
			&appt.ID, &appt.UserID, &appt.RequestID, &appt.Service, &appt.ClientName,
			&appt.Phone, &appt.Date, &appt.Time, &appt.DurationMin, &appt.Comment,
			&appt.EventLink, &appt.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appts = append(appts, appt)
	}

	return appts, rows.Err()
}

// SaveMessage сохраняет сообщение в историю переписки
func (s *SQLiteStorage) SaveMessage(ctx context.Context, telegramID int64, role, content string) error {
	query := `INSERT INTO message_history (user_id, role, content) VALUES (?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, telegramID, role, content)
	if err != nil {
		metrics.RecordDatabaseOperation("insert", "message_history", "error")
		return fmt.Errorf("failed to save message: %w", err)
	}

	metrics.RecordDatabaseOperation("insert", "message_history", "success")
	return nil
}

// GetHistory получает последние сообщения пользователя в хронологическом порядке
func (s *SQLiteStorage) GetHistory(ctx context.Context, telegramID int64, limit int) ([]*models.Message, error) {
	query := `SELECT id, user_id, role, content, created_at FROM (
				SELECT id, user_id, role, content, created_at
				FROM message_history WHERE user_id = ?
				ORDER BY id DESC LIMIT ?
			  ) ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, telegramID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get message history: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		err := rows.Scan(&msg.ID, &msg.UserID, &msg.Role, &msg.Content, &msg.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
