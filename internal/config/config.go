package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"telegram_booking_bot/pkg/errors"

	"github.com/joho/godotenv"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Calendar CalendarConfig `json:"calendar"`
	Booking  BookingConfig  `json:"booking"`
}

// TelegramConfig содержит настройки Telegram бота
type TelegramConfig struct {
	Token      string  `json:"token"`
	WebhookURL string  `json:"webhook_url"`
	AdminIDs   []int64 `json:"admin_ids"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig содержит настройки базы данных
type DatabaseConfig struct {
	Path string `json:"path"`
}

// CalendarConfig содержит настройки внешнего календаря
type CalendarConfig struct {
	CalendarID      string `json:"calendar_id"`
	CredentialsJSON string `json:"-"`
	Timezone        string `json:"timezone"`
}

// BookingConfig содержит настройки записи на прием
type BookingConfig struct {
	MinFutureMinutes   int      `json:"min_future_minutes"`
	DefaultDurationMin int      `json:"default_duration_min"`
	WorkStartHour      int      `json:"work_start_hour"`
	WorkEndHour        int      `json:"work_end_hour"`
	SlotStepMinutes    int      `json:"slot_step_minutes"`
	SuggestLimit       int      `json:"suggest_limit"`
	SuggestDaysAhead   int      `json:"suggest_days_ahead"`
	ServicePresets     []string `json:"service_presets"`
	AuditLogFile       string   `json:"audit_log_file"`
}

// Load загружает конфигурацию из переменных окружения и .env файла
func Load() (*Config, error) {
	// .env опционален: в проде переменные приходят из окружения
	_ = godotenv.Load()

	cfg := &Config{
		Telegram: TelegramConfig{
			Token:      os.Getenv("TELEGRAM_TOKEN"),
			WebhookURL: os.Getenv("WEBHOOK_URL"),
			AdminIDs:   parseAdminIDs(getEnv("ADMIN_CHAT_IDS", os.Getenv("ADMIN_CHAT_ID"))),
		},
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_FILE", "booking.db"),
		},
		Calendar: CalendarConfig{
			CalendarID:      getEnv("GOOGLE_CALENDAR_ID", os.Getenv("CALENDAR_ID")),
			CredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
			Timezone:        getEnv("BOT_TZ", "Europe/Moscow"),
		},
		Booking: BookingConfig{
			MinFutureMinutes:   getEnvAsInt("MIN_FUTURE_MINUTES", 5),
			DefaultDurationMin: getEnvAsInt("DEFAULT_DURATION_MIN", 60),
			WorkStartHour:      getEnvAsInt("WORK_START_HOUR", 10),
			WorkEndHour:        getEnvAsInt("WORK_END_HOUR", 21),
			SlotStepMinutes:    getEnvAsInt("SLOT_STEP_MINUTES", 30),
			SuggestLimit:       getEnvAsInt("SUGGEST_LIMIT", 5),
			SuggestDaysAhead:   getEnvAsInt("SUGGEST_DAYS_AHEAD", 14),
			ServicePresets:     parseServicePresets(os.Getenv("SERVICE_PRESETS")),
			AuditLogFile:       getEnv("AUDIT_LOG_FILE", "booking_audit.log"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.ErrConfigurationInvalid.WithError(err)
	}

	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.Telegram.WebhookURL == "" {
		return fmt.Errorf("WEBHOOK_URL is required")
	}
	if len(c.Telegram.AdminIDs) == 0 {
		return fmt.Errorf("ADMIN_CHAT_IDS is required")
	}
	if c.Calendar.CalendarID == "" {
		return fmt.Errorf("GOOGLE_CALENDAR_ID is required")
	}
	if c.Calendar.CredentialsJSON == "" {
		return fmt.Errorf("GOOGLE_CREDENTIALS_JSON is required")
	}
	if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
		return fmt.Errorf("invalid BOT_TZ %q: %w", c.Calendar.Timezone, err)
	}

	// Проверка логичности настроек записи
	if c.Booking.MinFutureMinutes < 0 {
		return fmt.Errorf("MIN_FUTURE_MINUTES must be non-negative")
	}
	if c.Booking.DefaultDurationMin <= 0 {
		return fmt.Errorf("DEFAULT_DURATION_MIN must be positive")
	}
	if c.Booking.SlotStepMinutes <= 0 {
		return fmt.Errorf("SLOT_STEP_MINUTES must be positive")
	}
	if c.Booking.WorkStartHour < 0 || c.Booking.WorkStartHour > 23 {
		return fmt.Errorf("WORK_START_HOUR must be within 0..23")
	}
	if c.Booking.WorkEndHour < 1 || c.Booking.WorkEndHour > 24 {
		return fmt.Errorf("WORK_END_HOUR must be within 1..24")
	}
	if c.Booking.WorkEndHour <= c.Booking.WorkStartHour {
		return fmt.Errorf("WORK_END_HOUR must be greater than WORK_START_HOUR")
	}
	if c.Booking.SuggestLimit <= 0 {
		return fmt.Errorf("SUGGEST_LIMIT must be positive")
	}
	if c.Booking.SuggestDaysAhead < 0 {
		return fmt.Errorf("SUGGEST_DAYS_AHEAD must be non-negative")
	}

	return nil
}

// Location возвращает настроенный часовой пояс
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		// Validate уже проверил зону, сюда попадаем только при ручной сборке Config
		return time.UTC
	}
	return loc
}

// IsAdmin проверяет, является ли чат администраторским
func (c *Config) IsAdmin(chatID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

// parseAdminIDs разбирает список идентификаторов администраторов через запятую
func parseAdminIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// parseServicePresets разбирает список услуг через запятую
func parseServicePresets(raw string) []string {
	var presets []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			presets = append(presets, part)
		}
	}
	if len(presets) == 0 {
		presets = []string{
			"Тайский массаж",
			"Массаж спины",
			"Массаж ног",
			"Спа-программа",
		}
	}
	return presets
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvAsInt получает переменную окружения как число
func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvAsDuration получает переменную окружения как duration
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
