package config

import (
	stderrors "errors"
	"testing"
	"time"

	"telegram_booking_bot/pkg/errors"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Token:      "123:abc",
			WebhookURL: "https://bot.example.com/webhook",
			AdminIDs:   []int64{777},
		},
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Path: "booking.db"},
		Calendar: CalendarConfig{
			CalendarID:      "primary",
			CredentialsJSON: `{"type":"service_account"}`,
			Timezone:        "Europe/Moscow",
		},
		Booking: BookingConfig{
			MinFutureMinutes:   5,
			DefaultDurationMin: 60,
			WorkStartHour:      10,
			WorkEndHour:        21,
			SlotStepMinutes:    30,
			SuggestLimit:       5,
			SuggestDaysAhead:   14,
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"без токена", func(c *Config) { c.Telegram.Token = "" }},
		{"без webhook", func(c *Config) { c.Telegram.WebhookURL = "" }},
		{"без администраторов", func(c *Config) { c.Telegram.AdminIDs = nil }},
		{"без календаря", func(c *Config) { c.Calendar.CalendarID = "" }},
		{"без учетных данных", func(c *Config) { c.Calendar.CredentialsJSON = "" }},
		{"кривая зона", func(c *Config) { c.Calendar.Timezone = "Mars/Olympus" }},
		{"отрицательный запас", func(c *Config) { c.Booking.MinFutureMinutes = -1 }},
		{"нулевая длительность", func(c *Config) { c.Booking.DefaultDurationMin = 0 }},
		{"нулевой шаг", func(c *Config) { c.Booking.SlotStepMinutes = 0 }},
		{"конец раньше начала", func(c *Config) { c.Booking.WorkEndHour = 9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := validConfig()

	loc := cfg.Location()
	if loc.String() != "Europe/Moscow" {
		t.Errorf("Location = %v, want Europe/Moscow", loc)
	}

	now := time.Now().In(loc)
	if now.Location() != loc {
		t.Error("time not converted to configured location")
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := validConfig()

	if !cfg.IsAdmin(777) {
		t.Error("configured admin not recognized")
	}
	if cfg.IsAdmin(1) {
		t.Error("random user recognized as admin")
	}
}

func TestLoad_InvalidConfiguration(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")

	if _, err := Load(); !stderrors.Is(err, errors.ErrConfigurationInvalid) {
		t.Errorf("Load with empty token = %v, want ErrConfigurationInvalid", err)
	}
}

func TestParseAdminIDs(t *testing.T) {
	ids := parseAdminIDs("1, 2,три,3")
	want := []int64{1, 2, 3}
	if len(ids) != len(want) {
		t.Fatalf("parseAdminIDs = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

func TestParseServicePresets_Defaults(t *testing.T) {
	presets := parseServicePresets("")
	if len(presets) == 0 {
		t.Fatal("expected default presets for empty env")
	}

	custom := parseServicePresets("Стрижка, Маникюр")
	if len(custom) != 2 || custom[0] != "Стрижка" || custom[1] != "Маникюр" {
		t.Errorf("custom presets = %v", custom)
	}
}
