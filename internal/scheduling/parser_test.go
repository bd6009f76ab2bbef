package scheduling

import (
	"testing"
	"time"
)

// testClock возвращает часы с фиксированным «сейчас» для детерминированных тестов
func testClock(t *testing.T, now time.Time) *Clock {
	t.Helper()
	clock := NewClock(now.Location())
	clock.now = func() time.Time { return now }
	return clock
}

func fixedNow() time.Time {
	loc, _ := time.LoadLocation("Europe/Moscow")
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, loc)
}

func TestParse_DateAndTime(t *testing.T) {
	p := NewParser(testClock(t, fixedNow()))

	tests := []struct {
		name     string
		text     string
		wantDate string
		wantTime string
	}{
		{"время с двоеточием", "запишите меня на 18:30", "", "18:30"},
		{"время с точкой", "можно на 18.30?", "", "18:30"},
		{"точечная дата не съедается временем", "запись на 17.01 18:30", "2026-01-17", "18:30"},
		{"точечная запись читается как дата", "17.01", "2026-01-17", ""},
		{"завтра с точечным временем", "завтра 18.30", "2025-06-16", "18:30"},
		{"сегодня", "сегодня в 10:00", "2025-06-15", "10:00"},
		{"послезавтра", "послезавтра", "2025-06-17", ""},
		{"iso дата", "2025-12-25 10:00", "2025-12-25", "10:00"},
		{"числовая дата с годом", "25.12.2025", "2025-12-25", ""},
		{"двузначный год", "25.12.25", "2025-12-25", ""},
		{"название месяца", "25 декабря в 19:00", "2025-12-25", "19:00"},
		{"прошедшая дата переносится на следующий год", "3 марта", "2026-03-03", ""},
		{"будущая дата остается в текущем году", "1 июля", "2025-07-01", ""},
		{"дефисная дата с полным годом", "13-05-2026 14:00", "2026-05-13", "14:00"},
		{"дефисная дата без года не читается", "13-05", "", ""},
		{"невалидная iso дата не распадается на день-месяц", "2026-13-05", "", ""},
		{"мусор", "привет, как дела?", "", ""},
		{"пустая строка", "", "", ""},
		{"невалидное время игнорируется", "в 25:99", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.text)
			if got.Date != tt.wantDate {
				t.Errorf("Parse(%q).Date = %q, want %q", tt.text, got.Date, tt.wantDate)
			}
			if got.Time != tt.wantTime {
				t.Errorf("Parse(%q).Time = %q, want %q", tt.text, got.Time, tt.wantTime)
			}
		})
	}
}

func TestParse_TimeWithoutDateLeavesDateEmpty(t *testing.T) {
	p := NewParser(testClock(t, fixedNow()))

	got := p.Parse("18:30")
	if got.HasDate() {
		t.Errorf("expected no date for bare time, got %q", got.Date)
	}
	if got.Time != "18:30" {
		t.Errorf("expected time 18:30, got %q", got.Time)
	}
}

func TestParseDateToken(t *testing.T) {
	p := NewParser(testClock(t, fixedNow()))

	tests := []struct {
		token string
		want  string
		ok    bool
	}{
		{"завтра", "2025-06-16", true},
		{"2025-12-25", "2025-12-25", true},
		{"25 декабря", "2025-12-25", true},
		{"31.02.2025", "", false},
		{"не дата", "", false},
	}

	for _, tt := range tests {
		got, ok := p.ParseDateToken(tt.token)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseDateToken(%q) = (%q, %v), want (%q, %v)", tt.token, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseTimeToken(t *testing.T) {
	p := NewParser(testClock(t, fixedNow()))

	tests := []struct {
		token string
		want  string
		ok    bool
	}{
		{"18:30", "18:30", true},
		{"7.05", "07:05", true},
		{"9:00", "09:00", true},
		{"25:00", "", false},
		{"18:65", "", false},
		{"завтра", "", false},
	}

	for _, tt := range tests {
		got, ok := p.ParseTimeToken(tt.token)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseTimeToken(%q) = (%q, %v), want (%q, %v)", tt.token, got, ok, tt.want, tt.ok)
		}
	}
}
