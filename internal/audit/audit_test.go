package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLog_RecordAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	if err := log.Record(EventCreated, "abc1234567", "user=42 at=2025-06-16 18:30"); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := log.Record(EventConfirmed, "abc1234567", "admin=777"); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read audit file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), string(data))
	}
	if !strings.Contains(lines[0], EventCreated) || !strings.Contains(lines[0], "req=abc1234567") {
		t.Errorf("first line %q missing event or request id", lines[0])
	}
	if !strings.Contains(lines[1], EventConfirmed) {
		t.Errorf("second line %q missing confirm event", lines[1])
	}
}

func TestLog_ReopenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := log.Record(EventCreated, "id1", ""); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	log.Close()

	// Повторное открытие не затирает историю
	log, err = Open(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	if err := log.Record(EventCanceled, "id1", ""); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	log.Close()

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines after reopen, got %d", len(lines))
	}
}
