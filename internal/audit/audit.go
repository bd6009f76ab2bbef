package audit

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// События жизненного цикла заявки
const (
	EventCreated   = "CREATED"
	EventConfirmed = "CONFIRMED"
	EventCanceled  = "CANCELED"
)

// Log ведет журнал событий жизненного цикла заявок.
// Файл только дописывается, по одной человекочитаемой строке на событие.
type Log struct {
	mu   sync.Mutex
	file *os.File
}

// Open открывает журнал на дозапись, создавая файл при необходимости
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &Log{file: f}, nil
}

// Record дописывает строку о событии заявки
func (l *Log) Record(event, requestID, details string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("%s %s req=%s %s\n",
		time.Now().Format("2006-01-02 15:04:05"), event, requestID, details)

	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// Close закрывает файл журнала
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
