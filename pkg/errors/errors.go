package errors

import "fmt"

// BotError представляет ошибку бота с кодом и контекстом
type BotError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
	Context interface{} `json:"context,omitempty"`
}

// Error реализует интерфейс error
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap позволяет использовать errors.Is и errors.As
func (e *BotError) Unwrap() error {
	return e.Err
}

// Is сопоставляет ошибки по коду, чтобы errors.Is работал
// и для обернутых копий предопределенных ошибок
func (e *BotError) Is(target error) bool {
	t, ok := target.(*BotError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithContext добавляет контекст к ошибке
func (e *BotError) WithContext(ctx interface{}) *BotError {
	return &BotError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Context: ctx,
	}
}

// WithError добавляет underlying ошибку
func (e *BotError) WithError(err error) *BotError {
	return &BotError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
		Context: e.Context,
	}
}

// Предопределенные ошибки.
// Прошедший или занятый слот ошибкой не считается: оракул и коммиттер
// сообщают о них обычными результатами (false, StatusUnavailable).
var (
	// Ошибки планирования слотов
	ErrCalendarUnavailable = &BotError{
		Code:    "CALENDAR_UNAVAILABLE",
		Message: "календарь недоступен",
	}

	ErrCommitFailed = &BotError{
		Code:    "COMMIT_FAILED",
		Message: "не удалось создать событие в календаре",
	}

	// Ошибки заявок
	ErrRequestNotFound = &BotError{
		Code:    "REQUEST_NOT_FOUND",
		Message: "заявка не найдена",
	}

	ErrRequestAlreadyProcessed = &BotError{
		Code:    "REQUEST_ALREADY_PROCESSED",
		Message: "заявка уже обработана",
	}

	// Ошибки валидации
	ErrInvalidDate = &BotError{
		Code:    "INVALID_DATE",
		Message: "некорректная дата",
	}

	ErrInvalidTime = &BotError{
		Code:    "INVALID_TIME",
		Message: "некорректное время",
	}

	// Системные ошибки
	ErrDatabaseConnection = &BotError{
		Code:    "DATABASE_CONNECTION",
		Message: "ошибка подключения к базе данных",
	}

	ErrConfigurationInvalid = &BotError{
		Code:    "CONFIGURATION_INVALID",
		Message: "некорректная конфигурация",
	}

	ErrTelegramAPI = &BotError{
		Code:    "TELEGRAM_API",
		Message: "ошибка Telegram API",
	}
)

// NewBotError создает новую ошибку бота
func NewBotError(code, message string) *BotError {
	return &BotError{
		Code:    code,
		Message: message,
	}
}

// Wrap оборачивает обычную ошибку в BotError
func Wrap(err error, code, message string) *BotError {
	return &BotError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// GetBotError извлекает BotError из ошибки
func GetBotError(err error) (*BotError, bool) {
	botErr, ok := err.(*BotError)
	return botErr, ok
}
