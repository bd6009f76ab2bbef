package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики для бота записи
var (
	// Общие метрики обработчиков
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_bot_updates_total",
			Help: "Общее количество обработанных обновлений",
		},
		[]string{"handler", "status"},
	)

	// Метрики заявок
	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_bot_requests_created_total",
			Help: "Общее количество созданных заявок на запись",
		},
	)

	BookingsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_bot_requests_confirmed_total",
			Help: "Общее количество подтвержденных заявок",
		},
	)

	BookingsCanceled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_bot_requests_canceled_total",
			Help: "Общее количество отмененных заявок",
		},
	)

	PendingRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "booking_bot_pending_requests",
			Help: "Количество заявок, ожидающих решения администратора",
		},
	)

	// Метрики календаря
	CalendarQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_bot_calendar_queries_total",
			Help: "Общее количество запросов к внешнему календарю",
		},
		[]string{"operation", "status"}, // freebusy/insert, ok/error
	)

	SuggestionsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booking_bot_suggestions_returned",
			Help:    "Количество предложенных свободных слотов за один запрос",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	// Метрики базы данных
	DatabaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_bot_database_operations_total",
			Help: "Общее количество операций с базой данных",
		},
		[]string{"operation", "table", "status"},
	)

	// Метрики ошибок
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_bot_errors_total",
			Help: "Общее количество ошибок",
		},
		[]string{"component", "error_type"},
	)

	// Метрики HTTP сервера
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_bot_http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_bot_http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordRequest записывает метрику обработки обновления
func RecordRequest(handler, status string) {
	RequestsTotal.WithLabelValues(handler, status).Inc()
}

// RecordBookingCreated записывает метрику создания заявки
func RecordBookingCreated() {
	BookingsCreated.Inc()
}

// RecordBookingConfirmed записывает метрику подтверждения заявки
func RecordBookingConfirmed() {
	BookingsConfirmed.Inc()
}

// RecordBookingCanceled записывает метрику отмены заявки
func RecordBookingCanceled() {
	BookingsCanceled.Inc()
}

// RecordCalendarQuery записывает метрику запроса к календарю
func RecordCalendarQuery(operation, status string) {
	CalendarQueries.WithLabelValues(operation, status).Inc()
}

// RecordSuggestions записывает количество предложенных слотов
func RecordSuggestions(count int) {
	SuggestionsReturned.Observe(float64(count))
}

// RecordDatabaseOperation записывает метрику операции с БД
func RecordDatabaseOperation(operation, table, status string) {
	DatabaseOperations.WithLabelValues(operation, table, status).Inc()
}

// RecordError записывает метрику ошибки
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordHTTPRequest записывает метрику HTTP запроса
func RecordHTTPRequest(method, endpoint, status string) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}

// SetPendingRequests устанавливает количество ожидающих заявок
func SetPendingRequests(count float64) {
	PendingRequests.Set(count)
}
