package google

import (
	"context"
	"fmt"
	"time"

	"telegram_booking_bot/internal/calendar"
	"telegram_booking_bot/pkg/metrics"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client реализует calendar.Client поверх Google Calendar API
type Client struct {
	service    *gcal.Service
	calendarID string
	location   *time.Location
}

// New создает клиент Google Calendar с сервисным аккаунтом
func New(ctx context.Context, credentialsJSON, calendarID string, location *time.Location) (*Client, error) {
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsJSON([]byte(credentialsJSON)),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{
		service:    svc,
		calendarID: calendarID,
		location:   location,
	}, nil
}

// FreeBusy возвращает занятые интервалы календаря в окне [timeMin, timeMax]
func (c *Client) FreeBusy(ctx context.Context, timeMin, timeMax time.Time) ([]calendar.BusyInterval, error) {
	req := &gcal.FreeBusyRequest{
		TimeMin: timeMin.Format(time.RFC3339),
		TimeMax: timeMax.Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: c.calendarID}},
	}

	resp, err := c.service.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		metrics.RecordCalendarQuery("freebusy", "error")
		return nil, fmt.Errorf("freebusy query failed: %w", err)
	}
	metrics.RecordCalendarQuery("freebusy", "ok")

	cal, ok := resp.Calendars[c.calendarID]
	if !ok {
		return nil, nil
	}

	var busy []calendar.BusyInterval
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("failed to parse busy start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("failed to parse busy end %q: %w", period.End, err)
		}
		busy = append(busy, calendar.BusyInterval{
			Start: start.In(c.location),
			End:   end.In(c.location),
		})
	}

	return busy, nil
}

// InsertEvent создает событие в календаре и возвращает ссылку на него
func (c *Client) InsertEvent(ctx context.Context, event *calendar.Event) (string, error) {
	ev := &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.Format(time.RFC3339),
			TimeZone: c.location.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.Format(time.RFC3339),
			TimeZone: c.location.String(),
		},
	}

	created, err := c.service.Events.Insert(c.calendarID, ev).Context(ctx).Do()
	if err != nil {
		metrics.RecordCalendarQuery("insert", "error")
		return "", fmt.Errorf("event insert failed: %w", err)
	}
	metrics.RecordCalendarQuery("insert", "ok")

	return created.HtmlLink, nil
}
