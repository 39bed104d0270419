package notifier

import (
	"context"

	"agendly/internal/events"
	"agendly/pkg/logger"

	"github.com/google/uuid"
)

// EmailSink delivers client-facing notifications. The production
// deployment plugs in the mail provider, the default implementation
// logs the outgoing notification.
type EmailSink interface {
	SendConfirmation(ctx context.Context, event events.AppointmentEvent) error
	SendReschedule(ctx context.Context, event events.AppointmentEvent) error
	SendCancellation(ctx context.Context, event events.AppointmentEvent) error
	SendReminder(ctx context.Context, event events.AppointmentEvent) error
	SendReviewRequest(ctx context.Context, event events.AppointmentEvent) error
}

// CalendarSink mirrors appointments into an external calendar. Create
// returns the provider's event id, which is written back onto the
// appointment.
type CalendarSink interface {
	CreateEvent(ctx context.Context, event events.AppointmentEvent) (string, error)
	UpdateEvent(ctx context.Context, calendarEventID string, event events.AppointmentEvent) error
	DeleteEvent(ctx context.Context, calendarEventID string) error
}

type logEmailSink struct {
	log *logger.Logger
}

func NewLogEmailSink(log *logger.Logger) EmailSink {
	return &logEmailSink{log: log}
}

func (s *logEmailSink) send(kind string, event events.AppointmentEvent) error {
	s.log.Info("Email notification",
		"kind", kind,
		"appointment_id", event.AppointmentID,
		"client_id", event.ClientID,
		"start_time", event.StartTime,
	)
	return nil
}

func (s *logEmailSink) SendConfirmation(_ context.Context, event events.AppointmentEvent) error {
	return s.send("confirmation", event)
}

func (s *logEmailSink) SendReschedule(_ context.Context, event events.AppointmentEvent) error {
	return s.send("reschedule", event)
}

func (s *logEmailSink) SendCancellation(_ context.Context, event events.AppointmentEvent) error {
	return s.send("cancellation", event)
}

func (s *logEmailSink) SendReminder(_ context.Context, event events.AppointmentEvent) error {
	return s.send("reminder", event)
}

func (s *logEmailSink) SendReviewRequest(_ context.Context, event events.AppointmentEvent) error {
	return s.send("review_request", event)
}

type logCalendarSink struct {
	log *logger.Logger
}

func NewLogCalendarSink(log *logger.Logger) CalendarSink {
	return &logCalendarSink{log: log}
}

func (s *logCalendarSink) CreateEvent(_ context.Context, event events.AppointmentEvent) (string, error) {
	id := uuid.New().String()
	s.log.Info("Calendar event created",
		"calendar_event_id", id,
		"appointment_id", event.AppointmentID,
	)
	return id, nil
}

func (s *logCalendarSink) UpdateEvent(_ context.Context, calendarEventID string, event events.AppointmentEvent) error {
	s.log.Info("Calendar event updated",
		"calendar_event_id", calendarEventID,
		"appointment_id", event.AppointmentID,
	)
	return nil
}

func (s *logCalendarSink) DeleteEvent(_ context.Context, calendarEventID string) error {
	s.log.Info("Calendar event deleted", "calendar_event_id", calendarEventID)
	return nil
}
