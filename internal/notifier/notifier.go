package notifier

import (
	"context"
	"fmt"

	apptrepo "agendly/internal/appointments/repository"
	"agendly/internal/events"
	"agendly/pkg/config"
	"agendly/pkg/kafka"
	"agendly/pkg/model"
)

// Notifier consumes appointment lifecycle events and fans them out to
// the email and calendar sinks. Handlers are idempotent at the sink
// level, the consumer may redeliver after a crash.
type Notifier struct {
	repo     apptrepo.AppointmentRepository
	email    EmailSink
	calendar CalendarSink
	cfg      *config.Config
}

func New(repo apptrepo.AppointmentRepository, email EmailSink, calendar CalendarSink, cfg *config.Config) *Notifier {
	return &Notifier{
		repo:     repo,
		email:    email,
		calendar: calendar,
		cfg:      cfg,
	}
}

// Handle is the kafka.MessageHandler for the events topic.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	var event events.AppointmentEvent
	if err := msg.DecodeValue(&event); err != nil {
		return fmt.Errorf("failed to decode appointment event: %w", err)
	}

	eventType := msg.GetEventType()
	switch eventType {
	case events.TypeAppointmentCreated:
		return n.handleCreated(ctx, event)
	case events.TypeAppointmentRescheduled:
		return n.handleRescheduled(ctx, event)
	case events.TypeStatusChanged:
		return n.handleStatusChanged(ctx, event)
	case events.TypeReminderDue:
		return n.email.SendReminder(ctx, event)
	default:
		n.cfg.Log.Warn("Ignoring unknown event type", "event_type", eventType)
		return nil
	}
}

func (n *Notifier) handleCreated(ctx context.Context, event events.AppointmentEvent) error {
	if err := n.email.SendConfirmation(ctx, event); err != nil {
		return err
	}

	calendarEventID, err := n.calendar.CreateEvent(ctx, event)
	if err != nil {
		return err
	}
	if err := n.repo.UpdateCalendarEventID(ctx, event.AppointmentID, calendarEventID); err != nil {
		n.cfg.Log.Error("Failed to record calendar event id",
			"appointment_id", event.AppointmentID,
			"calendar_event_id", calendarEventID,
			"error", err,
		)
	}
	return nil
}

func (n *Notifier) handleRescheduled(ctx context.Context, event events.AppointmentEvent) error {
	if err := n.email.SendReschedule(ctx, event); err != nil {
		return err
	}

	appt, err := n.repo.FindByID(ctx, event.AppointmentID)
	if err != nil {
		return fmt.Errorf("failed to load appointment for calendar sync: %w", err)
	}
	if appt.CalendarEventID == "" {
		return nil
	}
	return n.calendar.UpdateEvent(ctx, appt.CalendarEventID, event)
}

func (n *Notifier) handleStatusChanged(ctx context.Context, event events.AppointmentEvent) error {
	switch event.Status {
	case model.StatusCanceled:
		if err := n.email.SendCancellation(ctx, event); err != nil {
			return err
		}
		return n.removeCalendarEvent(ctx, event)
	case model.StatusDone:
		return n.email.SendReviewRequest(ctx, event)
	default:
		return nil
	}
}

func (n *Notifier) removeCalendarEvent(ctx context.Context, event events.AppointmentEvent) error {
	appt, err := n.repo.FindByID(ctx, event.AppointmentID)
	if err != nil {
		return fmt.Errorf("failed to load appointment for calendar sync: %w", err)
	}
	if appt.CalendarEventID == "" {
		return nil
	}
	return n.calendar.DeleteEvent(ctx, appt.CalendarEventID)
}
