package events

import (
	"context"
	"time"

	"agendly/pkg/kafka"
	"agendly/pkg/model"
)

// Event types carried in the event-type header.
const (
	TypeAppointmentCreated     = "appointment.created"
	TypeAppointmentRescheduled = "appointment.rescheduled"
	TypeStatusChanged          = "appointment.status_changed"
	TypeReminderDue            = "appointment.reminder_due"
)

// AppointmentEvent is the payload for every lifecycle event. Fields not
// relevant to a given event type are left zero.
type AppointmentEvent struct {
	AppointmentID  string    `json:"appointment_id"`
	SalonID        string    `json:"salon_id"`
	StaffID        string    `json:"staff_id"`
	ClientID       string    `json:"client_id"`
	ServiceID      string    `json:"service_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	PreviousStart  time.Time `json:"previous_start,omitempty"`
	ReminderType   string    `json:"reminder_type,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher emits appointment lifecycle events. Publishing happens
// after the owning database write has committed, never inside it.
type Publisher interface {
	AppointmentCreated(ctx context.Context, appt *model.Appointment) error
	AppointmentRescheduled(ctx context.Context, appt *model.Appointment, previousStart time.Time) error
	StatusChanged(ctx context.Context, appt *model.Appointment, previousStatus string) error
	ReminderDue(ctx context.Context, appt *model.Appointment, reminderType string) error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, source string) Publisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
	}
}

func (p *kafkaPublisher) AppointmentCreated(ctx context.Context, appt *model.Appointment) error {
	return p.publish(ctx, TypeAppointmentCreated, eventFrom(appt))
}

func (p *kafkaPublisher) AppointmentRescheduled(ctx context.Context, appt *model.Appointment, previousStart time.Time) error {
	event := eventFrom(appt)
	event.PreviousStart = previousStart
	return p.publish(ctx, TypeAppointmentRescheduled, event)
}

func (p *kafkaPublisher) StatusChanged(ctx context.Context, appt *model.Appointment, previousStatus string) error {
	event := eventFrom(appt)
	event.PreviousStatus = previousStatus
	return p.publish(ctx, TypeStatusChanged, event)
}

func (p *kafkaPublisher) ReminderDue(ctx context.Context, appt *model.Appointment, reminderType string) error {
	event := eventFrom(appt)
	event.ReminderType = reminderType
	return p.publish(ctx, TypeReminderDue, event)
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, event AppointmentEvent) error {
	msg := kafka.NewMessage().
		WithKey(event.AppointmentID).
		WithValue(event).
		WithEventType(eventType).
		WithSource(p.source).
		Build()

	return p.producer.Publish(ctx, msg)
}

func eventFrom(appt *model.Appointment) AppointmentEvent {
	return AppointmentEvent{
		AppointmentID: appt.ID,
		SalonID:       appt.SalonID,
		StaffID:       appt.StaffID,
		ClientID:      appt.ClientID,
		ServiceID:     appt.ServiceID,
		StartTime:     appt.StartTime,
		EndTime:       appt.EndTime,
		Status:        appt.Status,
		OccurredAt:    time.Now().UTC(),
	}
}

// NopPublisher discards all events. Used when the event bus is not
// configured and in tests.
type NopPublisher struct{}

func (NopPublisher) AppointmentCreated(context.Context, *model.Appointment) error {
	return nil
}

func (NopPublisher) AppointmentRescheduled(context.Context, *model.Appointment, time.Time) error {
	return nil
}

func (NopPublisher) StatusChanged(context.Context, *model.Appointment, string) error {
	return nil
}

func (NopPublisher) ReminderDue(context.Context, *model.Appointment, string) error {
	return nil
}
