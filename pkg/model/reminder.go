package model

import "time"

// Reminder types dispatched by the sweep.
const (
	ReminderDayBefore  = "day_before"
	ReminderHourBefore = "hour_before"
)

// ReminderLog is the dedupe marker for reminder dispatch. A unique
// index on (appointment_id, type) guarantees an appointment receives
// each reminder type at most once, regardless of sweep cadence drift.
type ReminderLog struct {
	ID            string    `bson:"_id,omitempty" json:"id,omitempty"`
	AppointmentID string    `bson:"appointment_id" json:"appointment_id"`
	Type          string    `bson:"type" json:"type"`
	SentAt        time.Time `bson:"sent_at" json:"sent_at"`
}
