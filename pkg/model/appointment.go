package model

import (
	"time"
)

// Booking sources, matching the client application channels.
const (
	SourceApp    = "app"
	SourceWeb    = "web"
	SourceWalkIn = "walk_in"
)

type Appointment struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SalonID         string    `json:"salon_id" bson:"salon_id" validate:"required,mongodb"`
	StaffID         string    `json:"staff_id" bson:"staff_id" validate:"required,mongodb"`
	ClientID        string    `json:"client_id" bson:"client_id" validate:"required,mongodb"`
	ServiceID       string    `json:"service_id" bson:"service_id" validate:"required,mongodb"`
	StartTime       time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime         time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status          string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed done no_show canceled"`
	Notes           string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	Source          string    `json:"source" bson:"source" validate:"required,oneof=app web walk_in"`
	CreatedBy       string    `json:"created_by" bson:"created_by" validate:"required"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	CancelReason    string    `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`
	CanceledBy      string    `json:"canceled_by,omitempty" bson:"canceled_by,omitempty"`
	CalendarEventID string    `json:"calendar_event_id,omitempty" bson:"calendar_event_id,omitempty"`
}

// Window returns the appointment's booked time slot.
func (a *Appointment) Window() TimeWindow {
	return TimeWindow{Start: a.StartTime, End: a.EndTime}
}

// BookingRequest is the input to the booking coordinator. The end time
// is derived from the referenced service's duration, never supplied by
// the caller.
type BookingRequest struct {
	SalonID   string    `json:"salon_id" validate:"required,mongodb"`
	StaffID   string    `json:"staff_id" validate:"required,mongodb"`
	ClientID  string    `json:"client_id" validate:"required,mongodb"`
	ServiceID string    `json:"service_id" validate:"required,mongodb"`
	StartTime time.Time `json:"start_time" validate:"required"`
	Notes     string    `json:"notes,omitempty" validate:"omitempty,max=500"`
	Source    string    `json:"source" validate:"required,oneof=app web walk_in"`
	CreatedBy string    `json:"created_by" validate:"required"`
}

// StatusChangeRequest asks the lifecycle state machine to move an
// appointment to a new status. Reason is recorded on cancellation.
type StatusChangeRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed done no_show canceled"`
	Actor  string `json:"actor" validate:"required"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// RescheduleRequest moves a non-terminal appointment to a new start
// time. The end is re-derived from the service duration.
type RescheduleRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	Actor     string    `json:"actor" validate:"required"`
}
