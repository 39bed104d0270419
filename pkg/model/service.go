package model

import "time"

// Service is a bookable salon service. DurationMin supplies the length
// of every appointment that references the service; a later duration
// edit never alters already-booked appointments, because the end time
// is stored on the appointment at booking time.
type Service struct {
	ID          string  `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SalonID     string  `json:"salon_id" bson:"salon_id" validate:"required,mongodb"`
	Name        string  `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Category    string  `json:"category" bson:"category" validate:"required,min=2,max=50"`
	Price       float64 `json:"price" bson:"price" validate:"gte=0"`
	DurationMin int     `json:"duration_min" bson:"duration_min" validate:"required,min=5,max=480"`
	IsActive    bool    `json:"is_active" bson:"is_active"`
}

func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMin) * time.Minute
}
