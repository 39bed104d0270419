package model

import "time"

// Salon holds the salon-wide booking configuration: the permitted
// working-hours window, holiday dates and the timezone all windows are
// evaluated in. Times of day are "HH:MM" 24-hour strings, holidays are
// "YYYY-MM-DD" dates in the salon's timezone.
type Salon struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Address      string    `json:"address" bson:"address" validate:"required,min=2,max=200"`
	OwnerID      string    `json:"owner_id" bson:"owner_id" validate:"required"`
	WorkingHours DayFrame  `json:"working_hours" bson:"working_hours" validate:"required"`
	Holidays     []string  `json:"holidays,omitempty" bson:"holidays" validate:"omitempty,dive,datetime=2006-01-02"`
	TimeZone     string    `json:"time_zone" bson:"time_zone" validate:"required,timezone"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// DayFrame is a time-of-day interval, e.g. 08:00-18:00.
type DayFrame struct {
	Start string `json:"start" bson:"start" validate:"required,valid_time_of_day"`
	End   string `json:"end" bson:"end" validate:"required,valid_time_of_day"`
}

func (s *Salon) IsHoliday(date string) bool {
	for _, h := range s.Holidays {
		if h == date {
			return true
		}
	}
	return false
}
