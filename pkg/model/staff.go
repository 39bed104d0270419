package model

// StaffProfile is a staff member's availability profile: weekly
// work-hour intervals plus daily break intervals. Owned by the staff
// management side; the booking engine only ever reads it.
type StaffProfile struct {
	ID            string      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SalonID       string      `json:"salon_id" bson:"salon_id" validate:"required,mongodb"`
	UserID        string      `json:"user_id" bson:"user_id" validate:"required"`
	ServiceIDs    []string    `json:"service_ids,omitempty" bson:"service_ids" validate:"omitempty,dive,mongodb"`
	WorkHours     []WorkHours `json:"work_hours" bson:"work_hours" validate:"required,min=1,dive"`
	Breaks        []DayFrame  `json:"breaks,omitempty" bson:"breaks" validate:"omitempty,dive"`
	CalendarLinked bool       `json:"calendar_linked" bson:"calendar_linked"`
}

// WorkHours is a work interval on one weekday. DayOfWeek follows
// time.Weekday numbering (Sunday = 0).
type WorkHours struct {
	DayOfWeek int    `json:"day_of_week" bson:"day_of_week" validate:"min=0,max=6"`
	Start     string `json:"start" bson:"start" validate:"required,valid_time_of_day"`
	End       string `json:"end" bson:"end" validate:"required,valid_time_of_day"`
}

// HoursFor returns the work intervals for the given weekday.
func (p *StaffProfile) HoursFor(dayOfWeek int) []WorkHours {
	var hours []WorkHours
	for _, wh := range p.WorkHours {
		if wh.DayOfWeek == dayOfWeek {
			hours = append(hours, wh)
		}
	}
	return hours
}
