package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"agendly/pkg/model"
)

// Reasons a slot is rejected, in evaluation order.
const (
	ReasonHoliday           = "holiday"
	ReasonOutsideSalonHours = "outside_salon_hours"
	ReasonOutsideStaffHours = "outside_staff_hours"
	ReasonDuringBreak       = "during_break"
)

// Result reports whether a candidate window is bookable and, when it is
// not, the first rule that rejected it.
type Result struct {
	Available bool
	Reason    string
}

func Available() Result {
	return Result{Available: true}
}

func Unavailable(reason string) Result {
	return Result{Available: false, Reason: reason}
}

// Check evaluates a candidate window against the salon calendar and the
// staff member's weekly profile. All rules run in the salon's timezone.
// Windows that cross midnight are treated as outside working hours, the
// day frames never wrap.
func Check(salon *model.Salon, staff *model.StaffProfile, window model.TimeWindow) (Result, error) {
	loc, err := time.LoadLocation(salon.TimeZone)
	if err != nil {
		return Result{}, fmt.Errorf("invalid salon timezone %q: %w", salon.TimeZone, err)
	}

	start := window.Start.In(loc)
	end := window.End.In(loc)

	// An end falling exactly on midnight closes out the preceding day.
	endDay := end
	if minuteOfDay(end) == 0 {
		endDay = end.Add(-time.Minute)
	}
	if start.Format("2006-01-02") != endDay.Format("2006-01-02") {
		return Unavailable(ReasonOutsideSalonHours), nil
	}

	if salon.IsHoliday(start.Format("2006-01-02")) {
		return Unavailable(ReasonHoliday), nil
	}

	startMin := minuteOfDay(start)
	endMin := asIntervalEnd(minuteOfDay(end))

	salonOpen, err := parseTimeOfDay(salon.WorkingHours.Start)
	if err != nil {
		return Result{}, fmt.Errorf("invalid salon opening time: %w", err)
	}
	salonClose, err := parseTimeOfDay(salon.WorkingHours.End)
	if err != nil {
		return Result{}, fmt.Errorf("invalid salon closing time: %w", err)
	}
	if startMin < salonOpen || endMin > asIntervalEnd(salonClose) {
		return Unavailable(ReasonOutsideSalonHours), nil
	}

	withinShift := false
	for _, wh := range staff.HoursFor(int(start.Weekday())) {
		shiftStart, err := parseTimeOfDay(wh.Start)
		if err != nil {
			return Result{}, fmt.Errorf("invalid staff shift start: %w", err)
		}
		shiftEnd, err := parseTimeOfDay(wh.End)
		if err != nil {
			return Result{}, fmt.Errorf("invalid staff shift end: %w", err)
		}
		if startMin >= shiftStart && endMin <= asIntervalEnd(shiftEnd) {
			withinShift = true
			break
		}
	}
	if !withinShift {
		return Unavailable(ReasonOutsideStaffHours), nil
	}

	for _, br := range staff.Breaks {
		breakStart, err := parseTimeOfDay(br.Start)
		if err != nil {
			return Result{}, fmt.Errorf("invalid break start: %w", err)
		}
		breakEnd, err := parseTimeOfDay(br.End)
		if err != nil {
			return Result{}, fmt.Errorf("invalid break end: %w", err)
		}
		if startMin < asIntervalEnd(breakEnd) && breakStart < endMin {
			return Unavailable(ReasonDuringBreak), nil
		}
	}

	return Available(), nil
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// A midnight end of an interval, "00:00" or a window ending exactly at
// midnight, means the close of the same day.
func asIntervalEnd(min int) int {
	if min == 0 {
		return 24 * 60
	}
	return min
}

// parseTimeOfDay converts an "HH:MM" string to minutes since midnight.
func parseTimeOfDay(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed time of day %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("malformed time of day %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("malformed time of day %q", s)
	}
	return hour*60 + minute, nil
}
