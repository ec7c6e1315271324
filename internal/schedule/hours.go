package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the keys a WorkingHours map may hold, Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var ErrInvalidWorkingHours = errors.New("invalid working hours")

// WeekdayOf returns the lower-case English weekday of date. It does not
// depend on the process locale.
func WeekdayOf(date time.Time) Weekday {
	return Weekday(strings.ToLower(date.Weekday().String()))
}

func (d Weekday) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	default:
		return false
	}
}

type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// WorkingHours is a salon's weekly schedule keyed by weekday.
type WorkingHours map[Weekday]DayHours

// Window is the open/close pair of a single day as "HH:MM" strings.
type Window struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Resolve returns the opening window for date. A missing weekday and an
// explicit closed day both report false.
func Resolve(hours WorkingHours, date time.Time) (Window, bool) {
	day, ok := hours[WeekdayOf(date)]
	if !ok || day.Closed {
		return Window{}, false
	}
	return Window{Open: day.Open, Close: day.Close}, true
}

// Validate checks the schedule before an admin overwrites it.
func (h WorkingHours) Validate() error {
	for day, hours := range h {
		if !day.Valid() {
			return fmt.Errorf("%w: unknown weekday %q", ErrInvalidWorkingHours, day)
		}
		if hours.Closed {
			continue
		}
		open, err := ParseClock(hours.Open)
		if err != nil {
			return fmt.Errorf("%w: %s open: %v", ErrInvalidWorkingHours, day, err)
		}
		closeAt, err := ParseClock(hours.Close)
		if err != nil {
			return fmt.Errorf("%w: %s close: %v", ErrInvalidWorkingHours, day, err)
		}
		if open >= closeAt {
			return fmt.Errorf("%w: %s opens at %s but closes at %s", ErrInvalidWorkingHours, day, hours.Open, hours.Close)
		}
	}
	return nil
}

// DefaultWorkingHours is Monday to Friday 09:00-17:00, weekends closed.
func DefaultWorkingHours() WorkingHours {
	wh := make(WorkingHours, len(Weekdays))
	for _, d := range Weekdays {
		if d == Saturday || d == Sunday {
			wh[d] = DayHours{Closed: true}
			continue
		}
		wh[d] = DayHours{Open: "09:00", Close: "17:00"}
	}
	return wh
}
