package schedule

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SlotStep is the distance between two candidate start times.
const SlotStep = 30 * time.Minute

const minutesPerHour = 60

// GenerateSlots returns the bookable "HH:MM" start times inside window for a
// service of durationMinutes on date. A slot is kept only if it ends at or
// before closing. When date falls on the same calendar day as now, slots that
// do not start strictly after now are dropped as well.
//
// Malformed window values or a non-positive duration produce no slots.
func GenerateSlots(window Window, durationMinutes int, date, now time.Time) []string {
	if durationMinutes <= 0 {
		return nil
	}
	open, err := ParseClock(window.Open)
	if err != nil {
		return nil
	}
	closeAt, err := ParseClock(window.Close)
	if err != nil {
		return nil
	}

	loc := now.Location()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	today := sameDate(day, now)
	step := int(SlotStep / time.Minute)

	var slots []string
	for start := open; start < closeAt; start += step {
		if start+durationMinutes > closeAt {
			continue
		}
		if today && !day.Add(time.Duration(start)*time.Minute).After(now) {
			continue
		}
		slots = append(slots, FormatClock(start))
	}
	return slots
}

// Contains reports whether slot is one of slots.
func Contains(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}

// ParseClock converts "HH:MM" (24h) to minutes after midnight.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time format: %q", value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}

	return hour*minutesPerHour + minute, nil
}

// FormatClock is the inverse of ParseClock.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/minutesPerHour, minutes%minutesPerHour)
}

// MinutesFromHours converts an hour value typed into an admin form to the
// canonical minute duration, rounded to the nearest minute.
func MinutesFromHours(hours float64) int {
	return int(math.Round(hours * minutesPerHour))
}

func HoursFromMinutes(minutes int) float64 {
	return float64(minutes) / minutesPerHour
}

// ParseDate parses an ISO "YYYY-MM-DD" date in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return d, nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
