package schedule

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 is a Monday.
var monday = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestWeekdayOf(t *testing.T) {
	for i, want := range Weekdays {
		assert.Equal(t, want, WeekdayOf(monday.AddDate(0, 0, i)))
	}
}

func TestResolve(t *testing.T) {
	hours := WorkingHours{
		Monday:  {Open: "09:00", Close: "17:00"},
		Tuesday: {Open: "10:00", Close: "18:00", Closed: true},
	}

	t.Run("open day", func(t *testing.T) {
		w, ok := Resolve(hours, monday)
		require.True(t, ok)
		assert.Equal(t, Window{Open: "09:00", Close: "17:00"}, w)
	})

	t.Run("explicitly closed and missing day look the same", func(t *testing.T) {
		closedW, closedOK := Resolve(hours, monday.AddDate(0, 0, 1))
		missingW, missingOK := Resolve(hours, monday.AddDate(0, 0, 2))
		assert.False(t, closedOK)
		assert.False(t, missingOK)
		assert.Equal(t, closedW, missingW)
	})

	t.Run("nil schedule is closed", func(t *testing.T) {
		_, ok := Resolve(nil, monday)
		assert.False(t, ok)
	})
}

func TestGenerateSlots(t *testing.T) {
	window := Window{Open: "09:00", Close: "17:00"}
	past := monday.AddDate(0, 0, -10)

	tests := []struct {
		name     string
		window   Window
		duration int
		now      time.Time
		expected []string
	}{
		{
			name:     "future monday one hour service",
			window:   window,
			duration: 60,
			now:      past,
			expected: []string{
				"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30",
				"13:00", "13:30", "14:00", "14:30", "15:00", "15:30", "16:00",
			},
		},
		{
			name:     "window shorter than service",
			window:   Window{Open: "09:00", Close: "09:45"},
			duration: 60,
			now:      past,
			expected: nil,
		},
		{
			name:     "duration equals window",
			window:   Window{Open: "09:00", Close: "10:30"},
			duration: 90,
			now:      past,
			expected: []string{"09:00"},
		},
		{
			name:     "today cutoff independent of window rule",
			window:   window,
			duration: 60,
			now:      monday.Add(13*time.Hour + 31*time.Minute),
			expected: []string{"14:00", "14:30", "15:00", "15:30", "16:00"},
		},
		{
			name:     "slot starting exactly now is excluded",
			window:   window,
			duration: 60,
			now:      monday.Add(15*time.Hour + 30*time.Minute),
			expected: []string{"16:00"},
		},
		{
			name:     "all of today already passed",
			window:   window,
			duration: 30,
			now:      monday.Add(16*time.Hour + 45*time.Minute),
			expected: nil,
		},
		{
			name:     "odd open time keeps thirty minute step",
			window:   Window{Open: "09:15", Close: "11:00"},
			duration: 45,
			now:      past,
			expected: []string{"09:15", "09:45", "10:15"},
		},
		{
			name:     "malformed window is treated as closed",
			window:   Window{Open: "9am", Close: "17:00"},
			duration: 30,
			now:      past,
			expected: nil,
		},
		{
			name:     "non positive duration",
			window:   window,
			duration: 0,
			now:      past,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateSlots(tt.window, tt.duration, monday, tt.now)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGenerateSlots_NeverOverrunsClose(t *testing.T) {
	past := monday.AddDate(0, 0, -1)
	for _, closeAt := range []string{"10:00", "12:15", "17:00", "23:59"} {
		for duration := 15; duration <= 240; duration += 15 {
			window := Window{Open: "08:00", Close: closeAt}
			slots := GenerateSlots(window, duration, monday, past)

			openMin, _ := ParseClock(window.Open)
			closeMin, _ := ParseClock(closeAt)
			if closeMin-openMin >= duration {
				assert.NotEmpty(t, slots, "close=%s duration=%d", closeAt, duration)
			}
			for _, s := range slots {
				start, err := ParseClock(s)
				require.NoError(t, err)
				assert.LessOrEqual(t, start+duration, closeMin, "slot %s duration %d close %s", s, duration, closeAt)
			}
		}
	}
}

func TestGenerateSlots_TodayComparedInNowLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	date := time.Date(2024, time.January, 1, 0, 0, 0, 0, loc)
	now := time.Date(2024, time.January, 1, 12, 10, 0, 0, loc)

	slots := GenerateSlots(Window{Open: "12:00", Close: "14:00"}, 60, date, now)
	assert.Equal(t, []string{"12:30", "13:00"}, slots)
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)
	assert.Equal(t, "09:30", FormatClock(m))

	for _, bad := range []string{"", "9:30", "24:00", "12:60", "ab:cd", "12:30:00"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestDurationConversion(t *testing.T) {
	assert.Equal(t, 90, MinutesFromHours(1.5))
	assert.Equal(t, 60, MinutesFromHours(1))
	assert.Equal(t, 20, MinutesFromHours(0.33333))
	assert.InDelta(t, 1.5, HoursFromMinutes(90), 0.0001)
}

func TestWorkingHoursValidate(t *testing.T) {
	require.NoError(t, DefaultWorkingHours().Validate())

	bad := []WorkingHours{
		{Monday: {Open: "17:00", Close: "09:00"}},
		{Monday: {Open: "09:00", Close: "09:00"}},
		{Monday: {Open: "nine", Close: "17:00"}},
		{Weekday("funday"): {Closed: true}},
	}
	for _, wh := range bad {
		assert.ErrorIs(t, wh.Validate(), ErrInvalidWorkingHours)
	}

	closed := WorkingHours{Sunday: {Closed: true, Open: "garbage"}}
	assert.NoError(t, closed.Validate())
}

func TestContains(t *testing.T) {
	slots := []string{"09:00", "09:30"}
	assert.True(t, Contains(slots, "09:30"))
	assert.False(t, Contains(slots, "10:00"))
	assert.False(t, Contains(nil, "09:00"))
}
