package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/salon-booking/internal/schedule"
)

func TestSalonHours(t *testing.T) {
	// 2024-01-06 is a Saturday.
	saturday := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)

	closed := salonHours(false)
	require.NoError(t, closed.Validate())
	_, ok := schedule.Resolve(closed, saturday)
	assert.False(t, ok)

	open := salonHours(true)
	require.NoError(t, open.Validate())
	w, ok := schedule.Resolve(open, saturday)
	require.True(t, ok)
	assert.Equal(t, schedule.Window{Open: "10:00", Close: "16:00"}, w)
}
