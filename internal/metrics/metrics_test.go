package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBookingMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveAvailability("open", 15)
	m.ObserveAvailability("closed", 0)
	m.ObserveReconcile("succeeded")
	m.ObserveReconcile("succeeded")
	m.ObserveCheckout("started")
	m.ObserveNotification("new_booking", "stored")
	m.AddExpired(3)
	m.AddExpired(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.availability.WithLabelValues("open")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reconciles.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkouts.WithLabelValues("started")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.expired))
	assert.Equal(t, 1, testutil.CollectAndCount(m.slotsReturned))
}

func TestBookingMetrics_NilSafe(t *testing.T) {
	var m *BookingMetrics
	assert.NotPanics(t, func() {
		m.ObserveAvailability("open", 1)
		m.ObserveCheckout("started")
		m.ObserveReconcile("failed")
		m.ObserveNotification("system", "stored")
		m.AddExpired(1)
	})
}
