package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for availability, checkout and payment
// callback flows. A nil *BookingMetrics is valid and records nothing.
type BookingMetrics struct {
	availability  *prometheus.CounterVec
	slotsReturned prometheus.Histogram
	checkouts     *prometheus.CounterVec
	reconciles    *prometheus.CounterVec
	notifications *prometheus.CounterVec
	expired       prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		availability: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "availability_requests_total",
			Help:      "Availability lookups by outcome (open, closed, error)",
		}, []string{"result"}),
		slotsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "slots_returned",
			Help:      "Number of bookable slots returned per open-day lookup",
			Buckets:   []float64{0, 1, 2, 4, 8, 12, 16, 24, 32, 48},
		}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "checkouts_total",
			Help:      "Checkout starts by status",
		}, []string{"status"}),
		reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "payments",
			Name:      "callbacks_total",
			Help:      "Payment callback reconciliations by outcome",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Notifications by kind and delivery status",
		}, []string{"kind", "status"}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "appointments",
			Name:      "expired_total",
			Help:      "Pending appointments expired by the worker",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.availability, m.slotsReturned, m.checkouts, m.reconciles, m.notifications, m.expired)
	return m
}

func (m *BookingMetrics) ObserveAvailability(result string, slots int) {
	if m == nil {
		return
	}
	m.availability.WithLabelValues(result).Inc()
	if result == "open" {
		m.slotsReturned.Observe(float64(slots))
	}
}

func (m *BookingMetrics) ObserveCheckout(status string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveReconcile(outcome string) {
	if m == nil {
		return
	}
	m.reconciles.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveNotification(kind, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, status).Inc()
}

func (m *BookingMetrics) AddExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.expired.Add(float64(n))
}
