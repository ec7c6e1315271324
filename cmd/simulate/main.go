package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hackgods/salon-booking/internal/config"
	"github.com/hackgods/salon-booking/internal/db"
	"github.com/hackgods/salon-booking/internal/logging"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	CancelRatio  float64
	ReadRatio    float64
	DaysAhead    int
	ServiceLimit int
	PostgresDSN  string
}

// bookable is a salon/service pair the simulator can book against.
type bookable struct {
	SalonID   uuid.UUID
	ServiceID uuid.UUID
}

type DataPool struct {
	Services     []bookable
	mu           sync.RWMutex
	appointments []uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) GetRandomAppointment(rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Rejected  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

// Record counts one call. Rejected means the API answered with an expected
// 4xx, such as a slot that was no longer offered.
func (om *OperationMetrics) Record(latency time.Duration, success bool, rejected bool) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case success:
		atomic.AddInt64(&om.Success, 1)
	case rejected:
		atomic.AddInt64(&om.Rejected, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Availability OperationMetrics
	Checkout     OperationMetrics
	Payment      OperationMetrics
	Cancelled    OperationMetrics
	Confirmation OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	metrics Metrics
	log     zerolog.Logger
}

func main() {
	baseCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(baseCfg.Env, baseCfg.LogLevel)

	cfg := loadConfig(baseCfg)
	if err := validateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	log.Info().
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Float64("booking", cfg.BookingRatio).
		Float64("cancel", cfg.CancelRatio).
		Float64("read", cfg.ReadRatio).
		Msg("simulator starting")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("load data pool")
	}
	log.Info().Int("services", len(dataPool.Services)).Msg("data pool loaded")

	gofakeit.Seed(time.Now().UnixNano())

	sim := &Simulator{config: cfg, pool: dataPool, log: log}
	sim.Run()
	sim.PrintReport()
}

func loadConfig(base config.Config) SimConfig {
	cfg := SimConfig{
		APIBaseURL:   strings.TrimRight(getEnv("SIM_API_BASE_URL", base.PublicBaseURL), "/"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.5),
		CancelRatio:  getFloat("SIM_CANCEL_RATIO", 0.1),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.4),
		DaysAhead:    getInt("SIM_DAYS_AHEAD", 14),
		ServiceLimit: getInt("SIM_SERVICE_LIMIT", 500),
		PostgresDSN:  base.PostgresDSN,
	}

	// Normalize ratios
	total := cfg.BookingRatio + cfg.CancelRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.CancelRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return errors.New("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return errors.New("SIM_DURATION must be > 0")
	}
	if cfg.DaysAhead <= 0 {
		return errors.New("SIM_DAYS_AHEAD must be > 0")
	}
	return nil
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	rows, err := pool.Query(ctx, `
		SELECT sv.salon_id, sv.id
		FROM services sv
		JOIN salons s ON s.id = sv.salon_id
		WHERE sv.active = true AND s.approved = true AND s.deleted = false
		LIMIT $1
	`, cfg.ServiceLimit)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	defer rows.Close()

	dataPool := &DataPool{}
	for rows.Next() {
		var b bookable
		if err := rows.Scan(&b.SalonID, &b.ServiceID); err != nil {
			return nil, err
		}
		dataPool.Services = append(dataPool.Services, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(dataPool.Services) == 0 {
		return nil, errors.New("no bookable services loaded, run seed first")
	}
	return dataPool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.log.Info().Dur("duration", s.config.Duration).Int("workers", s.config.Workers).Msg("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.log.Info().Msg("simulation complete")
}

// newBrowser returns a client with its own cookie jar so each worker keeps
// a stable browser id. Redirects are not followed; the flow walks them.
func newBrowser() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Timeout: 10 * time.Second,
		Jar:     jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
	client := newBrowser()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			switch {
			case r < s.config.BookingRatio:
				s.doBooking(ctx, client, rng)
			case r < s.config.BookingRatio+s.config.CancelRatio:
				s.doCancelledPayment(ctx, client, rng)
			default:
				if rng.Intn(2) == 0 {
					s.doAvailability(ctx, client, rng)
				} else {
					s.doConfirmation(ctx, client, rng)
				}
			}
		}
	}
}

type availabilityResponse struct {
	Closed bool     `json:"closed"`
	Slots  []string `json:"slots"`
}

func (s *Simulator) randomDate(rng *rand.Rand) string {
	return time.Now().AddDate(0, 0, 1+rng.Intn(s.config.DaysAhead)).Format("2006-01-02")
}

// availability fetches the slots for a random bookable service and date.
func (s *Simulator) availability(ctx context.Context, client *http.Client, rng *rand.Rand) (bookable, string, availabilityResponse, bool) {
	b := s.pool.Services[rng.Intn(len(s.pool.Services))]
	date := s.randomDate(rng)

	q := url.Values{"service_id": {b.ServiceID.String()}, "date": {date}}
	start := time.Now()
	var out availabilityResponse
	status, err := s.doJSON(ctx, client, http.MethodGet,
		fmt.Sprintf("/salons/%s/availability?%s", b.SalonID, q.Encode()), nil, &out)
	success := err == nil && status == http.StatusOK
	s.metrics.Availability.Record(time.Since(start), success, err == nil && status < 500)
	return b, date, out, success
}

func (s *Simulator) doAvailability(ctx context.Context, client *http.Client, rng *rand.Rand) {
	s.availability(ctx, client, rng)
}

// checkout picks an offered slot and starts a guest checkout, returning the
// payment link.
func (s *Simulator) checkout(ctx context.Context, client *http.Client, rng *rand.Rand) (string, bool) {
	b, date, avail, ok := s.availability(ctx, client, rng)
	if !ok || avail.Closed || len(avail.Slots) == 0 {
		return "", false
	}

	reqBody := map[string]any{
		"salon_id":   b.SalonID,
		"service_id": b.ServiceID,
		"date":       date,
		"time":       avail.Slots[rng.Intn(len(avail.Slots))],
		"guest": map[string]string{
			"name":  gofakeit.Name(),
			"email": gofakeit.Email(),
			"phone": gofakeit.Phone(),
		},
	}

	start := time.Now()
	var out struct {
		PaymentLink string `json:"payment_link"`
	}
	status, err := s.doJSON(ctx, client, http.MethodPost, "/bookings/checkout", reqBody, &out)
	latency := time.Since(start)

	if err != nil || status != http.StatusCreated {
		s.metrics.Checkout.Record(latency, false, err == nil && status == http.StatusConflict)
		return "", false
	}
	s.metrics.Checkout.Record(latency, true, false)
	return out.PaymentLink, true
}

func (s *Simulator) doBooking(ctx context.Context, client *http.Client, rng *rand.Rand) {
	link, ok := s.checkout(ctx, client, rng)
	if !ok {
		return
	}

	start := time.Now()
	location, err := s.payAndFollow(ctx, client, link, "success")
	latency := time.Since(start)
	if err != nil {
		s.metrics.Payment.Record(latency, false, false)
		return
	}

	// location is /bookings/{id}/confirmation
	parts := strings.Split(strings.Trim(location, "/"), "/")
	if len(parts) != 3 {
		s.metrics.Payment.Record(latency, false, false)
		return
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		s.metrics.Payment.Record(latency, false, false)
		return
	}
	s.pool.AddAppointment(id)
	s.metrics.Payment.Record(latency, true, false)
}

func (s *Simulator) doCancelledPayment(ctx context.Context, client *http.Client, rng *rand.Rand) {
	link, ok := s.checkout(ctx, client, rng)
	if !ok {
		return
	}

	start := time.Now()
	_, err := s.payAndFollow(ctx, client, link, "cancelled")
	var se statusError
	s.metrics.Cancelled.Record(time.Since(start), errors.As(err, &se) && int(se) == http.StatusPaymentRequired, false)
}

type statusError int

func (e statusError) Error() string { return "unexpected status " + strconv.Itoa(int(e)) }

// payAndFollow chooses an outcome on the fake payment page and walks the
// redirect to the callback, returning the callback's Location header.
func (s *Simulator) payAndFollow(ctx context.Context, client *http.Client, link, outcome string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("outcome", outcome)
	u.RawQuery = q.Encode()

	callback, err := s.redirectTarget(ctx, client, s.config.APIBaseURL+u.RequestURI())
	if err != nil {
		return "", err
	}
	return s.redirectTarget(ctx, client, s.config.APIBaseURL+callback)
}

func (s *Simulator) redirectTarget(ctx context.Context, client *http.Client, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		return "", statusError(resp.StatusCode)
	}
	return resp.Header.Get("Location"), nil
}

func (s *Simulator) doConfirmation(ctx context.Context, client *http.Client, rng *rand.Rand) {
	id, ok := s.pool.GetRandomAppointment(rng)
	if !ok {
		return
	}

	start := time.Now()
	status, err := s.doJSON(ctx, client, http.MethodGet, "/bookings/"+id.String()+"/confirmation", nil, nil)
	s.metrics.Confirmation.Record(time.Since(start), err == nil && status == http.StatusOK, false)
}

func (s *Simulator) doJSON(ctx context.Context, client *http.Client, method, path string, body, out any) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Availability", &s.metrics.Availability)
	printOperationReport("Checkout", &s.metrics.Checkout)
	printOperationReport("Paid booking", &s.metrics.Payment)
	printOperationReport("Cancelled payment", &s.metrics.Cancelled)
	printOperationReport("Confirmation", &s.metrics.Confirmation)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	rejected := atomic.LoadInt64(&om.Rejected)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if rejected > 0 {
		fmt.Printf("  Rejected: %d (%.1f%%)\n", rejected, float64(rejected)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
