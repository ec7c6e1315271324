package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hackgods/salon-booking/internal/api"
	"github.com/hackgods/salon-booking/internal/appointment"
	"github.com/hackgods/salon-booking/internal/booking"
	"github.com/hackgods/salon-booking/internal/config"
	"github.com/hackgods/salon-booking/internal/db"
	"github.com/hackgods/salon-booking/internal/logging"
	"github.com/hackgods/salon-booking/internal/metrics"
	"github.com/hackgods/salon-booking/internal/notify"
	"github.com/hackgods/salon-booking/internal/payments"
	redisclient "github.com/hackgods/salon-booking/internal/redis"
	"github.com/hackgods/salon-booking/internal/salon"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Env, cfg.LogLevel)
	log.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("payment_provider", cfg.PaymentProvider).
		Str("version", version).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(rootCtx, redisclient.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	m := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	notifyStore := notify.NewPgStore(pgPool)
	var email notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, log); sg != nil {
		email = sg
	} else {
		log.Warn().Msg("SENDGRID_API_KEY not set, notifications are in-app only")
	}
	notifier := notify.NewService(notifyStore, notifyStore, email, m, log)

	salons := salon.NewManager(salon.NewPgRepository(pgPool), notifier, m, log)
	appointments := appointment.NewService(appointment.NewPgRepository(pgPool), salons, notifier, m, log)

	drafts := booking.NewDraftStore(redisclient.NewScratch(rdb, "", cfg.DraftTTL))
	checkout := booking.NewCheckoutService(salons, newProcessor(cfg), drafts, booking.CheckoutOptions{
		FeeCents:      cfg.BookingFeeCents,
		FeeCurrency:   cfg.BookingFeeCurrency,
		PublicBaseURL: cfg.PublicBaseURL,
	}, m, log)
	reconciler := booking.NewReconciler(drafts, appointments, notifier, redisclient.NewRedisLocker(rdb, cfg.LockTTL), m, log)

	router := api.NewRouter(api.RouterConfig{
		Salons:        salons,
		Appointments:  appointments,
		Checkout:      checkout,
		Reconciler:    reconciler,
		Drafts:        drafts,
		Notifications: notifier,
		Postgres:      pgPool,
		Redis:         api.PingFunc(redisclient.Ping(rdb)),
		Metrics:       promhttp.Handler(),
		JWTSecret:     cfg.JWTSecret,
		FakePayments:  cfg.PaymentProvider == "fake",
		SecureCookies: cfg.Env == "prod",
		Limiter:       api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Log:           log,
		Env:           cfg.Env,
		Version:       version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newProcessor(cfg config.Config) payments.Processor {
	switch cfg.PaymentProvider {
	case "square":
		return payments.NewSquareProcessor(cfg.SquareAccessToken, cfg.SquareLocationID, cfg.SquareBaseURL)
	default:
		return payments.NewFakeProcessor(cfg.PublicBaseURL)
	}
}
