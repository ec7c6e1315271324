package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hackgods/salon-booking/internal/config"
	"github.com/hackgods/salon-booking/internal/db"
	"github.com/hackgods/salon-booking/internal/logging"
	"github.com/hackgods/salon-booking/internal/salon"
	"github.com/hackgods/salon-booking/internal/schedule"
	"github.com/hackgods/salon-booking/internal/session"
)

var catalog = []struct {
	name     string
	minutes  int
	priceUSD int64
}{
	{"Haircut", 45, 35},
	{"Beard Trim", 30, 20},
	{"Colour", 120, 110},
	{"Blow Dry", 30, 30},
	{"Manicure", 45, 25},
	{"Pedicure", 60, 40},
	{"Facial", 60, 65},
	{"Massage", 90, 80},
}

var suffixes = []string{"Salon", "Studio", "Barbers", "Spa"}

var timezones = []string{"UTC", "Europe/London", "America/New_York", "Asia/Kolkata"}

func main() {
	salons := flag.Int("salons", 20, "number of salons to create")
	customers := flag.Int("customers", 200, "number of customer users to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Env, cfg.LogLevel)
	log.Info().Msg("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	admin, err := insertUser(context.Background(), pool, session.RoleSuperAdmin)
	if err != nil {
		log.Fatal().Err(err).Msg("seed super admin")
	}
	printToken(log, admin, cfg.JWTSecret)

	if err := seedSalons(context.Background(), pool, *salons, cfg.JWTSecret, log); err != nil {
		log.Fatal().Err(err).Msg("seed salons")
	}
	if err := seedCustomers(context.Background(), pool, *customers, log); err != nil {
		log.Fatal().Err(err).Msg("seed customers")
	}

	log.Info().Msg("seed complete")
}

func insertUser(ctx context.Context, pool *pgxpool.Pool, role session.Role) (session.Session, error) {
	s := session.Session{
		UserID: "user_" + uuid.NewString(),
		Role:   role,
		Email:  gofakeit.Email(),
	}
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, email, name, role, approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, true, now(), now())
	`, s.UserID, s.Email, gofakeit.Name(), string(role))
	return s, err
}

func seedSalons(ctx context.Context, pool *pgxpool.Pool, count int, secret string, log zerolog.Logger) error {
	log.Info().Int("count", count).Msg("seeding salons")

	repo := salon.NewPgRepository(pool)
	for i := 0; i < count; i++ {
		owner, err := insertUser(ctx, pool, session.RoleSalonAdmin)
		if err != nil {
			return err
		}

		hours := salonHours(gofakeit.Bool())

		s, err := repo.CreateSalon(ctx, salon.Salon{
			OwnerID:      owner.UserID,
			Name:         gofakeit.Company() + " " + suffixes[gofakeit.Number(0, len(suffixes)-1)],
			Timezone:     timezones[gofakeit.Number(0, len(timezones)-1)],
			WorkingHours: hours,
			Approved:     true,
		})
		if err != nil {
			return err
		}

		// Each salon sells a contiguous run of the catalog.
		first := gofakeit.Number(0, len(catalog)-2)
		last := gofakeit.Number(first+1, len(catalog)-1)
		for _, item := range catalog[first : last+1] {
			if _, err := repo.CreateService(ctx, salon.Service{
				SalonID:         s.ID,
				Name:            item.name,
				DurationMinutes: item.minutes,
				PriceCents:      item.priceUSD * 100,
				Currency:        "USD",
			}); err != nil {
				return err
			}
		}

		if i == 0 {
			printToken(log, owner, secret)
		}
	}

	log.Info().Msg("salons seeded")
	return nil
}

// salonHours is the default week, optionally with a short Saturday.
func salonHours(openSaturday bool) schedule.WorkingHours {
	hours := schedule.DefaultWorkingHours()
	if openSaturday {
		hours[schedule.Saturday] = schedule.DayHours{Open: "10:00", Close: "16:00"}
	}
	return hours
}

func seedCustomers(ctx context.Context, pool *pgxpool.Pool, count int, log zerolog.Logger) error {
	log.Info().Int("count", count).Msg("seeding customers")

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO users (id, email, name, role, approved, created_at, updated_at)
				VALUES ($1, $2, $3, 'customer', true, now(), now())
			`, "user_"+uuid.NewString(), gofakeit.Email(), gofakeit.Name())
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Info().Int("seeded", end).Int("total", count).Msg("customers seeded")
	}

	return nil
}

func printToken(log zerolog.Logger, s session.Session, secret string) {
	if secret == "" {
		log.Info().Str("user_id", s.UserID).Str("role", string(s.Role)).Msg("seeded user")
		return
	}
	token, err := session.IssueToken(s, secret, 24*time.Hour)
	if err != nil {
		log.Error().Err(err).Msg("issue token")
		return
	}
	log.Info().Str("user_id", s.UserID).Str("role", string(s.Role)).Str("token", token).Msg("seeded user")
}
