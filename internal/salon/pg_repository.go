package salon

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackgods/salon-booking/internal/db"
	"github.com/hackgods/salon-booking/internal/schedule"
)

type PgRepository struct {
	db db.Querier
}

func NewPgRepository(q db.Querier) *PgRepository {
	return &PgRepository{db: q}
}

const salonColumns = `id, owner_id, name, timezone, working_hours, approved, deleted, created_at, updated_at`

const serviceColumns = `id, salon_id, name, duration_minutes, price_cents, currency, active, created_at, updated_at`

func scanSalon(row pgx.Row) (*Salon, error) {
	var s Salon
	err := row.Scan(
		&s.ID,
		&s.OwnerID,
		&s.Name,
		&s.Timezone,
		&s.WorkingHours,
		&s.Approved,
		&s.Deleted,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSalonNotFound
		}
		return nil, err
	}
	return &s, nil
}

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(
		&s.ID,
		&s.SalonID,
		&s.Name,
		&s.DurationMinutes,
		&s.PriceCents,
		&s.Currency,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PgRepository) GetSalon(ctx context.Context, id uuid.UUID) (*Salon, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+salonColumns+`
		FROM salons
		WHERE id = $1 AND deleted = false
	`, id)
	return scanSalon(row)
}

func (r *PgRepository) CreateSalon(ctx context.Context, s Salon) (*Salon, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.WorkingHours == nil {
		s.WorkingHours = schedule.WorkingHours{}
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO salons (id, owner_id, name, timezone, working_hours, approved, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, now(), now())
		RETURNING `+salonColumns, s.ID, s.OwnerID, s.Name, s.Timezone, s.WorkingHours, s.Approved)
	return scanSalon(row)
}

// UpdateWorkingHours overwrites the whole weekly schedule.
func (r *PgRepository) UpdateWorkingHours(ctx context.Context, id uuid.UUID, hours schedule.WorkingHours) (*Salon, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE salons
		SET working_hours = $2,
		    updated_at = now()
		WHERE id = $1 AND deleted = false
		RETURNING `+salonColumns, id, hours)
	return scanSalon(row)
}

func (r *PgRepository) SetApproved(ctx context.Context, id uuid.UUID, approved bool) (*Salon, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE salons
		SET approved = $2,
		    updated_at = now()
		WHERE id = $1 AND deleted = false
		RETURNING `+salonColumns, id, approved)
	return scanSalon(row)
}

func (r *PgRepository) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE id = $1
	`, id)
	return scanService(row)
}

func (r *PgRepository) ListServices(ctx context.Context, salonID uuid.UUID) ([]Service, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE salon_id = $1 AND active = true
		ORDER BY name
	`, salonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) CreateService(ctx context.Context, s Service) (*Service, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO services (id, salon_id, name, duration_minutes, price_cents, currency, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, true, now(), now())
		RETURNING `+serviceColumns, s.ID, s.SalonID, s.Name, s.DurationMinutes, s.PriceCents, s.Currency)
	return scanService(row)
}
