package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackgods/salon-booking/internal/db"
)

type PgRepository struct {
	db db.Querier
}

func NewPgRepository(q db.Querier) *PgRepository {
	return &PgRepository{db: q}
}

const appointmentColumns = `id, salon_id, customer_id, service_id, staff_id,
	to_char(appointment_date, 'YYYY-MM-DD'), start_time, duration_minutes, status,
	total_amount_cents, currency, payment_status, payment_session_id,
	special_instructions, customer_info, deleted, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var info *CustomerInfo

	err := row.Scan(
		&a.ID,
		&a.SalonID,
		&a.CustomerID,
		&a.ServiceID,
		&a.StaffID,
		&a.Date,
		&a.Time,
		&a.DurationMinutes,
		&a.Status,
		&a.TotalAmountCents,
		&a.Currency,
		&a.PaymentStatus,
		&a.PaymentSessionID,
		&a.SpecialInstructions,
		&info,
		&a.Deleted,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.CustomerInfo = info
	return &a, nil
}

func collect(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) Create(ctx context.Context, in NewAppointment) (*Appointment, error) {
	id := uuid.New()

	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (
			id, salon_id, customer_id, service_id, staff_id, appointment_date, start_time,
			duration_minutes, status, total_amount_cents, currency, payment_status,
			payment_session_id, special_instructions, customer_info, deleted, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10, $11, $12, $13, $14, $15, false, now(), now())
		RETURNING `+appointmentColumns,
		id, in.SalonID, in.CustomerID, in.ServiceID, in.StaffID, in.Date, in.Time,
		in.DurationMinutes, string(in.Status), in.TotalAmountCents, in.Currency, string(in.PaymentStatus),
		in.PaymentSessionID, in.SpecialInstructions, in.CustomerInfo,
	)
	return scanAppointment(row)
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1 AND deleted = false
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE customer_id = $1 AND deleted = false
		ORDER BY appointment_date DESC, start_time DESC
		LIMIT $2 OFFSET $3
	`, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *PgRepository) ListBySalon(ctx context.Context, salonID uuid.UUID, date string, limit, offset int) ([]Appointment, error) {
	if date == "" {
		rows, err := r.db.Query(ctx, `
			SELECT `+appointmentColumns+`
			FROM appointments
			WHERE salon_id = $1 AND deleted = false
			ORDER BY appointment_date, start_time
			LIMIT $2 OFFSET $3
		`, salonID, limit, offset)
		if err != nil {
			return nil, err
		}
		return collect(rows)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE salon_id = $1 AND appointment_date = $2::date AND deleted = false
		ORDER BY start_time
		LIMIT $3 OFFSET $4
	`, salonID, date, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, to Status, from ...Status) (*Appointment, error) {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = ANY($3)
		  AND deleted = false
		RETURNING `+appointmentColumns, id, string(to), allowed)

	return scanAppointment(row)
}

func (r *PgRepository) ExpirePendingBefore(ctx context.Context, date string) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE appointments
		SET status = 'expired',
		    updated_at = now()
		WHERE status = 'pending'
		  AND appointment_date < $1::date
		  AND deleted = false
		RETURNING id
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
