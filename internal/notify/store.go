package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackgods/salon-booking/internal/db"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrRecipientNotFound    = errors.New("recipient not found")
)

type Store interface {
	Insert(ctx context.Context, n Notification) (*Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, recipientID string, id uuid.UUID) error
}

// Directory resolves a user id to an email address.
type Directory interface {
	EmailFor(ctx context.Context, userID string) (string, error)
}

type PgStore struct {
	db db.Querier
}

func NewPgStore(q db.Querier) *PgStore {
	return &PgStore{db: q}
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.RecipientID, &n.Kind, &n.Title, &n.Body, &n.RelatedID, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (s *PgStore) Insert(ctx context.Context, n Notification) (*Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO notifications (id, recipient_id, kind, title, body, related_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, now())
		RETURNING id, recipient_id, kind, title, body, related_id, read, created_at
	`, n.ID, n.RecipientID, string(n.Kind), n.Title, n.Body, n.RelatedID)

	created, err := scanNotification(row)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return created, nil
}

func (s *PgStore) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, recipient_id, kind, title, body, related_id, read, created_at
		FROM notifications
		WHERE recipient_id = $1
		  AND ($2 = false OR read = false)
		ORDER BY created_at DESC
		LIMIT $3
	`, recipientID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PgStore) MarkRead(ctx context.Context, recipientID string, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications
		SET read = true
		WHERE id = $1 AND recipient_id = $2
	`, id, recipientID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// EmailFor looks the recipient up in the users table.
func (s *PgStore) EmailFor(ctx context.Context, userID string) (string, error) {
	var email string
	err := s.db.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrRecipientNotFound
		}
		return "", fmt.Errorf("lookup recipient email: %w", err)
	}
	return email, nil
}
