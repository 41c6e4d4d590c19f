package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"partnerdesk/internal/platform/postgres"
	"partnerdesk/internal/subscriber/models"
	id "partnerdesk/pkg/domain"
	"partnerdesk/pkg/platform/sentinel"
	txcontext "partnerdesk/pkg/platform/tx"
)

// PostgresStore persists subscribers in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const subscriberColumns = `id, email, first_name, last_name, newsletter_consent, created_at`

func (s *PostgresStore) Create(ctx context.Context, sub *models.Subscriber) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO subscribers (`+subscriberColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(sub.ID), models.NormalizeEmail(sub.Email), sub.FirstName, sub.LastName, sub.NewsletterConsent, sub.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, subscriberID id.SubscriberID) (*models.Subscriber, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE id = $1`, uuid.UUID(subscriberID))
	return scanSubscriber(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE lower(email) = $1`, models.NormalizeEmail(email))
	return scanSubscriber(row)
}

func (s *PostgresStore) Search(ctx context.Context, query string, offset, limit int) ([]*models.Subscriber, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		WHERE lower(email) LIKE $1 OR lower(first_name) LIKE $1 OR lower(last_name) LIKE $1
		ORDER BY email
		OFFSET $2 LIMIT $3
	`, pattern, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("search subscribers: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Subscriber, 0, limit)
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row rowScanner) (*models.Subscriber, error) {
	var (
		sub   models.Subscriber
		rawID uuid.UUID
	)
	err := row.Scan(&rawID, &sub.Email, &sub.FirstName, &sub.LastName, &sub.NewsletterConsent, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan subscriber: %w", err)
	}
	sub.ID = id.SubscriberID(rawID)
	return &sub, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
