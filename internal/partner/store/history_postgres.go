package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"partnerdesk/internal/vat/domain/history"
	id "partnerdesk/pkg/domain"
	txcontext "partnerdesk/pkg/platform/tx"
)

// PostgresHistoryStore persists verification events in PostgreSQL.
type PostgresHistoryStore struct {
	db *sql.DB
}

func NewPostgresHistory(db *sql.DB) *PostgresHistoryStore {
	return &PostgresHistoryStore{db: db}
}

func (s *PostgresHistoryStore) Append(ctx context.Context, partnerID id.PartnerID, event history.Event) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO vat_verification_history (partner_id, verified_at, verification_id, is_verified, message)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(partnerID), event.VerifiedAt, event.VerificationID, event.IsVerified, event.Message)
	if err != nil {
		return fmt.Errorf("insert verification event: %w", err)
	}
	return nil
}

func (s *PostgresHistoryStore) Recent(ctx context.Context, partnerID id.PartnerID, limit int) ([]history.Event, error) {
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT verified_at, verification_id, is_verified, message
		FROM vat_verification_history
		WHERE partner_id = $1
		ORDER BY verified_at DESC, id DESC
		LIMIT $2
	`, uuid.UUID(partnerID), limit)
	if err != nil {
		return nil, fmt.Errorf("list verification events: %w", err)
	}
	defer rows.Close()

	out := make([]history.Event, 0, limit)
	for rows.Next() {
		var e history.Event
		if err := rows.Scan(&e.VerifiedAt, &e.VerificationID, &e.IsVerified, &e.Message); err != nil {
			return nil, fmt.Errorf("scan verification event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification events: %w", err)
	}
	return out, nil
}

// DeletePartner removes the partner's events. The foreign key cascades on
// partner deletion as well.
func (s *PostgresHistoryStore) DeletePartner(ctx context.Context, partnerID id.PartnerID) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx,
		`DELETE FROM vat_verification_history WHERE partner_id = $1`, uuid.UUID(partnerID))
	if err != nil {
		return fmt.Errorf("delete verification events: %w", err)
	}
	return nil
}
