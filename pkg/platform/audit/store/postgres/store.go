package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "partnerdesk/pkg/domain"
	"partnerdesk/pkg/platform/audit"
	txcontext "partnerdesk/pkg/platform/tx"
)

// Store writes audit events to the audit_events table, inside the caller's
// transaction when there is one.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	const query = `
		INSERT INTO audit_events (id, occurred_at, action, partner_id, actor_id, request_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.New(),
		event.Timestamp,
		string(event.Action),
		uuid.UUID(event.PartnerID),
		event.ActorID,
		event.RequestID,
		event.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByPartner(ctx context.Context, partnerID id.PartnerID) ([]audit.Event, error) {
	const query = `
		SELECT occurred_at, action, actor_id, request_id, detail
		FROM audit_events
		WHERE partner_id = $1
		ORDER BY occurred_at DESC, id`
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query, uuid.UUID(partnerID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := []audit.Event{}
	for rows.Next() {
		e := audit.Event{PartnerID: partnerID}
		var action string
		if err := rows.Scan(&e.Timestamp, &action, &e.ActorID, &e.RequestID, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
