package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"partnerdesk/internal/partner/models"
	"partnerdesk/internal/platform/postgres"
	id "partnerdesk/pkg/domain"
	"partnerdesk/pkg/platform/sentinel"
	txcontext "partnerdesk/pkg/platform/tx"
)

// PostgresStore persists partners and their contacts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const partnerColumns = `id, country, vat_number, name, name_verified, city, street_name,
	building_number, apartment_number, postal_code, phone_number, additional_info,
	is_verified, verification_date, verification_id, created_at, updated_at`

func partnerArgs(p *models.Partner) []any {
	var verificationDate sql.NullTime
	if p.VerificationDate != nil {
		verificationDate = sql.NullTime{Time: *p.VerificationDate, Valid: true}
	}
	return []any{
		uuid.UUID(p.ID), p.Country.String(), p.VATNumber, p.Name, p.NameVerified, p.City, p.StreetName,
		p.BuildingNumber, p.ApartmentNumber, p.PostalCode, p.PhoneNumber, p.AdditionalInfo,
		p.IsVerified, verificationDate, p.VerificationID, p.CreatedAt, p.UpdatedAt,
	}
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Partner) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO partners (`+partnerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, partnerArgs(p)...)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert partner: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Partner) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE partners SET
			country = $2, vat_number = $3, name = $4, name_verified = $5, city = $6,
			street_name = $7, building_number = $8, apartment_number = $9, postal_code = $10,
			phone_number = $11, additional_info = $12, is_verified = $13,
			verification_date = $14, verification_id = $15, created_at = $16, updated_at = $17
		WHERE id = $1
	`, partnerArgs(p)...)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update partner: %w", err)
	}
	return expectOneRow(res)
}

func (s *PostgresStore) FindByID(ctx context.Context, partnerID id.PartnerID) (*models.Partner, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE id = $1`, uuid.UUID(partnerID))
	return scanPartner(row)
}

func (s *PostgresStore) FindByVAT(ctx context.Context, country id.CountryCode, vatNumber string) (*models.Partner, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE country = $1 AND vat_number = $2`, country.String(), vatNumber)
	return scanPartner(row)
}

func (s *PostgresStore) Delete(ctx context.Context, partnerID id.PartnerID) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM partners WHERE id = $1`, uuid.UUID(partnerID))
	if err != nil {
		return fmt.Errorf("delete partner: %w", err)
	}
	return expectOneRow(res)
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter, offset, limit int) ([]*models.Partner, int, error) {
	where, args := listConditions(filter)
	conn := txcontext.Conn(ctx, s.db)

	var total int
	if err := conn.QueryRowContext(ctx, `SELECT count(*) FROM partners`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count partners: %w", err)
	}

	args = append(args, offset, limit)
	query := fmt.Sprintf(`SELECT %s FROM partners%s ORDER BY name, country, vat_number OFFSET $%d LIMIT $%d`,
		partnerColumns, where, len(args)-1, len(args))
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Partner, 0, limit)
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate partners: %w", err)
	}
	return out, total, nil
}

func listConditions(filter models.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(filter.Search))+"%")
		conds = append(conds, fmt.Sprintf("lower(name) LIKE $%d", len(args)))
	}
	if filter.Country != "" {
		args = append(args, filter.Country.String())
		conds = append(conds, fmt.Sprintf("country = $%d", len(args)))
	}
	switch filter.Status {
	case id.VerificationStatusVerified:
		conds = append(conds, "is_verified")
	case id.VerificationStatusUnverified:
		conds = append(conds, "NOT is_verified")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ReplaceContacts must run inside a transaction to be atomic.
func (s *PostgresStore) ReplaceContacts(ctx context.Context, partnerID id.PartnerID, subscriberIDs []id.SubscriberID) error {
	conn := txcontext.Conn(ctx, s.db)
	if _, err := conn.ExecContext(ctx, `DELETE FROM partner_contacts WHERE partner_id = $1`, uuid.UUID(partnerID)); err != nil {
		return fmt.Errorf("clear partner contacts: %w", err)
	}
	if len(subscriberIDs) == 0 {
		return nil
	}
	ids := make([]string, len(subscriberIDs))
	for i, sid := range subscriberIDs {
		ids[i] = sid.String()
	}
	_, err := conn.ExecContext(ctx, `
		INSERT INTO partner_contacts (partner_id, subscriber_id, position)
		SELECT $1::uuid, s.id::uuid, s.ord::int
		FROM unnest($2::text[]) WITH ORDINALITY AS s(id, ord)
		ON CONFLICT DO NOTHING
	`, uuid.UUID(partnerID), pq.Array(ids))
	if err != nil {
		return fmt.Errorf("insert partner contacts: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListContacts(ctx context.Context, partnerID id.PartnerID) ([]id.SubscriberID, error) {
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT subscriber_id FROM partner_contacts WHERE partner_id = $1 ORDER BY position`, uuid.UUID(partnerID))
	if err != nil {
		return nil, fmt.Errorf("list partner contacts: %w", err)
	}
	defer rows.Close()

	var out []id.SubscriberID
	for rows.Next() {
		var raw uuid.UUID
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan partner contact: %w", err)
		}
		out = append(out, id.SubscriberID(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partner contacts: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPartner(row rowScanner) (*models.Partner, error) {
	var (
		p                models.Partner
		rawID            uuid.UUID
		country          string
		verificationDate sql.NullTime
	)
	err := row.Scan(&rawID, &country, &p.VATNumber, &p.Name, &p.NameVerified, &p.City, &p.StreetName,
		&p.BuildingNumber, &p.ApartmentNumber, &p.PostalCode, &p.PhoneNumber, &p.AdditionalInfo,
		&p.IsVerified, &verificationDate, &p.VerificationID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan partner: %w", err)
	}
	p.ID = id.PartnerID(rawID)
	p.Country = id.CountryCode(country)
	if verificationDate.Valid {
		d := verificationDate.Time
		p.VerificationDate = &d
	}
	return &p, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
