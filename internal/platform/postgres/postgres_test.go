package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestOpenRequiresURL(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	assert.EqualError(t, err, "database url is required")
}

func TestSchemaDeclaresTables(t *testing.T) {
	for _, table := range []string{"partners", "partner_contacts", "subscribers", "vat_verification_history", "audit_events"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505"}
	assert.True(t, IsUniqueViolation(dup))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", dup)))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
