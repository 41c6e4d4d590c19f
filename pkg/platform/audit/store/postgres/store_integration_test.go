//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "partnerdesk/pkg/domain"
	"partnerdesk/pkg/platform/audit"
	"partnerdesk/pkg/platform/audit/store/postgres"
	"partnerdesk/pkg/platform/tx"
	"partnerdesk/pkg/testutil/containers"
)

type AuditStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestAuditStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditStoreSuite))
}

func (s *AuditStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = postgres.New(s.postgres.DB)
}

func (s *AuditStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_events"))
}

func (s *AuditStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	partnerID := id.NewPartnerID()
	now := time.Now().UTC().Truncate(time.Microsecond)

	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Timestamp: now, Action: audit.ActionPartnerCreated, PartnerID: partnerID, ActorID: "u-1", RequestID: "r-1",
	}))
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Timestamp: now.Add(time.Minute), Action: audit.ActionPartnerUpdated, PartnerID: partnerID,
	}))

	events, err := s.store.ListByPartner(ctx, partnerID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.ActionPartnerUpdated, events[0].Action)
	s.Equal("u-1", events[1].ActorID)
	s.True(events[1].Timestamp.Equal(now))
}

func (s *AuditStoreSuite) TestRolledBackWithTransaction() {
	ctx := context.Background()
	partnerID := id.NewPartnerID()
	runner := tx.NewPostgresRunner(s.postgres.DB)

	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Append(ctx, audit.Event{Timestamp: time.Now(), Action: audit.ActionPartnerDeleted, PartnerID: partnerID}); err != nil {
			return err
		}
		return context.Canceled
	})
	s.ErrorIs(err, context.Canceled)

	events, err := s.store.ListByPartner(ctx, partnerID)
	s.Require().NoError(err)
	s.Empty(events)
}
