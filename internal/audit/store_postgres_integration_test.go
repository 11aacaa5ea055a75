//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"idverify/internal/audit"
	"idverify/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.StartPostgres(s.T())
	s.store = audit.NewPostgresStore(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_events"))
}

func (s *PostgresStoreSuite) newEvent(action audit.Action, at time.Time) audit.Event {
	return audit.Event{
		ID:        uuid.NewString(),
		Category:  action.Category(),
		Action:    action,
		Actor:     "dashboard",
		Subject:   "/v1/id-verify/settings",
		Outcome:   "success",
		ClientIP:  "203.0.113.7",
		RequestID: uuid.NewString(),
		Timestamp: at,
	}
}

func (s *PostgresStoreSuite) TestAppendAndListRecent() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	older := s.newEvent(audit.ActionSettingsUpdated, base.Add(-time.Minute))
	newer := s.newEvent(audit.ActionSettingsReset, base)
	s.Require().NoError(s.store.Append(ctx, older))
	s.Require().NoError(s.store.Append(ctx, newer))

	events, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(newer.ID, events[0].ID)
	s.Equal(audit.ActionSettingsReset, events[0].Action)
	s.Equal(audit.CategorySecurity, events[0].Category)
	s.Equal(older.ID, events[1].ID)
}

func (s *PostgresStoreSuite) TestAppendIsIdempotent() {
	ctx := context.Background()
	event := s.newEvent(audit.ActionAPIKeyIssued, time.Now().UTC())

	s.Require().NoError(s.store.Append(ctx, event))
	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *PostgresStoreSuite) TestListRecentLimit() {
	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		event := s.newEvent(audit.ActionSessionCreated, base.Add(time.Duration(i)*time.Second))
		s.Require().NoError(s.store.Append(ctx, event))
	}

	events, err := s.store.ListRecent(ctx, 3)
	s.Require().NoError(err)
	s.Len(events, 3)
}
