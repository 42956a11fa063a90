package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/boardbank/internal/dependencies/mocks"
	"github.com/mcoot/boardbank/internal/model"
	"github.com/mcoot/boardbank/internal/storage/memory"
	"github.com/mcoot/boardbank/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.registry = NewRegistry(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *RegistrySuite) TestLoginCreatesSession() {
	s.random.QueueUUID("session-1")

	session, err := s.registry.Login(s.ctx, "Alice")
	s.Require().NoError(err)

	s.Equal(model.SessionID("session-1"), session.ID)
	s.Equal("Alice", session.Username)
	s.Equal(s.clock.Now(), session.CreatedAt)

	stored, err := s.storage.GetSession(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Equal("Alice", stored.Username)
}

func (s *RegistrySuite) TestLoginTrimsUsername() {
	session, err := s.registry.Login(s.ctx, "  Bob  ")
	s.Require().NoError(err)
	s.Equal("Bob", session.Username)
}

func (s *RegistrySuite) TestLoginRejectsEmptyUsername() {
	_, err := s.registry.Login(s.ctx, "")
	s.ErrorIs(err, model.ErrInvalidUsername)

	_, err = s.registry.Login(s.ctx, "   ")
	s.ErrorIs(err, model.ErrInvalidUsername)
}

func (s *RegistrySuite) TestLoginAllowsDuplicateUsernames() {
	first, err := s.registry.Login(s.ctx, "Alice")
	s.Require().NoError(err)
	second, err := s.registry.Login(s.ctx, "Alice")
	s.Require().NoError(err)

	s.NotEqual(first.ID, second.ID)
}

func (s *RegistrySuite) TestValidateKnownSession() {
	created, _ := s.registry.Login(s.ctx, "Alice")

	session, err := s.registry.Validate(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.ID, session.ID)
}

func (s *RegistrySuite) TestValidateUnknownSession() {
	_, err := s.registry.Validate(s.ctx, "nope")
	s.ErrorIs(err, model.ErrSessionInvalid)

	_, err = s.registry.Validate(s.ctx, "")
	s.ErrorIs(err, model.ErrSessionInvalid)
}
