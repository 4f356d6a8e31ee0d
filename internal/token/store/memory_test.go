package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"scanledger/internal/token"
	id "scanledger/pkg/domain"
	"scanledger/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func (s *InMemoryStoreSuite) mustIdentity(value string, donorID id.DonorID, at time.Time) *token.Token {
	t, err := token.NewIdentityToken(value, donorID, "", at)
	s.Require().NoError(err)
	return t
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	donorID := id.NewDonorID()
	tok := s.mustIdentity("abc", donorID, time.Now())

	s.Require().NoError(s.store.Create(ctx, tok))

	found, err := s.store.FindByValue(ctx, "abc")
	s.Require().NoError(err)
	s.Equal("abc", found.Value)

	s.Run("duplicate value conflicts", func() {
		err := s.store.Create(ctx, s.mustIdentity("abc", donorID, time.Now()))
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("missing value is not found", func() {
		_, err := s.store.FindByValue(ctx, "missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestSetActive() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.mustIdentity("abc", id.NewDonorID(), time.Now())))

	s.Require().NoError(s.store.SetActive(ctx, "abc", false))
	found, err := s.store.FindByValue(ctx, "abc")
	s.Require().NoError(err)
	s.False(found.IsActive)

	s.ErrorIs(s.store.SetActive(ctx, "missing", false), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.mustIdentity("abc", id.NewDonorID(), time.Now())))

	s.Require().NoError(s.store.Delete(ctx, "abc"))
	_, err := s.store.FindByValue(ctx, "abc")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(ctx, "abc"), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestCountByDonor() {
	ctx := context.Background()
	donorA := id.NewDonorID()
	donorB := id.NewDonorID()
	s.Require().NoError(s.store.Create(ctx, s.mustIdentity("a1", donorA, time.Now())))
	s.Require().NoError(s.store.Create(ctx, s.mustIdentity("a2", donorA, time.Now())))
	s.Require().NoError(s.store.Create(ctx, s.mustIdentity("b1", donorB, time.Now())))

	count, err := s.store.CountByDonor(ctx, donorA)
	s.Require().NoError(err)
	s.Equal(2, count)

	count, err = s.store.CountByDonor(ctx, id.NewDonorID())
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *InMemoryStoreSuite) TestListOrdersByCreation() {
	ctx := context.Background()
	base := time.Now()
	s.Require().NoError(s.store.Create(ctx, s.mustIdentity("later", id.NewDonorID(), base.Add(time.Minute))))
	s.Require().NoError(s.store.Create(ctx, s.mustIdentity("earlier", id.NewDonorID(), base)))

	tokens, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(tokens, 2)
	s.Equal("earlier", tokens[0].Value)
	s.Equal("later", tokens[1].Value)
}
