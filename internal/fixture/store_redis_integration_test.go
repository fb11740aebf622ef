//go:build integration

package fixture_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"traceguard/internal/fixture"
	"traceguard/pkg/platform/sentinel"
	"traceguard/pkg/testutil/containers"
)

type RedisTokenStoreSuite struct {
	suite.Suite
	ctx   context.Context
	redis *containers.RedisContainer
	store *fixture.RedisTokenStore
}

func TestRedisTokenStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration tests in short mode")
	}
	suite.Run(t, new(RedisTokenStoreSuite))
}

func (s *RedisTokenStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
	s.store = fixture.NewRedisTokenStore(s.redis.Client)
}

func (s *RedisTokenStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisTokenStoreSuite) TestCurrentBeforeAnyLogin() {
	_, err := s.store.Current(s.ctx, "admin@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisTokenStoreSuite) TestSupersession() {
	s.Require().NoError(s.store.SetCurrent(s.ctx, "admin@example.com", "jti-1"))
	s.Require().NoError(s.store.SetCurrent(s.ctx, "admin@example.com", "jti-2"))

	id, err := s.store.Current(s.ctx, "admin@example.com")
	s.Require().NoError(err)
	s.Equal("jti-2", id)
}

func (s *RedisTokenStoreSuite) TestEmailCaseInsensitive() {
	s.Require().NoError(s.store.SetCurrent(s.ctx, "Admin@Example.COM", "jti-1"))

	id, err := s.store.Current(s.ctx, "admin@example.com")
	s.Require().NoError(err)
	s.Equal("jti-1", id)
}

func (s *RedisTokenStoreSuite) TestAccountsAreIndependent() {
	s.Require().NoError(s.store.SetCurrent(s.ctx, "a@example.com", "jti-a"))
	s.Require().NoError(s.store.SetCurrent(s.ctx, "b@example.com", "jti-b"))

	id, err := s.store.Current(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Equal("jti-a", id)
}
