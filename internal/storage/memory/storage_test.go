package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hferris/tictactoe-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) TestSaveAndGetPlayer() {
	stats := model.NewPlayerStats("alice", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	stats.Wins = 3
	stats.TotalScore = 600

	err := s.storage.SavePlayer(s.ctx, stats)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.Nickname("alice"), retrieved.Nickname)
	s.Equal(3, retrieved.Wins)
	s.Equal(600, retrieved.TotalScore)
}

func (s *StorageSuite) TestGetMissingPlayerFails() {
	_, err := s.storage.GetPlayer(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestSaveStoresACopy() {
	now := time.Now()
	stats := model.NewPlayerStats("alice", now)
	s.Require().NoError(s.storage.SavePlayer(s.ctx, stats))

	// Mutating the caller's record must not affect the stored one
	stats.Wins = 99

	retrieved, err := s.storage.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(0, retrieved.Wins)
}

func (s *StorageSuite) TestListTopPlayersOrdersByScoreThenWins() {
	now := time.Now()

	alice := model.NewPlayerStats("alice", now)
	alice.TotalScore = 400
	alice.Wins = 2

	bob := model.NewPlayerStats("bob", now)
	bob.TotalScore = 600
	bob.Wins = 3

	carol := model.NewPlayerStats("carol", now)
	carol.TotalScore = 400
	carol.Wins = 1

	for _, p := range []*model.PlayerStats{alice, bob, carol} {
		s.Require().NoError(s.storage.SavePlayer(s.ctx, p))
	}

	top, err := s.storage.ListTopPlayers(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 3)
	s.Equal(model.Nickname("bob"), top[0].Nickname)
	s.Equal(model.Nickname("alice"), top[1].Nickname)
	s.Equal(model.Nickname("carol"), top[2].Nickname)
}

func (s *StorageSuite) TestListTopPlayersRespectsLimit() {
	now := time.Now()
	for _, nickname := range []model.Nickname{"a", "b", "c", "d"} {
		s.Require().NoError(s.storage.SavePlayer(s.ctx, model.NewPlayerStats(nickname, now)))
	}

	top, err := s.storage.ListTopPlayers(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(top, 2)
}
