package factory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hferris/tictactoe-go/internal/factory"
	"github.com/hferris/tictactoe-go/internal/model"
)

type IntegrationSuite struct {
	suite.Suite

	app *factory.TestApp
	ctx context.Context
}

func (s *IntegrationSuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

func (s *IntegrationSuite) join(nickname model.Nickname) model.GameID {
	_, err := s.app.StatsService.CreateOrGet(s.ctx, nickname)
	s.Require().NoError(err)
	id, err := s.app.Matchmaking.Join(s.ctx, nickname)
	s.Require().NoError(err)
	return id
}

func (s *IntegrationSuite) pair() model.GameID {
	id := s.join("alice")
	s.Require().Empty(id)
	id = s.join("bob")
	s.Require().NotEmpty(id)
	return id
}

func (s *IntegrationSuite) move(id model.GameID, nickname model.Nickname, row, col int) {
	_, err := s.app.Directory.ApplyMove(s.ctx, id, nickname, row, col)
	s.Require().NoError(err)
}

func (s *IntegrationSuite) TestPairingAssignsSymbols() {
	id := s.pair()

	g, err := s.app.Directory.Get(id)
	s.Require().NoError(err)
	s.Require().Equal(model.Nickname("alice"), g.PlayerX)
	s.Require().Equal(model.Nickname("bob"), g.PlayerO)
	s.Require().Equal(model.StatusInProgress, g.Status)
	s.Require().Equal(model.SymbolX, g.Turn)
}

func (s *IntegrationSuite) TestWinUpdatesLeaderboard() {
	id := s.pair()

	s.move(id, "alice", 0, 0)
	s.move(id, "bob", 1, 0)
	s.move(id, "alice", 0, 1)
	s.move(id, "bob", 1, 1)
	s.move(id, "alice", 0, 2)

	g, err := s.app.Directory.Get(id)
	s.Require().NoError(err)
	s.Require().Equal(model.StatusFinished, g.Status)
	s.Require().Equal(model.WinnerX, g.Winner)

	top, err := s.app.StatsService.Leaderboard(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Require().Equal(model.Nickname("alice"), top[0].Nickname)
	s.Require().Equal(1, top[0].Wins)
	s.Require().Equal(model.WinScore, top[0].TotalScore)
	s.Require().Equal(1, top[1].Losses)
	s.Require().Zero(top[1].TotalScore)
}

func (s *IntegrationSuite) TestOccupiedCellRejected() {
	id := s.pair()

	s.move(id, "alice", 1, 1)
	_, err := s.app.Directory.ApplyMove(s.ctx, id, "bob", 1, 1)
	s.Require().ErrorIs(err, model.ErrInvalidMove)

	// the board and turn are unchanged by the rejected move
	g, getErr := s.app.Directory.Get(id)
	s.Require().NoError(getErr)
	s.Require().Equal(model.SymbolO, g.Turn)
}

func (s *IntegrationSuite) TestStaleQueueEntryEvicted() {
	id := s.join("alice")
	s.Require().Empty(id)

	s.app.MockClock.Advance(61 * time.Second)
	s.app.Sweeper.Sweep(s.ctx)

	s.Require().Zero(s.app.Matchmaking.WaitingCount())
}

func (s *IntegrationSuite) TestIdleGameAbandonedWithoutStats() {
	id := s.pair()
	s.app.Presence.Register("conn-a", "alice")
	s.app.Presence.Register("conn-b", "bob")

	s.app.MockClock.Advance(10*time.Minute + time.Second)
	s.app.Presence.Touch("alice")
	s.app.Presence.Touch("bob")
	s.app.Sweeper.Sweep(s.ctx)

	g, err := s.app.Directory.Get(id)
	s.Require().NoError(err)
	s.Require().Equal(model.StatusAbandoned, g.Status)
	s.Require().Equal(model.WinnerNone, g.Winner)

	record, err := s.app.StatsService.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Zero(record.Wins)
	s.Require().Zero(record.Losses)
}

func (s *IntegrationSuite) TestSilentPlayerAbandonsGame() {
	id := s.pair()
	s.app.Presence.Register("conn-a", "alice")
	s.app.Presence.Register("conn-b", "bob")

	// alice keeps playing, bob goes quiet
	s.app.MockClock.Advance(2 * time.Minute)
	s.move(id, "alice", 0, 0)
	s.app.Presence.Touch("alice")
	s.app.MockClock.Advance(2 * time.Minute)
	s.app.Presence.Touch("alice")

	s.app.Sweeper.Sweep(s.ctx)

	g, err := s.app.Directory.Get(id)
	s.Require().NoError(err)
	s.Require().Equal(model.StatusAbandoned, g.Status)
}

func (s *IntegrationSuite) TestDisconnectCascade() {
	id := s.pair()
	s.app.Presence.Register("conn-a", "alice")
	s.app.Presence.Register("conn-b", "bob")

	s.app.Presence.Unregister(s.ctx, "conn-b")

	g, err := s.app.Directory.Get(id)
	s.Require().NoError(err)
	s.Require().Equal(model.StatusAbandoned, g.Status)

	// repeat unregister is harmless
	s.app.Presence.Unregister(s.ctx, "conn-b")
}

func (s *IntegrationSuite) TestRejoinAfterAbandonmentQueuesFresh() {
	s.pair()
	s.app.Presence.Register("conn-a", "alice")
	s.app.Presence.Register("conn-b", "bob")
	s.app.Presence.Unregister(s.ctx, "conn-b")

	// alice's old game is terminal, so she goes back into the queue
	id := s.join("alice")
	s.Require().Empty(id)
	s.Require().Equal(1, s.app.Matchmaking.WaitingCount())
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}
