package game_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/hferris/tictactoe-go/internal/dependencies/mocks"
	"github.com/hferris/tictactoe-go/internal/metrics"
	"github.com/hferris/tictactoe-go/internal/model"
	"github.com/hferris/tictactoe-go/internal/services/game"
)

type fakeRecorder struct {
	mu     sync.Mutex
	wins   []model.Nickname
	losses []model.Nickname
	draws  []model.Nickname
}

func (f *fakeRecorder) RecordWin(_ context.Context, n model.Nickname) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wins = append(f.wins, n)
	return nil
}

func (f *fakeRecorder) RecordLoss(_ context.Context, n model.Nickname) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.losses = append(f.losses, n)
	return nil
}

func (f *fakeRecorder) RecordDraw(_ context.Context, n model.Nickname) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draws = append(f.draws, n)
	return nil
}

type broadcastCall struct {
	game    model.Game
	message string
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (f *fakeBroadcaster) GameStateChanged(_ context.Context, g *model.Game, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, broadcastCall{game: *g, message: message})
}

func (f *fakeBroadcaster) last() broadcastCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type DirectorySuite struct {
	suite.Suite

	clock       *mocks.MockClock
	recorder    *fakeRecorder
	broadcaster *fakeBroadcaster
	directory   *game.Directory
}

func (s *DirectorySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.recorder = &fakeRecorder{}
	s.broadcaster = &fakeBroadcaster{}
	s.directory = game.NewDirectory(
		s.recorder,
		s.broadcaster,
		metrics.NewCollector(prometheus.NewRegistry()),
		s.clock,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		time.Hour,
	)
}

func (s *DirectorySuite) TearDownTest() {
	s.directory.Close()
}

func (s *DirectorySuite) create() *model.Game {
	g, err := s.directory.Create(context.Background(), "alice", "bob")
	s.Require().NoError(err)
	return g
}

// winForX plays X to a top-row win
func (s *DirectorySuite) winForX(id model.GameID) {
	moves := []struct {
		nickname model.Nickname
		row, col int
	}{
		{"alice", 0, 0},
		{"bob", 1, 0},
		{"alice", 0, 1},
		{"bob", 1, 1},
		{"alice", 0, 2},
	}
	for _, m := range moves {
		_, err := s.directory.ApplyMove(context.Background(), id, m.nickname, m.row, m.col)
		s.Require().NoError(err)
	}
}

func (s *DirectorySuite) TestCreateRegistersBothPlayers() {
	g := s.create()

	s.Require().Equal(model.StatusInProgress, g.Status)
	s.Require().Equal(model.SymbolX, g.Turn)

	id, ok := s.directory.GameFor("alice")
	s.Require().True(ok)
	s.Require().Equal(g.ID, id)
	id, ok = s.directory.GameFor("bob")
	s.Require().True(ok)
	s.Require().Equal(g.ID, id)

	s.Require().Equal(1, s.directory.ActiveCount())
}

func (s *DirectorySuite) TestCreateRejectsSamePlayer() {
	_, err := s.directory.Create(context.Background(), "alice", "alice")
	s.Require().ErrorIs(err, model.ErrSamePlayer)
}

func (s *DirectorySuite) TestGetReturnsSnapshot() {
	g := s.create()

	snap, err := s.directory.Get(g.ID)
	s.Require().NoError(err)
	snap.Board[0][0] = model.CellX

	fresh, err := s.directory.Get(g.ID)
	s.Require().NoError(err)
	s.Require().Equal(model.CellEmpty, fresh.Board[0][0])
}

func (s *DirectorySuite) TestGetUnknownGame() {
	_, err := s.directory.Get("missing")
	s.Require().ErrorIs(err, model.ErrGameNotFound)
}

func (s *DirectorySuite) TestApplyMoveBroadcasts() {
	g := s.create()

	updated, err := s.directory.ApplyMove(context.Background(), g.ID, "alice", 1, 1)
	s.Require().NoError(err)
	s.Require().Equal(model.SymbolO, updated.Turn)

	call := s.broadcaster.last()
	s.Require().Equal("Move successful", call.message)
	s.Require().Equal(model.CellX, call.game.Board[1][1])
}

func (s *DirectorySuite) TestApplyMoveRejectsOutsider() {
	g := s.create()
	_, err := s.directory.ApplyMove(context.Background(), g.ID, "mallory", 0, 0)
	s.Require().ErrorIs(err, model.ErrNotParticipant)
}

func (s *DirectorySuite) TestWinRecordsStatsOnce() {
	g := s.create()
	s.winForX(g.ID)

	s.Require().Equal([]model.Nickname{"alice"}, s.recorder.wins)
	s.Require().Equal([]model.Nickname{"bob"}, s.recorder.losses)
	s.Require().Empty(s.recorder.draws)

	call := s.broadcaster.last()
	s.Require().Equal("alice wins!", call.message)
	s.Require().Equal(model.StatusFinished, call.game.Status)

	_, err := s.directory.ApplyMove(context.Background(), g.ID, "bob", 2, 2)
	s.Require().ErrorIs(err, model.ErrGameFinished)
	s.Require().Len(s.recorder.wins, 1)
}

func (s *DirectorySuite) TestDrawRecordsBothPlayers() {
	g := s.create()
	moves := []struct {
		nickname model.Nickname
		row, col int
	}{
		{"alice", 0, 0}, {"bob", 0, 1}, {"alice", 0, 2},
		{"bob", 1, 1}, {"alice", 1, 0}, {"bob", 1, 2},
		{"alice", 2, 1}, {"bob", 2, 0}, {"alice", 2, 2},
	}
	for _, m := range moves {
		_, err := s.directory.ApplyMove(context.Background(), g.ID, m.nickname, m.row, m.col)
		s.Require().NoError(err)
	}

	s.Require().Equal([]model.Nickname{"alice", "bob"}, s.recorder.draws)
	s.Require().Empty(s.recorder.wins)
	s.Require().Equal("Game ended in a draw!", s.broadcaster.last().message)
}

func (s *DirectorySuite) TestForfeitAwardsOpponent() {
	g := s.create()

	updated, err := s.directory.Forfeit(context.Background(), g.ID, "alice")
	s.Require().NoError(err)
	s.Require().Equal(model.StatusFinished, updated.Status)
	s.Require().Equal(model.WinnerO, updated.Winner)

	s.Require().Equal([]model.Nickname{"bob"}, s.recorder.wins)
	s.Require().Equal([]model.Nickname{"alice"}, s.recorder.losses)
	s.Require().Equal("alice forfeited. bob wins!", s.broadcaster.last().message)

	_, err = s.directory.Forfeit(context.Background(), g.ID, "bob")
	s.Require().ErrorIs(err, model.ErrGameFinished)
}

func (s *DirectorySuite) TestAbandonRecordsNoStats() {
	g := s.create()

	updated, err := s.directory.Abandon(context.Background(), g.ID, "opponent disconnected")
	s.Require().NoError(err)
	s.Require().Equal(model.StatusAbandoned, updated.Status)
	s.Require().Equal(model.WinnerNone, updated.Winner)

	s.Require().Empty(s.recorder.wins)
	s.Require().Empty(s.recorder.losses)
	s.Require().Empty(s.recorder.draws)
	s.Require().Equal("opponent disconnected", s.broadcaster.last().message)
}

func (s *DirectorySuite) TestAbandonTerminalGameIsNoOp() {
	g := s.create()
	s.winForX(g.ID)
	before := len(s.broadcaster.calls)

	updated, err := s.directory.Abandon(context.Background(), g.ID, "sweep")
	s.Require().NoError(err)
	s.Require().Equal(model.StatusFinished, updated.Status)
	s.Require().Len(s.broadcaster.calls, before)
}

func (s *DirectorySuite) TestRemoveClearsIndex() {
	g := s.create()
	s.directory.Remove(g.ID)

	_, err := s.directory.Get(g.ID)
	s.Require().ErrorIs(err, model.ErrGameNotFound)
	_, ok := s.directory.GameFor("alice")
	s.Require().False(ok)
	s.Require().Zero(s.directory.ActiveCount())
}

func (s *DirectorySuite) TestInProgressExcludesFinished() {
	first := s.create()
	s.winForX(first.ID)

	second, err := s.directory.Create(context.Background(), "carol", "dave")
	s.Require().NoError(err)

	live := s.directory.InProgress()
	s.Require().Len(live, 1)
	s.Require().Equal(second.ID, live[0].ID)
}

func TestDirectorySuite(t *testing.T) {
	suite.Run(t, new(DirectorySuite))
}

func TestFinishedGameRemovedAfterGrace(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	directory := game.NewDirectory(
		&fakeRecorder{},
		&fakeBroadcaster{},
		metrics.NewCollector(prometheus.NewRegistry()),
		clk,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		10*time.Millisecond,
	)
	defer directory.Close()

	g, err := directory.Create(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := directory.Forfeit(context.Background(), g.ID, "alice"); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := directory.Get(g.ID); err != nil {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("finished game was not cleaned up")
}
