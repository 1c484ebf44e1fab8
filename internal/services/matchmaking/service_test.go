package matchmaking_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/hferris/tictactoe-go/internal/dependencies/mocks"
	"github.com/hferris/tictactoe-go/internal/metrics"
	"github.com/hferris/tictactoe-go/internal/model"
	"github.com/hferris/tictactoe-go/internal/services/matchmaking"
)

type fakeDirectory struct {
	games    map[model.GameID]*model.Game
	byPlayer map[model.Nickname]model.GameID
	now      func() time.Time
}

func newFakeDirectory(now func() time.Time) *fakeDirectory {
	return &fakeDirectory{
		games:    make(map[model.GameID]*model.Game),
		byPlayer: make(map[model.Nickname]model.GameID),
		now:      now,
	}
}

func (f *fakeDirectory) Create(_ context.Context, playerX, playerO model.Nickname) (*model.Game, error) {
	if playerX == playerO {
		return nil, model.ErrSamePlayer
	}
	g := model.NewGame(model.GameID(uuid.NewString()), playerX, playerO, f.now())
	f.games[g.ID] = g
	f.byPlayer[playerX] = g.ID
	f.byPlayer[playerO] = g.ID
	return g, nil
}

func (f *fakeDirectory) Get(id model.GameID) (*model.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return g, nil
}

func (f *fakeDirectory) GameFor(nickname model.Nickname) (model.GameID, bool) {
	id, ok := f.byPlayer[nickname]
	return id, ok
}

type MatchmakingSuite struct {
	suite.Suite

	clock     *mocks.MockClock
	directory *fakeDirectory
	service   *matchmaking.Service
}

func (s *MatchmakingSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.directory = newFakeDirectory(s.clock.Now)
	s.service = matchmaking.New(
		s.directory,
		s.clock,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.NewCollector(prometheus.NewRegistry()),
		matchmaking.DefaultStaleAfter,
	)
}

func (s *MatchmakingSuite) TestFirstJoinWaits() {
	id, err := s.service.Join(context.Background(), "alice")
	s.Require().NoError(err)
	s.Require().Empty(id)
	s.Require().Equal(1, s.service.WaitingCount())
}

func (s *MatchmakingSuite) TestSecondJoinPairs() {
	_, err := s.service.Join(context.Background(), "alice")
	s.Require().NoError(err)

	id, err := s.service.Join(context.Background(), "bob")
	s.Require().NoError(err)
	s.Require().NotEmpty(id)
	s.Require().Zero(s.service.WaitingCount())

	g, err := s.directory.Get(id)
	s.Require().NoError(err)
	s.Require().Equal(model.Nickname("alice"), g.PlayerX)
	s.Require().Equal(model.Nickname("bob"), g.PlayerO)
}

func (s *MatchmakingSuite) TestEmptyNicknameRejected() {
	_, err := s.service.Join(context.Background(), "   ")
	s.Require().ErrorIs(err, model.ErrEmptyNickname)
}

func (s *MatchmakingSuite) TestDuplicateJoinIgnored() {
	_, err := s.service.Join(context.Background(), "alice")
	s.Require().NoError(err)

	id, err := s.service.Join(context.Background(), "alice")
	s.Require().NoError(err)
	s.Require().Empty(id)
	s.Require().Equal(1, s.service.WaitingCount())
}

func (s *MatchmakingSuite) TestRejoinReturnsExistingGame() {
	_, err := s.service.Join(context.Background(), "alice")
	s.Require().NoError(err)
	first, err := s.service.Join(context.Background(), "bob")
	s.Require().NoError(err)

	again, err := s.service.Join(context.Background(), "alice")
	s.Require().NoError(err)
	s.Require().Equal(first, again)
	s.Require().Zero(s.service.WaitingCount())
}

func (s *MatchmakingSuite) TestFinishedGameDoesNotBlockRequeue() {
	_, err := s.service.Join(context.Background(), "alice")
	s.Require().NoError(err)
	id, err := s.service.Join(context.Background(), "bob")
	s.Require().NoError(err)

	g, err := s.directory.Get(id)
	s.Require().NoError(err)
	g.Status = model.StatusFinished

	next, err := s.service.Join(context.Background(), "alice")
	s.Require().NoError(err)
	s.Require().Empty(next)
	s.Require().Equal(1, s.service.WaitingCount())
}

func (s *MatchmakingSuite) TestCancelRemovesFromQueue() {
	_, err := s.service.Join(context.Background(), "alice")
	s.Require().NoError(err)

	s.service.Cancel("alice")
	s.Require().Zero(s.service.WaitingCount())

	// second cancel is a no-op
	s.service.Cancel("alice")
	s.Require().Zero(s.service.WaitingCount())
}

func (s *MatchmakingSuite) TestStaleEntryEvicted() {
	_, err := s.service.Join(context.Background(), "alice")
	s.Require().NoError(err)

	s.clock.Advance(matchmaking.DefaultStaleAfter + time.Second)

	id, err := s.service.Join(context.Background(), "bob")
	s.Require().NoError(err)
	s.Require().Empty(id)
	s.Require().Equal(1, s.service.WaitingCount())

	entries := s.service.Snapshot()
	s.Require().Len(entries, 1)
	s.Require().Equal(model.Nickname("bob"), entries[0].Nickname)
}

func (s *MatchmakingSuite) TestEvictStale() {
	_, err := s.service.Join(context.Background(), "alice")
	s.Require().NoError(err)
	s.clock.Advance(30 * time.Second)
	_, err = s.service.Join(context.Background(), "bob")
	s.Require().NoError(err)

	s.clock.Advance(31 * time.Second)
	s.service.EvictStale()

	entries := s.service.Snapshot()
	s.Require().Len(entries, 1)
	s.Require().Equal(model.Nickname("bob"), entries[0].Nickname)
}

func (s *MatchmakingSuite) TestClear() {
	_, err := s.service.Join(context.Background(), "alice")
	s.Require().NoError(err)

	s.Require().Equal(1, s.service.Clear())
	s.Require().Zero(s.service.WaitingCount())
	s.Require().Zero(s.service.Clear())
}

func (s *MatchmakingSuite) TestSnapshotIsCopy() {
	_, err := s.service.Join(context.Background(), "alice")
	s.Require().NoError(err)

	entries := s.service.Snapshot()
	entries[0].Nickname = "mallory"

	fresh := s.service.Snapshot()
	s.Require().Equal(model.Nickname("alice"), fresh[0].Nickname)
}

func TestMatchmakingSuite(t *testing.T) {
	suite.Run(t, new(MatchmakingSuite))
}

func TestPairingIsFIFO(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	dir := newFakeDirectory(clk.Now)
	svc := matchmaking.New(dir, clk, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics.NewCollector(prometheus.NewRegistry()), 0)

	for _, n := range []model.Nickname{"a", "b", "c"} {
		id, err := svc.Join(context.Background(), n)
		require.NoError(t, err)
		switch n {
		case "b":
			g, err := dir.Get(id)
			require.NoError(t, err)
			require.Equal(t, model.Nickname("a"), g.PlayerX)
		case "c":
			require.Empty(t, id)
		}
	}
}
