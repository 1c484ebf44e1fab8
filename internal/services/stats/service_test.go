package stats_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hferris/tictactoe-go/internal/dependencies/mocks"
	"github.com/hferris/tictactoe-go/internal/model"
	"github.com/hferris/tictactoe-go/internal/services/stats"
	"github.com/hferris/tictactoe-go/internal/storage/memory"
)

type StatsSuite struct {
	suite.Suite

	clock   *mocks.MockClock
	service *stats.Service
}

func (s *StatsSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.service = stats.New(memory.New(), s.clock, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *StatsSuite) TestCreateOrGetCreatesZeroedRecord() {
	record, err := s.service.CreateOrGet(context.Background(), "alice")
	s.Require().NoError(err)
	s.Require().Equal(model.Nickname("alice"), record.Nickname)
	s.Require().Zero(record.Wins)
	s.Require().Zero(record.TotalScore)
	s.Require().Equal(s.clock.Now(), record.CreatedAt)
}

func (s *StatsSuite) TestCreateOrGetIsIdempotent() {
	_, err := s.service.CreateOrGet(context.Background(), "alice")
	s.Require().NoError(err)
	s.Require().NoError(s.service.RecordWin(context.Background(), "alice"))

	record, err := s.service.CreateOrGet(context.Background(), "alice")
	s.Require().NoError(err)
	s.Require().Equal(1, record.Wins)
}

func (s *StatsSuite) TestGetUnknownPlayer() {
	_, err := s.service.Get(context.Background(), "ghost")
	s.Require().ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StatsSuite) TestRecordingUpdatesScoreAndLastPlayed() {
	_, err := s.service.CreateOrGet(context.Background(), "alice")
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	s.Require().NoError(s.service.RecordWin(context.Background(), "alice"))
	s.clock.Advance(time.Minute)
	s.Require().NoError(s.service.RecordDraw(context.Background(), "alice"))
	s.Require().NoError(s.service.RecordLoss(context.Background(), "alice"))

	record, err := s.service.Get(context.Background(), "alice")
	s.Require().NoError(err)
	s.Require().Equal(1, record.Wins)
	s.Require().Equal(1, record.Draws)
	s.Require().Equal(1, record.Losses)
	s.Require().Equal(model.WinScore+model.DrawScore, record.TotalScore)
	s.Require().Equal(s.clock.Now(), record.LastPlayed)
}

func (s *StatsSuite) TestRecordForUnknownPlayerFails() {
	err := s.service.RecordWin(context.Background(), "ghost")
	s.Require().ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StatsSuite) TestLeaderboardRanksByScore() {
	for _, n := range []model.Nickname{"alice", "bob", "carol"} {
		_, err := s.service.CreateOrGet(context.Background(), n)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.service.RecordDraw(context.Background(), "alice"))
	s.Require().NoError(s.service.RecordWin(context.Background(), "carol"))

	top, err := s.service.Leaderboard(context.Background(), 2)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Require().Equal(model.Nickname("carol"), top[0].Nickname)
	s.Require().Equal(model.Nickname("alice"), top[1].Nickname)
}

func TestStatsSuite(t *testing.T) {
	suite.Run(t, new(StatsSuite))
}
