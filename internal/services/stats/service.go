package stats

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hferris/tictactoe-go/internal/dependencies/clock"
	"github.com/hferris/tictactoe-go/internal/model"
	"github.com/hferris/tictactoe-go/internal/storage"
)

// Service owns persistence and score arithmetic for player records.
// The game layer only decides which outcome to record and for whom.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new stats service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "stats")),
	}
}

// CreateOrGet returns the stats record for a nickname, creating a
// zeroed record if none exists yet
func (s *Service) CreateOrGet(ctx context.Context, nickname model.Nickname) (*model.PlayerStats, error) {
	stats, err := s.storage.GetPlayer(ctx, nickname)
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	stats = model.NewPlayerStats(nickname, s.clock.Now())
	if err := s.storage.SavePlayer(ctx, stats); err != nil {
		return nil, err
	}

	s.logger.Info("player created", slog.String("nickname", string(nickname)))
	return stats, nil
}

// Get returns the stats record for a nickname
func (s *Service) Get(ctx context.Context, nickname model.Nickname) (*model.PlayerStats, error) {
	return s.storage.GetPlayer(ctx, nickname)
}

// Leaderboard returns up to limit players ordered by score then wins
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]*model.PlayerStats, error) {
	return s.storage.ListTopPlayers(ctx, limit)
}

// RecordWin records a win for the nickname
func (s *Service) RecordWin(ctx context.Context, nickname model.Nickname) error {
	return s.update(ctx, nickname, (*model.PlayerStats).AddWin)
}

// RecordLoss records a loss for the nickname
func (s *Service) RecordLoss(ctx context.Context, nickname model.Nickname) error {
	return s.update(ctx, nickname, (*model.PlayerStats).AddLoss)
}

// RecordDraw records a draw for the nickname
func (s *Service) RecordDraw(ctx context.Context, nickname model.Nickname) error {
	return s.update(ctx, nickname, (*model.PlayerStats).AddDraw)
}

func (s *Service) update(ctx context.Context, nickname model.Nickname, apply func(*model.PlayerStats, time.Time)) error {
	stats, err := s.storage.GetPlayer(ctx, nickname)
	if err != nil {
		return err
	}
	apply(stats, s.clock.Now())
	return s.storage.SavePlayer(ctx, stats)
}

// Interface for dependency injection
type ServiceInterface interface {
	CreateOrGet(ctx context.Context, nickname model.Nickname) (*model.PlayerStats, error)
	Get(ctx context.Context, nickname model.Nickname) (*model.PlayerStats, error)
	Leaderboard(ctx context.Context, limit int) ([]*model.PlayerStats, error)
	RecordWin(ctx context.Context, nickname model.Nickname) error
	RecordLoss(ctx context.Context, nickname model.Nickname) error
	RecordDraw(ctx context.Context, nickname model.Nickname) error
}

var _ ServiceInterface = (*Service)(nil)
