package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/hferris/tictactoe-go/internal/dependencies/clock"
	"github.com/hferris/tictactoe-go/internal/model"
)

// DefaultInterval is how often a sweep pass runs
const DefaultInterval = 30 * time.Second

// Windows holds the timeout thresholds a sweep pass enforces
type Windows struct {
	// PlayerIdle is how long a player in a game may go without any
	// activity before the game is abandoned
	PlayerIdle time.Duration
	// GameIdle is how long a game may go without a move before it is
	// abandoned
	GameIdle time.Duration
}

// DefaultWindows returns the standard timeout thresholds
func DefaultWindows() Windows {
	return Windows{
		PlayerIdle: 3 * time.Minute,
		GameIdle:   10 * time.Minute,
	}
}

// StaleEvicter drops stale matchmaking queue entries
type StaleEvicter interface {
	EvictStale()
}

// GameScanner is the slice of the game directory a sweep pass needs
type GameScanner interface {
	InProgress() []*model.Game
	Abandon(ctx context.Context, id model.GameID, reason string) (*model.Game, error)
}

// ActivityReader reports when a nickname was last heard from
type ActivityReader interface {
	LastActivity(nickname model.Nickname) (time.Time, bool)
}

// Service periodically reaps stale queue entries, idle games, and
// games whose players have gone silent.
type Service struct {
	queue     StaleEvicter
	directory GameScanner
	presence  ActivityReader
	clock     clock.Clock
	logger    *slog.Logger
	windows   Windows
}

// New creates a new sweeper
func New(
	queue StaleEvicter,
	directory GameScanner,
	presence ActivityReader,
	clock clock.Clock,
	logger *slog.Logger,
	windows Windows,
) *Service {
	if windows.PlayerIdle <= 0 {
		windows.PlayerIdle = DefaultWindows().PlayerIdle
	}
	if windows.GameIdle <= 0 {
		windows.GameIdle = DefaultWindows().GameIdle
	}
	return &Service{
		queue:     queue,
		directory: directory,
		presence:  presence,
		clock:     clock,
		logger:    logger.With(slog.String("component", "sweeper")),
		windows:   windows,
	}
}

// Run executes sweep passes on a ticker until the context is cancelled
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single pass
func (s *Service) Sweep(ctx context.Context) {
	s.queue.EvictStale()

	now := s.clock.Now()
	for _, g := range s.directory.InProgress() {
		if reason, ok := s.expired(g, now); ok {
			if _, err := s.directory.Abandon(ctx, g.ID, reason); err != nil {
				s.logger.Error("failed to abandon expired game",
					slog.String("game_id", string(g.ID)),
					slog.String("error", err.Error()),
				)
				continue
			}
			s.logger.Info("abandoned expired game",
				slog.String("game_id", string(g.ID)),
				slog.String("reason", reason),
			)
		}
	}
}

func (s *Service) expired(g *model.Game, now time.Time) (string, bool) {
	if now.Sub(g.LastMoveAt) > s.windows.GameIdle {
		return "game timed out", true
	}
	for _, nickname := range []model.Nickname{g.PlayerX, g.PlayerO} {
		// A player with no presence record is judged by the game's
		// move clock alone
		last, ok := s.presence.LastActivity(nickname)
		if ok && now.Sub(last) > s.windows.PlayerIdle {
			return "player inactive", true
		}
	}
	return "", false
}
