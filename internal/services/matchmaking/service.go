package matchmaking

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hferris/tictactoe-go/internal/dependencies/clock"
	"github.com/hferris/tictactoe-go/internal/metrics"
	"github.com/hferris/tictactoe-go/internal/model"
)

// DefaultStaleAfter is how long a queue entry may wait before it is
// evicted as stale
const DefaultStaleAfter = 60 * time.Second

// GameCreator is the slice of the game directory matchmaking needs.
type GameCreator interface {
	Create(ctx context.Context, playerX, playerO model.Nickname) (*model.Game, error)
	Get(id model.GameID) (*model.Game, error)
	GameFor(nickname model.Nickname) (model.GameID, bool)
}

// WaitingEntry is a nickname awaiting an opponent
type WaitingEntry struct {
	Nickname   model.Nickname
	EnqueuedAt time.Time
}

// Service pairs waiting players strictly first-in-first-out. The whole
// join sequence runs as one critical section: two concurrent joins can
// never both dequeue the same waiting entry, and no entry is ever
// matched with itself.
type Service struct {
	mu      sync.Mutex
	waiting []WaitingEntry

	directory  GameCreator
	clock      clock.Clock
	logger     *slog.Logger
	metrics    *metrics.Collector
	staleAfter time.Duration
}

// New creates a new matchmaking service
func New(
	directory GameCreator,
	clock clock.Clock,
	logger *slog.Logger,
	metrics *metrics.Collector,
	staleAfter time.Duration,
) *Service {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Service{
		directory:  directory,
		clock:      clock,
		logger:     logger.With(slog.String("component", "matchmaking")),
		metrics:    metrics,
		staleAfter: staleAfter,
	}
}

// Join pairs the caller with the longest-waiting opponent, or enqueues
// them. It returns the game id when a game exists for the caller (a
// fresh pairing, or an idempotent rejoin of a game still in progress)
// and "" when the caller is left waiting.
func (s *Service) Join(ctx context.Context, nickname model.Nickname) (model.GameID, error) {
	if strings.TrimSpace(string(nickname)) == "" {
		return "", model.ErrEmptyNickname
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Rejoin: a nickname bound to a live in-progress game gets that
	// game back, supporting reconnect before the abandonment timeout
	if id, ok := s.directory.GameFor(nickname); ok {
		if g, err := s.directory.Get(id); err == nil && g.Status == model.StatusInProgress {
			s.logger.Info("rejoining existing game",
				slog.String("nickname", string(nickname)),
				slog.String("game_id", string(id)),
			)
			return id, nil
		}
	}

	// A nickname may not appear twice in the queue
	if s.queuedLocked(nickname) {
		s.logger.Warn("duplicate join ignored", slog.String("nickname", string(nickname)))
		return "", nil
	}

	now := s.clock.Now()
	s.evictStaleLocked(now)

	if len(s.waiting) > 0 {
		head := s.waiting[0]
		s.waiting = s.waiting[1:]

		// Must not occur under correct membership tracking, but checked
		// defensively: never pair an entry with itself
		if head.Nickname == nickname {
			s.logger.Error("self-pairing prevented", slog.String("nickname", string(nickname)))
			s.waiting = append(s.waiting, WaitingEntry{Nickname: nickname, EnqueuedAt: now})
			s.metrics.SetQueueDepth(len(s.waiting))
			return "", nil
		}

		g, err := s.directory.Create(ctx, head.Nickname, nickname)
		if err != nil {
			s.waiting = append([]WaitingEntry{head}, s.waiting...)
			return "", err
		}

		s.metrics.SetQueueDepth(len(s.waiting))
		s.logger.Info("players paired",
			slog.String("game_id", string(g.ID)),
			slog.String("player_x", string(head.Nickname)),
			slog.String("player_o", string(nickname)),
		)
		return g.ID, nil
	}

	s.waiting = append(s.waiting, WaitingEntry{Nickname: nickname, EnqueuedAt: now})
	s.metrics.SetQueueDepth(len(s.waiting))
	s.logger.Info("player queued",
		slog.String("nickname", string(nickname)),
		slog.Int("queue_depth", len(s.waiting)),
	)
	return "", nil
}

// Cancel removes the nickname from the queue. It is a no-op if the
// nickname is not queued.
func (s *Service) Cancel(nickname model.Nickname) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeLocked(nickname) {
		s.metrics.SetQueueDepth(len(s.waiting))
		s.logger.Info("player left queue",
			slog.String("nickname", string(nickname)),
			slog.Int("queue_depth", len(s.waiting)),
		)
	}
}

// EvictStale drops queue entries older than the staleness window
func (s *Service) EvictStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictStaleLocked(s.clock.Now())
}

// WaitingCount returns the current queue depth
func (s *Service) WaitingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiting)
}

// Snapshot returns a copy of the current queue contents in FIFO order
func (s *Service) Snapshot() []WaitingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]WaitingEntry, len(s.waiting))
	copy(entries, s.waiting)
	return entries
}

// Clear empties the queue and returns how many entries were dropped
func (s *Service) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.waiting)
	s.waiting = nil
	s.metrics.SetQueueDepth(0)
	if n > 0 {
		s.logger.Info("queue cleared", slog.Int("removed", n))
	}
	return n
}

func (s *Service) queuedLocked(nickname model.Nickname) bool {
	for _, e := range s.waiting {
		if e.Nickname == nickname {
			return true
		}
	}
	return false
}

func (s *Service) removeLocked(nickname model.Nickname) bool {
	for i, e := range s.waiting {
		if e.Nickname == nickname {
			s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Service) evictStaleLocked(now time.Time) {
	cutoff := now.Add(-s.staleAfter)
	kept := s.waiting[:0]
	for _, e := range s.waiting {
		if e.EnqueuedAt.Before(cutoff) {
			s.logger.Info("evicting stale queue entry",
				slog.String("nickname", string(e.Nickname)),
				slog.Duration("waited", now.Sub(e.EnqueuedAt)),
			)
			continue
		}
		kept = append(kept, e)
	}
	s.waiting = kept
	s.metrics.SetQueueDepth(len(s.waiting))
}

// Interface for dependency injection
type ServiceInterface interface {
	Join(ctx context.Context, nickname model.Nickname) (model.GameID, error)
	Cancel(nickname model.Nickname)
	EvictStale()
	WaitingCount() int
	Snapshot() []WaitingEntry
	Clear() int
}

var _ ServiceInterface = (*Service)(nil)
