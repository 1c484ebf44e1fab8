package presence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hferris/tictactoe-go/internal/dependencies/clock"
	"github.com/hferris/tictactoe-go/internal/model"
)

// ConnectionID identifies a single transport connection
type ConnectionID string

// QueueCanceller removes a nickname from the matchmaking queue
type QueueCanceller interface {
	Cancel(nickname model.Nickname)
}

// GameAbandoner is the slice of the game directory presence needs to
// tear down games whose player has gone away.
type GameAbandoner interface {
	GameFor(nickname model.Nickname) (model.GameID, bool)
	Abandon(ctx context.Context, id model.GameID, reason string) (*model.Game, error)
}

// Service tracks which nickname is bound to which connection and when
// each nickname was last heard from. A nickname holds at most one
// connection; registering a new one displaces the old binding.
type Service struct {
	mu           sync.Mutex
	byNickname   map[model.Nickname]ConnectionID
	byConn       map[ConnectionID]model.Nickname
	lastActivity map[model.Nickname]time.Time

	queue     QueueCanceller
	directory GameAbandoner
	clock     clock.Clock
	logger    *slog.Logger
}

// New creates a new presence service
func New(
	queue QueueCanceller,
	directory GameAbandoner,
	clock clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		byNickname:   make(map[model.Nickname]ConnectionID),
		byConn:       make(map[ConnectionID]model.Nickname),
		lastActivity: make(map[model.Nickname]time.Time),
		queue:        queue,
		directory:    directory,
		clock:        clock,
		logger:       logger.With(slog.String("component", "presence")),
	}
}

// Register binds the connection to the nickname and stamps activity.
// An existing binding for the nickname is displaced, so a reconnecting
// player is never torn down by the death of their previous connection.
func (s *Service) Register(connID ConnectionID, nickname model.Nickname) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byNickname[nickname]; ok && old != connID {
		delete(s.byConn, old)
		s.logger.Info("connection displaced",
			slog.String("nickname", string(nickname)),
			slog.String("old_conn", string(old)),
			slog.String("new_conn", string(connID)),
		)
	}
	s.byNickname[nickname] = connID
	s.byConn[connID] = nickname
	s.lastActivity[nickname] = s.clock.Now()
}

// Touch refreshes the activity timestamp for the nickname. Heartbeats
// and every game action land here.
func (s *Service) Touch(nickname model.Nickname) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byNickname[nickname]; ok {
		s.lastActivity[nickname] = s.clock.Now()
	}
}

// LastActivity returns when the nickname was last heard from. The
// second return is false when the nickname is not tracked.
func (s *Service) LastActivity(nickname model.Nickname) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lastActivity[nickname]
	return t, ok
}

// Nickname returns the nickname bound to the connection, if any
func (s *Service) Nickname(connID ConnectionID) (model.Nickname, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byConn[connID]
	return n, ok
}

// Unregister tears down everything attached to the connection: the
// nickname leaves the matchmaking queue and any in-progress game is
// abandoned with no winner. A connection that was already
// unregistered, or that was displaced by a newer one, is a no-op.
func (s *Service) Unregister(ctx context.Context, connID ConnectionID) {
	s.mu.Lock()
	nickname, ok := s.byConn[connID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.byConn, connID)
	if s.byNickname[nickname] == connID {
		delete(s.byNickname, nickname)
		delete(s.lastActivity, nickname)
	} else {
		// A newer connection owns this nickname now, only the stale
		// conn binding goes
		nickname = ""
	}
	s.mu.Unlock()

	if nickname == "" {
		return
	}

	s.logger.Info("player disconnected", slog.String("nickname", string(nickname)))
	s.queue.Cancel(nickname)

	if id, ok := s.directory.GameFor(nickname); ok {
		if _, err := s.directory.Abandon(ctx, id, "opponent disconnected"); err != nil {
			s.logger.Error("failed to abandon game on disconnect",
				slog.String("game_id", string(id)),
				slog.String("error", err.Error()),
			)
		}
	}
}

// TrackedCount returns how many nicknames currently hold a connection
func (s *Service) TrackedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byNickname)
}

// Interface for dependency injection
type ServiceInterface interface {
	Register(connID ConnectionID, nickname model.Nickname)
	Touch(nickname model.Nickname)
	LastActivity(nickname model.Nickname) (time.Time, bool)
	Nickname(connID ConnectionID) (model.Nickname, bool)
	Unregister(ctx context.Context, connID ConnectionID)
	TrackedCount() int
}

var _ ServiceInterface = (*Service)(nil)
