package memory

import (
	"context"
	"sync"

	"github.com/hferris/tictactoe-go/internal/model"
	"github.com/hferris/tictactoe-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu      sync.RWMutex
	players map[model.Nickname]*model.PlayerStats
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.Nickname]*model.PlayerStats),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SavePlayer(ctx context.Context, stats *model.PlayerStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *stats
	s.players[stats.Nickname] = &cp
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, nickname model.Nickname) (*model.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.players[nickname]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *stats
	return &cp, nil
}

func (s *Storage) ListTopPlayers(ctx context.Context, limit int) ([]*model.PlayerStats, error) {
	s.mu.RLock()
	players := make([]*model.PlayerStats, 0, len(s.players))
	for _, stats := range s.players {
		cp := *stats
		players = append(players, &cp)
	}
	s.mu.RUnlock()

	storage.SortByRank(players)

	if limit > 0 && len(players) > limit {
		players = players[:limit]
	}
	return players, nil
}
