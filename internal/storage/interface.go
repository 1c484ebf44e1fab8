package storage

import (
	"context"

	"github.com/hferris/tictactoe-go/internal/model"
)

// Storage defines the interface for player-stats persistence. In-flight
// games and queue entries are deliberately not persisted; they are
// acceptable loss on crash.
type Storage interface {
	SavePlayer(ctx context.Context, stats *model.PlayerStats) error
	GetPlayer(ctx context.Context, nickname model.Nickname) (*model.PlayerStats, error)
	ListTopPlayers(ctx context.Context, limit int) ([]*model.PlayerStats, error)
}
