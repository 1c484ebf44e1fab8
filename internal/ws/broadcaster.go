package ws

import (
	"context"
	"log/slog"

	"github.com/hferris/tictactoe-go/internal/model"
	"github.com/hferris/tictactoe-go/internal/services/game"
	"github.com/hferris/tictactoe-go/internal/services/stats"
)

// Broadcaster pushes game state changes to both participants over
// their websocket connections. Player records are refreshed on every
// push so finished games show the updated win and loss counts.
type Broadcaster struct {
	hub    *Hub
	stats  stats.ServiceInterface
	logger *slog.Logger
}

// NewBroadcaster creates a new broadcaster
func NewBroadcaster(hub *Hub, stats stats.ServiceInterface, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		stats:  stats,
		logger: logger.With(slog.String("component", "broadcaster")),
	}
}

// GameStateChanged sends the current view of the game to both players
func (b *Broadcaster) GameStateChanged(ctx context.Context, g *model.Game, message string) {
	state := gameStateFor(g, message,
		b.playerInfo(ctx, g.PlayerX, model.SymbolX),
		b.playerInfo(ctx, g.PlayerO, model.SymbolO),
	)
	b.hub.SendTo(g.PlayerX, state)
	b.hub.SendTo(g.PlayerO, state)
}

func (b *Broadcaster) playerInfo(ctx context.Context, nickname model.Nickname, symbol model.Symbol) *PlayerInfo {
	info := &PlayerInfo{
		Nickname: string(nickname),
		Symbol:   string(symbol),
	}
	record, err := b.stats.Get(ctx, nickname)
	if err != nil {
		b.logger.Warn("failed to load player record for broadcast",
			slog.String("nickname", string(nickname)),
			slog.String("error", err.Error()),
		)
		return info
	}
	info.Wins = record.Wins
	info.Losses = record.Losses
	info.Draws = record.Draws
	info.TotalScore = record.TotalScore
	return info
}

var _ game.Broadcaster = (*Broadcaster)(nil)
