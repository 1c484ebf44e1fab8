package handler

import (
	"net/http"

	"github.com/hferris/tictactoe-go/internal/api/response"
)

// GameCounter reports how many games are currently live
type GameCounter interface {
	ActiveCount() int
}

// QueueCounter reports the current matchmaking queue depth
type QueueCounter interface {
	WaitingCount() int
}

// ConnectionCounter reports how many websocket clients are connected
type ConnectionCounter interface {
	ClientCount() int
}

// StatsHandler handles the server stats endpoint
type StatsHandler struct {
	games       GameCounter
	queue       QueueCounter
	connections ConnectionCounter
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(games GameCounter, queue QueueCounter, connections ConnectionCounter) *StatsHandler {
	return &StatsHandler{
		games:       games,
		queue:       queue,
		connections: connections,
	}
}

// Get handles GET /api/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.ServerStats{
		ActiveGames:    h.games.ActiveCount(),
		WaitingPlayers: h.queue.WaitingCount(),
		Connections:    h.connections.ClientCount(),
	})
}
