package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hferris/tictactoe-go/internal/api/response"
	"github.com/hferris/tictactoe-go/internal/model"
	"github.com/hferris/tictactoe-go/internal/services/stats"
)

// DefaultLeaderboardLimit caps how many players a leaderboard request
// returns when no limit is given
const DefaultLeaderboardLimit = 10

// PlayerHandler handles player record endpoints
type PlayerHandler struct {
	stats stats.ServiceInterface
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(stats stats.ServiceInterface) *PlayerHandler {
	return &PlayerHandler{
		stats: stats,
	}
}

// Leaderboard handles GET /api/leaderboard
func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	players, err := h.stats.Leaderboard(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(players))
}

// Get handles GET /api/player/{nickname}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	nickname := model.Nickname(mux.Vars(r)["nickname"])

	player, err := h.stats.Get(r.Context(), nickname)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}
