package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hferris/tictactoe-go/internal/api/response"
	"github.com/hferris/tictactoe-go/internal/dependencies/clock"
	"github.com/hferris/tictactoe-go/internal/model"
	"github.com/hferris/tictactoe-go/internal/services/matchmaking"
)

// AdminHandler handles matchmaking queue administration
type AdminHandler struct {
	matchmaking matchmaking.ServiceInterface
	clock       clock.Clock
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(matchmaking matchmaking.ServiceInterface, clock clock.Clock) *AdminHandler {
	return &AdminHandler{
		matchmaking: matchmaking,
		clock:       clock,
	}
}

// QueueDetails handles GET /api/admin/queue/details
func (h *AdminHandler) QueueDetails(w http.ResponseWriter, r *http.Request) {
	entries := h.matchmaking.Snapshot()
	response.JSON(w, http.StatusOK, response.QueueDetailsFromEntries(entries, h.clock.Now()))
}

// ClearQueue handles DELETE /api/admin/queue/clear
func (h *AdminHandler) ClearQueue(w http.ResponseWriter, r *http.Request) {
	removed := h.matchmaking.Clear()
	response.JSON(w, http.StatusOK, response.QueueCleared{Removed: removed})
}

// RemoveFromQueue handles DELETE /api/admin/queue/remove/{nickname}
func (h *AdminHandler) RemoveFromQueue(w http.ResponseWriter, r *http.Request) {
	nickname := model.Nickname(mux.Vars(r)["nickname"])
	h.matchmaking.Cancel(nickname)
	response.NoContent(w)
}
