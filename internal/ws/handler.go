package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hferris/tictactoe-go/internal/model"
	"github.com/hferris/tictactoe-go/internal/services/game"
	"github.com/hferris/tictactoe-go/internal/services/matchmaking"
	"github.com/hferris/tictactoe-go/internal/services/presence"
	"github.com/hferris/tictactoe-go/internal/services/stats"
)

// DefaultInitialStateDelay is how long after pairing the opening game
// state is pushed, giving both clients time to process the pairing
// notification first
const DefaultInitialStateDelay = 500 * time.Millisecond

// Handler routes inbound client actions to the services
type Handler struct {
	hub         *Hub
	matchmaking matchmaking.ServiceInterface
	directory   game.DirectoryInterface
	stats       stats.ServiceInterface
	presence    presence.ServiceInterface
	broadcaster *Broadcaster
	logger      *slog.Logger

	initialStateDelay time.Duration
}

// NewHandler creates a new websocket action handler
func NewHandler(
	hub *Hub,
	matchmaking matchmaking.ServiceInterface,
	directory game.DirectoryInterface,
	stats stats.ServiceInterface,
	presence presence.ServiceInterface,
	broadcaster *Broadcaster,
	logger *slog.Logger,
	initialStateDelay time.Duration,
) *Handler {
	if initialStateDelay < 0 {
		initialStateDelay = DefaultInitialStateDelay
	}
	return &Handler{
		hub:               hub,
		matchmaking:       matchmaking,
		directory:         directory,
		stats:             stats,
		presence:          presence,
		broadcaster:       broadcaster,
		logger:            logger.With(slog.String("component", "ws_handler")),
		initialStateDelay: initialStateDelay,
	}
}

// HandleMessage dispatches a single inbound frame
func (h *Handler) HandleMessage(ctx context.Context, client *Client, data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.hub.Send(client, newError("malformed message"))
		return
	}

	switch msg.Action {
	case ActionJoin:
		h.handleJoin(ctx, client, msg)
	case ActionCancel:
		h.handleCancel(client)
	case ActionMove:
		h.handleMove(ctx, client, msg)
	case ActionHeartbeat:
		h.handleHeartbeat(client)
	case ActionForfeit:
		h.handleForfeit(ctx, client, msg)
	default:
		h.hub.Send(client, newError("unknown action: "+msg.Action))
	}
}

// HandleDisconnect tears down everything bound to the connection
func (h *Handler) HandleDisconnect(ctx context.Context, client *Client) {
	h.presence.Unregister(ctx, client.ID())
}

func (h *Handler) handleJoin(ctx context.Context, client *Client, msg ClientMessage) {
	nickname := model.Nickname(strings.TrimSpace(msg.Nickname))
	if nickname == "" {
		h.hub.Send(client, newError("nickname is required"))
		return
	}

	h.hub.Bind(client, nickname)
	h.presence.Register(client.ID(), nickname)

	if _, err := h.stats.CreateOrGet(ctx, nickname); err != nil {
		h.logger.Error("failed to ensure player record",
			slog.String("nickname", string(nickname)),
			slog.String("error", err.Error()),
		)
		h.hub.Send(client, newError("internal error"))
		return
	}

	id, err := h.matchmaking.Join(ctx, nickname)
	if err != nil {
		h.hub.Send(client, newError(err.Error()))
		return
	}

	if id == "" {
		h.hub.Send(client, MatchmakingStatus{
			Type:    TypeMatchmaking,
			Status:  MatchmakingWaiting,
			Message: "Waiting for an opponent",
		})
		return
	}

	g, err := h.directory.Get(id)
	if err != nil {
		h.hub.Send(client, newError("game not found"))
		return
	}

	started := MatchmakingStatus{
		Type:    TypeMatchmaking,
		Status:  MatchmakingStarted,
		GameID:  string(id),
		Message: "Opponent found",
	}
	h.hub.SendTo(g.PlayerX, started)
	h.hub.SendTo(g.PlayerO, started)

	h.pushInitialState(id)
}

// pushInitialState broadcasts the opening board shortly after pairing
func (h *Handler) pushInitialState(id model.GameID) {
	deliver := func() {
		g, err := h.directory.Get(id)
		if err != nil {
			return
		}
		h.broadcaster.GameStateChanged(context.Background(), g, "Game started! X goes first.")
	}
	if h.initialStateDelay == 0 {
		deliver()
		return
	}
	time.AfterFunc(h.initialStateDelay, deliver)
}

func (h *Handler) handleCancel(client *Client) {
	nickname, ok := client.Nickname()
	if !ok {
		h.hub.Send(client, newError("not joined"))
		return
	}
	h.presence.Touch(nickname)
	h.matchmaking.Cancel(nickname)
	h.hub.Send(client, MatchmakingStatus{
		Type:    TypeMatchmaking,
		Status:  MatchmakingCancelled,
		Message: "Left the queue",
	})
}

func (h *Handler) handleMove(ctx context.Context, client *Client, msg ClientMessage) {
	nickname, ok := client.Nickname()
	if !ok {
		h.hub.Send(client, newError("not joined"))
		return
	}
	h.presence.Touch(nickname)

	_, err := h.directory.ApplyMove(ctx, model.GameID(msg.GameID), nickname, msg.Row, msg.Col)
	if err != nil {
		h.hub.Send(client, newError(moveErrorText(err)))
		return
	}
	// state broadcast flows from the directory
}

func (h *Handler) handleHeartbeat(client *Client) {
	if nickname, ok := client.Nickname(); ok {
		h.presence.Touch(nickname)
	}
}

func (h *Handler) handleForfeit(ctx context.Context, client *Client, msg ClientMessage) {
	nickname, ok := client.Nickname()
	if !ok {
		h.hub.Send(client, newError("not joined"))
		return
	}
	h.presence.Touch(nickname)

	if _, err := h.directory.Forfeit(ctx, model.GameID(msg.GameID), nickname); err != nil {
		h.hub.Send(client, newError(moveErrorText(err)))
	}
}

func moveErrorText(err error) string {
	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return "game not found"
	case errors.Is(err, model.ErrNotParticipant):
		return "you are not part of this game"
	case errors.Is(err, model.ErrGameFinished):
		return "game is already over"
	case errors.Is(err, model.ErrInvalidMove):
		return "invalid move"
	default:
		return "internal error"
	}
}
