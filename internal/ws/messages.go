package ws

import "github.com/hferris/tictactoe-go/internal/model"

// Client actions
const (
	ActionJoin      = "join"
	ActionCancel    = "cancel"
	ActionMove      = "move"
	ActionHeartbeat = "heartbeat"
	ActionForfeit   = "forfeit"
)

// Matchmaking statuses
const (
	MatchmakingWaiting   = "WAITING"
	MatchmakingStarted   = "STARTED"
	MatchmakingCancelled = "CANCELLED"
)

// Outbound message types
const (
	TypeMatchmaking = "matchmaking"
	TypeGameState   = "game_state"
	TypeError       = "error"
)

// ClientMessage is the envelope every inbound frame carries
type ClientMessage struct {
	Action   string `json:"action"`
	Nickname string `json:"nickname,omitempty"`
	GameID   string `json:"gameId,omitempty"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
}

// MatchmakingStatus tells a client where they stand in the queue
type MatchmakingStatus struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	GameID  string `json:"gameId,omitempty"`
	Message string `json:"message,omitempty"`
}

// PlayerInfo carries a participant's identity and running record
type PlayerInfo struct {
	Nickname   string `json:"nickname"`
	Symbol     string `json:"symbol"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Draws      int    `json:"draws"`
	TotalScore int    `json:"totalScore"`
}

// GameState is the full view of a game pushed to both participants
// after every state change
type GameState struct {
	Type        string      `json:"type"`
	GameID      string      `json:"gameId"`
	Board       [][]string  `json:"board"`
	CurrentTurn string      `json:"currentTurn"`
	Status      string      `json:"status"`
	Winner      string      `json:"winner,omitempty"`
	Message     string      `json:"message,omitempty"`
	PlayerX     *PlayerInfo `json:"playerX,omitempty"`
	PlayerO     *PlayerInfo `json:"playerO,omitempty"`
}

// ErrorMessage reports a rejected action back to the caller only
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newError(message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: message}
}

func gameStateFor(g *model.Game, message string, playerX, playerO *PlayerInfo) GameState {
	return GameState{
		Type:        TypeGameState,
		GameID:      string(g.ID),
		Board:       g.Board.Strings(),
		CurrentTurn: string(g.Turn),
		Status:      string(g.Status),
		Winner:      string(g.Winner),
		Message:     message,
		PlayerX:     playerX,
		PlayerO:     playerO,
	}
}
