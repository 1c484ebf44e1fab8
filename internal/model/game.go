package model

import "time"

// GameID uniquely identifies a game
type GameID string

// Status represents the current phase of a game
type Status string

const (
	StatusWaiting    Status = "WAITING" // Transient: collapses to IN_PROGRESS at creation
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
	StatusAbandoned  Status = "ABANDONED"
)

// Winner identifies the outcome of a finished game
type Winner string

const (
	WinnerNone Winner = ""
	WinnerX    Winner = "X"
	WinnerO    Winner = "O"
	WinnerDraw Winner = "DRAW"
)

// WinnerFor converts a symbol to its winner value
func WinnerFor(s Symbol) Winner {
	if s == SymbolX {
		return WinnerX
	}
	return WinnerO
}

// Game is a single two-player match. Pairing always supplies both
// players, so a game is IN_PROGRESS from creation until it reaches a
// terminal status, after which it never changes.
type Game struct {
	ID         GameID
	PlayerX    Nickname
	PlayerO    Nickname
	Board      Board
	Turn       Symbol
	Status     Status
	Winner     Winner
	CreatedAt  time.Time
	LastMoveAt time.Time
}

// NewGame creates a game between the two players, X to move
func NewGame(id GameID, playerX, playerO Nickname, now time.Time) *Game {
	return &Game{
		ID:         id,
		PlayerX:    playerX,
		PlayerO:    playerO,
		Turn:       SymbolX,
		Status:     StatusInProgress,
		Winner:     WinnerNone,
		CreatedAt:  now,
		LastMoveAt: now,
	}
}

// PlayerSymbol returns the symbol assigned to a nickname, or false if
// the nickname is not a participant
func (g *Game) PlayerSymbol(nickname Nickname) (Symbol, bool) {
	switch nickname {
	case g.PlayerX:
		return SymbolX, true
	case g.PlayerO:
		return SymbolO, true
	}
	return "", false
}

// PlayerFor returns the nickname holding a symbol
func (g *Game) PlayerFor(s Symbol) Nickname {
	if s == SymbolX {
		return g.PlayerX
	}
	return g.PlayerO
}

// Terminal returns true once the game has finished or been abandoned
func (g *Game) Terminal() bool {
	return g.Status == StatusFinished || g.Status == StatusAbandoned
}

// ApplyMove marks a cell for the given symbol. It returns false without
// mutating anything if the position is out of bounds, the cell is
// occupied, it is not that symbol's turn, or the game is not in
// progress. On success the turn flips and termination is evaluated.
func (g *Game) ApplyMove(row, col int, symbol Symbol, now time.Time) bool {
	if g.Status != StatusInProgress {
		return false
	}
	if !g.Board.InBounds(row, col) {
		return false
	}
	if g.Board[row][col] != CellEmpty {
		return false
	}
	if g.Turn != symbol {
		return false
	}

	g.Board[row][col] = CellFor(symbol)
	g.Turn = g.Turn.Opponent()
	g.LastMoveAt = now

	if line, ok := g.Board.Line(); ok {
		g.Winner = WinnerFor(line)
		g.Status = StatusFinished
	} else if g.Board.IsFull() {
		g.Winner = WinnerDraw
		g.Status = StatusFinished
	}

	return true
}

// Forfeit ends the game with the non-forfeiting player as winner.
// Permitted only while in progress.
func (g *Game) Forfeit(forfeiting Symbol, now time.Time) bool {
	if g.Status != StatusInProgress {
		return false
	}
	g.Winner = WinnerFor(forfeiting.Opponent())
	g.Status = StatusFinished
	g.LastMoveAt = now
	return true
}

// Abandon ends the game with no winner. Permitted only while in progress.
func (g *Game) Abandon(now time.Time) bool {
	if g.Status != StatusInProgress {
		return false
	}
	g.Status = StatusAbandoned
	g.LastMoveAt = now
	return true
}
