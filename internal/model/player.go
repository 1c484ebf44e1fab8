package model

import "time"

// Nickname is the display name a player chooses; it is the only identity
// used throughout the core.
type Nickname string

// Symbol is a player's mark on the board
type Symbol string

const (
	SymbolX Symbol = "X"
	SymbolO Symbol = "O"
)

// Opponent returns the other symbol
func (s Symbol) Opponent() Symbol {
	if s == SymbolX {
		return SymbolO
	}
	return SymbolX
}

// Score awards per game outcome
const (
	WinScore  = 200
	DrawScore = 50
)

// PlayerStats is the persistent win/loss record for a nickname
type PlayerStats struct {
	Nickname   Nickname  `json:"nickname"`
	Wins       int       `json:"wins"`
	Losses     int       `json:"losses"`
	Draws      int       `json:"draws"`
	TotalScore int       `json:"total_score"`
	CreatedAt  time.Time `json:"created_at"`
	LastPlayed time.Time `json:"last_played"`
}

// NewPlayerStats creates a zeroed stats record for a nickname
func NewPlayerStats(nickname Nickname, now time.Time) *PlayerStats {
	return &PlayerStats{
		Nickname:   nickname,
		CreatedAt:  now,
		LastPlayed: now,
	}
}

// AddWin records a win and awards the win score
func (p *PlayerStats) AddWin(now time.Time) {
	p.Wins++
	p.TotalScore += WinScore
	p.LastPlayed = now
}

// AddLoss records a loss (no score awarded)
func (p *PlayerStats) AddLoss(now time.Time) {
	p.Losses++
	p.LastPlayed = now
}

// AddDraw records a draw and awards the draw score
func (p *PlayerStats) AddDraw(now time.Time) {
	p.Draws++
	p.TotalScore += DrawScore
	p.LastPlayed = now
}
