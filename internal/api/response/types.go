package response

import (
	"time"

	"github.com/hferris/tictactoe-go/internal/model"
	"github.com/hferris/tictactoe-go/internal/services/matchmaking"
)

// Player represents a player's record in API responses
type Player struct {
	Nickname   string    `json:"nickname"`
	Wins       int       `json:"wins"`
	Losses     int       `json:"losses"`
	Draws      int       `json:"draws"`
	TotalScore int       `json:"total_score"`
	CreatedAt  time.Time `json:"created_at"`
	LastPlayed time.Time `json:"last_played"`
}

// PlayerFromModel converts a model.PlayerStats to a response Player
func PlayerFromModel(p *model.PlayerStats) Player {
	return Player{
		Nickname:   string(p.Nickname),
		Wins:       p.Wins,
		Losses:     p.Losses,
		Draws:      p.Draws,
		TotalScore: p.TotalScore,
		CreatedAt:  p.CreatedAt,
		LastPlayed: p.LastPlayed,
	}
}

// Leaderboard is the response for the leaderboard endpoint
type Leaderboard struct {
	Players []Player `json:"players"`
}

// LeaderboardFromModel converts a ranked player list
func LeaderboardFromModel(players []*model.PlayerStats) Leaderboard {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = PlayerFromModel(p)
	}
	return Leaderboard{Players: out}
}

// ServerStats is the response for the stats endpoint
type ServerStats struct {
	ActiveGames    int `json:"active_games"`
	WaitingPlayers int `json:"waiting_players"`
	Connections    int `json:"connections"`
}

// QueueEntry represents a waiting player in admin responses
type QueueEntry struct {
	Nickname   string    `json:"nickname"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Waited     string    `json:"waited"`
}

// QueueDetails is the response for the admin queue endpoint
type QueueDetails struct {
	Depth   int          `json:"depth"`
	Entries []QueueEntry `json:"entries"`
}

// QueueDetailsFromEntries converts queue entries to an admin response
func QueueDetailsFromEntries(entries []matchmaking.WaitingEntry, now time.Time) QueueDetails {
	out := make([]QueueEntry, len(entries))
	for i, e := range entries {
		out[i] = QueueEntry{
			Nickname:   string(e.Nickname),
			EnqueuedAt: e.EnqueuedAt,
			Waited:     now.Sub(e.EnqueuedAt).Truncate(time.Millisecond).String(),
		}
	}
	return QueueDetails{Depth: len(entries), Entries: out}
}

// QueueCleared is the response after clearing the queue
type QueueCleared struct {
	Removed int `json:"removed"`
}
