package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case ServerStats:
		o.printServerStats(v)
	case QueueDetails:
		o.printQueueDetails(v)
	case QueueCleared:
		fmt.Printf("Removed %d entries from the queue\n", v.Removed)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	Nickname   string    `json:"nickname"`
	Wins       int       `json:"wins"`
	Losses     int       `json:"losses"`
	Draws      int       `json:"draws"`
	TotalScore int       `json:"total_score"`
	CreatedAt  time.Time `json:"created_at"`
	LastPlayed time.Time `json:"last_played"`
}

// Leaderboard response type
type Leaderboard struct {
	Players []Player `json:"players"`
}

// ServerStats response type
type ServerStats struct {
	ActiveGames    int `json:"active_games"`
	WaitingPlayers int `json:"waiting_players"`
	Connections    int `json:"connections"`
}

// QueueEntry response type
type QueueEntry struct {
	Nickname   string    `json:"nickname"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Waited     string    `json:"waited"`
}

// QueueDetails response type
type QueueDetails struct {
	Depth   int          `json:"depth"`
	Entries []QueueEntry `json:"entries"`
}

// QueueCleared response type
type QueueCleared struct {
	Removed int `json:"removed"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s\n", p.Nickname)
	fmt.Printf("Record: %dW / %dL / %dD\n", p.Wins, p.Losses, p.Draws)
	fmt.Printf("Score: %d\n", p.TotalScore)
	if !p.LastPlayed.IsZero() {
		fmt.Printf("Last Played: %s\n", p.LastPlayed.Format(time.RFC3339))
	}
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Players) == 0 {
		fmt.Println("No players yet")
		return
	}
	fmt.Printf("%-4s %-20s %6s %6s %6s %6s %8s\n", "#", "Player", "Wins", "Losses", "Draws", "Games", "Score")
	for i, p := range l.Players {
		games := p.Wins + p.Losses + p.Draws
		fmt.Printf("%-4d %-20s %6d %6d %6d %6d %8d\n", i+1, p.Nickname, p.Wins, p.Losses, p.Draws, games, p.TotalScore)
	}
}

func (o *Output) printServerStats(s ServerStats) {
	fmt.Printf("Active Games: %d\n", s.ActiveGames)
	fmt.Printf("Waiting Players: %d\n", s.WaitingPlayers)
	fmt.Printf("Connections: %d\n", s.Connections)
}

func (o *Output) printQueueDetails(q QueueDetails) {
	fmt.Printf("Queue Depth: %d\n", q.Depth)
	for _, e := range q.Entries {
		fmt.Printf("  - %s (waiting %s)\n", e.Nickname, e.Waited)
	}
}
