package storage

import (
	"sort"

	"github.com/hferris/tictactoe-go/internal/model"
)

// SortByRank orders players by total score, then wins, descending.
// Nickname breaks remaining ties so the order is stable.
func SortByRank(players []*model.PlayerStats) {
	sort.Slice(players, func(i, j int) bool {
		if players[i].TotalScore != players[j].TotalScore {
			return players[i].TotalScore > players[j].TotalScore
		}
		if players[i].Wins != players[j].Wins {
			return players[i].Wins > players[j].Wins
		}
		return players[i].Nickname < players[j].Nickname
	})
}
