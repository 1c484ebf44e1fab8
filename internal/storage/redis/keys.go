package redis

import (
	"fmt"

	"github.com/hferris/tictactoe-go/internal/model"
)

// Key prefix for all player-stats data
const keyPrefix = "ttt"

// playerKey returns the Redis key for a player's stats record
func playerKey(nickname model.Nickname) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, nickname)
}

// playersIndexKey returns the Redis key for the SET of all known nicknames
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}
