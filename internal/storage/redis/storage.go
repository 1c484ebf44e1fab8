package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hferris/tictactoe-go/internal/model"
	"github.com/hferris/tictactoe-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SavePlayer(ctx context.Context, stats *model.PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	// Pipeline the record write with the index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(stats.Nickname), data, 0)
	pipe.SAdd(ctx, playersIndexKey(), string(stats.Nickname))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, nickname model.Nickname) (*model.PlayerStats, error) {
	data, err := s.client.Get(ctx, playerKey(nickname)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var stats model.PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Storage) ListTopPlayers(ctx context.Context, limit int) ([]*model.PlayerStats, error) {
	nicknames, err := s.client.SMembers(ctx, playersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.PlayerStats, 0, len(nicknames))
	for _, nickname := range nicknames {
		stats, err := s.GetPlayer(ctx, model.Nickname(nickname))
		if err != nil {
			if errors.Is(err, model.ErrPlayerNotFound) {
				// Index entry outlived the record; skip it
				continue
			}
			return nil, err
		}
		players = append(players, stats)
	}

	storage.SortByRank(players)

	if limit > 0 && len(players) > limit {
		players = players[:limit]
	}
	return players, nil
}
