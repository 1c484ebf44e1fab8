package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hferris/tictactoe-go/internal/dependencies/clock"
	"github.com/hferris/tictactoe-go/internal/metrics"
	"github.com/hferris/tictactoe-go/internal/services/game"
	"github.com/hferris/tictactoe-go/internal/services/matchmaking"
	"github.com/hferris/tictactoe-go/internal/services/presence"
	"github.com/hferris/tictactoe-go/internal/services/stats"
	"github.com/hferris/tictactoe-go/internal/services/sweeper"
	"github.com/hferris/tictactoe-go/internal/storage"
	"github.com/hferris/tictactoe-go/internal/storage/memory"
	redisstorage "github.com/hferris/tictactoe-go/internal/storage/redis"
	"github.com/hferris/tictactoe-go/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock    clock.Clock
	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	// Services
	StatsService *stats.Service
	Hub          *ws.Hub
	Broadcaster  *ws.Broadcaster
	Directory    *game.Directory
	Matchmaking  *matchmaking.Service
	Presence     *presence.Service
	Sweeper      *sweeper.Service
	WSHandler    *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// QueueStaleAfter is how long a matchmaking entry may wait (optional)
	QueueStaleAfter time.Duration
	// Windows holds the sweeper's timeout thresholds (optional)
	Windows sweeper.Windows
	// CleanupGrace is how long finished games linger before removal (optional)
	CleanupGrace time.Duration
	// InitialStateDelay is how long after pairing the opening board is
	// pushed (optional, negative means default)
	InitialStateDelay time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()

	return newWithDependencies(store, clk, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, cfg Config, logger *slog.Logger) *App {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	statsService := stats.New(store, clk, logger)

	hub := ws.NewHub(logger, collector)
	broadcaster := ws.NewBroadcaster(hub, statsService, logger)

	directory := game.NewDirectory(statsService, broadcaster, collector, clk, logger, cfg.CleanupGrace)
	matchmakingService := matchmaking.New(directory, clk, logger, collector, cfg.QueueStaleAfter)
	presenceService := presence.New(matchmakingService, directory, clk, logger)
	sweeperService := sweeper.New(matchmakingService, directory, presenceService, clk, logger, cfg.Windows)

	wsHandler := ws.NewHandler(
		hub,
		matchmakingService,
		directory,
		statsService,
		presenceService,
		broadcaster,
		logger,
		cfg.InitialStateDelay,
	)

	return &App{
		Storage:      store,
		Clock:        clk,
		Registry:     registry,
		Metrics:      collector,
		StatsService: statsService,
		Hub:          hub,
		Broadcaster:  broadcaster,
		Directory:    directory,
		Matchmaking:  matchmakingService,
		Presence:     presenceService,
		Sweeper:      sweeperService,
		WSHandler:    wsHandler,
	}
}

// Close releases resources held by the application
func (a *App) Close() error {
	a.Directory.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
