package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hferris/tictactoe-go/internal/dependencies/clock"
	"github.com/hferris/tictactoe-go/internal/metrics"
	"github.com/hferris/tictactoe-go/internal/model"
)

// DefaultCleanupGrace is how long a terminal game stays visible in the
// directory so the final state broadcast can be delivered
const DefaultCleanupGrace = 5 * time.Second

// StatsRecorder records game outcomes for the participants. Implemented
// by the stats service.
type StatsRecorder interface {
	RecordWin(ctx context.Context, nickname model.Nickname) error
	RecordLoss(ctx context.Context, nickname model.Nickname) error
	RecordDraw(ctx context.Context, nickname model.Nickname) error
}

// Broadcaster delivers game-state updates to the players of a game.
// Implemented by the websocket layer.
type Broadcaster interface {
	GameStateChanged(ctx context.Context, game *model.Game, message string)
}

// entry pairs a live game with its per-game lock. Moves, forfeits,
// abandonment and removal on the same game all serialize on mu; games
// under different entries proceed fully in parallel.
type entry struct {
	mu        sync.Mutex
	game      *model.Game
	finalized bool
	removed   bool
	cleanup   *time.Timer
}

// Directory exclusively owns all live games. Games are created only by
// matchmaking, mutated only under their entry lock, and removed only
// after the cleanup grace delay following a terminal transition.
type Directory struct {
	mu       sync.RWMutex
	games    map[model.GameID]*entry
	byPlayer map[model.Nickname]model.GameID

	recorder    StatsRecorder
	broadcaster Broadcaster
	metrics     *metrics.Collector
	clock       clock.Clock
	logger      *slog.Logger
	grace       time.Duration
}

// NewDirectory creates a new game directory
func NewDirectory(
	recorder StatsRecorder,
	broadcaster Broadcaster,
	metrics *metrics.Collector,
	clock clock.Clock,
	logger *slog.Logger,
	grace time.Duration,
) *Directory {
	if grace <= 0 {
		grace = DefaultCleanupGrace
	}
	return &Directory{
		games:       make(map[model.GameID]*entry),
		byPlayer:    make(map[model.Nickname]model.GameID),
		recorder:    recorder,
		broadcaster: broadcaster,
		metrics:     metrics,
		clock:       clock,
		logger:      logger.With(slog.String("component", "game")),
		grace:       grace,
	}
}

// Create starts a new game between two distinct players, X to the first
func (d *Directory) Create(ctx context.Context, playerX, playerO model.Nickname) (*model.Game, error) {
	if playerX == playerO {
		return nil, model.ErrSamePlayer
	}

	id := model.GameID(uuid.NewString())
	g := model.NewGame(id, playerX, playerO, d.clock.Now())

	d.mu.Lock()
	d.games[id] = &entry{game: g}
	d.byPlayer[playerX] = id
	d.byPlayer[playerO] = id
	d.mu.Unlock()

	d.metrics.RecordGameStarted()
	d.logger.Info("game created",
		slog.String("game_id", string(id)),
		slog.String("player_x", string(playerX)),
		slog.String("player_o", string(playerO)),
	)

	snap := *g
	return &snap, nil
}

// Get returns a snapshot of a game by id
func (d *Directory) Get(id model.GameID) (*model.Game, error) {
	e := d.entry(id)
	if e == nil {
		return nil, model.ErrGameNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, model.ErrGameNotFound
	}
	snap := *e.game
	return &snap, nil
}

// GameFor returns the game id a nickname is currently bound to
func (d *Directory) GameFor(nickname model.Nickname) (model.GameID, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byPlayer[nickname]
	return id, ok
}

// ApplyMove applies a validated move to the game. On success the
// resulting state is broadcast to the game's players; a terminal result
// additionally records stats and schedules removal after the grace
// delay. Move rejections are reported only to the caller.
func (d *Directory) ApplyMove(ctx context.Context, id model.GameID, nickname model.Nickname, row, col int) (*model.Game, error) {
	e := d.entry(id)
	if e == nil {
		return nil, model.ErrGameNotFound
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return nil, model.ErrGameNotFound
	}

	g := e.game
	symbol, ok := g.PlayerSymbol(nickname)
	if !ok {
		e.mu.Unlock()
		d.metrics.RecordMove("rejected")
		return nil, model.ErrNotParticipant
	}
	if g.Terminal() {
		e.mu.Unlock()
		d.metrics.RecordMove("rejected")
		return nil, model.ErrGameFinished
	}
	if !g.ApplyMove(row, col, symbol, d.clock.Now()) {
		e.mu.Unlock()
		d.metrics.RecordMove("rejected")
		return nil, model.ErrInvalidMove
	}

	snap := *g
	finished := g.Status == model.StatusFinished && !e.finalized
	if finished {
		e.finalized = true
	}
	e.mu.Unlock()

	d.metrics.RecordMove("accepted")

	message := "Move successful"
	if finished {
		message = d.finishMessage(&snap)
		d.recordOutcome(ctx, &snap)
		d.scheduleCleanup(e, id)
	}

	d.broadcaster.GameStateChanged(ctx, &snap, message)

	d.logger.Info("move applied",
		slog.String("game_id", string(id)),
		slog.String("nickname", string(nickname)),
		slog.Int("row", row),
		slog.Int("col", col),
		slog.String("status", string(snap.Status)),
	)

	return &snap, nil
}

// Forfeit ends the game with the forfeiting player's opponent as winner
func (d *Directory) Forfeit(ctx context.Context, id model.GameID, nickname model.Nickname) (*model.Game, error) {
	e := d.entry(id)
	if e == nil {
		return nil, model.ErrGameNotFound
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return nil, model.ErrGameNotFound
	}

	g := e.game
	symbol, ok := g.PlayerSymbol(nickname)
	if !ok {
		e.mu.Unlock()
		return nil, model.ErrNotParticipant
	}
	if !g.Forfeit(symbol, d.clock.Now()) {
		e.mu.Unlock()
		return nil, model.ErrGameFinished
	}

	snap := *g
	e.finalized = true
	e.mu.Unlock()

	winner := snap.PlayerFor(symbol.Opponent())
	d.recordOutcome(ctx, &snap)
	d.scheduleCleanup(e, id)
	d.broadcaster.GameStateChanged(ctx, &snap,
		fmt.Sprintf("%s forfeited. %s wins!", nickname, winner))

	d.logger.Info("game forfeited",
		slog.String("game_id", string(id)),
		slog.String("nickname", string(nickname)),
		slog.String("winner", string(winner)),
	)

	return &snap, nil
}

// Abandon forces the game into the abandoned state with no winner.
// Already-terminal games are left untouched. No stats are recorded:
// abandonment is a lifecycle transition, not a rules-based finish.
func (d *Directory) Abandon(ctx context.Context, id model.GameID, reason string) (*model.Game, error) {
	e := d.entry(id)
	if e == nil {
		return nil, model.ErrGameNotFound
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return nil, model.ErrGameNotFound
	}

	g := e.game
	if !g.Abandon(d.clock.Now()) {
		snap := *g
		e.mu.Unlock()
		return &snap, nil
	}

	snap := *g
	e.finalized = true
	e.mu.Unlock()

	d.metrics.RecordGameFinished("abandoned")
	d.scheduleCleanup(e, id)
	d.broadcaster.GameStateChanged(ctx, &snap, reason)

	d.logger.Info("game abandoned",
		slog.String("game_id", string(id)),
		slog.String("reason", reason),
	)

	return &snap, nil
}

// Remove deletes a game from the directory. It serializes with any
// in-flight move or forced termination on the same game, so a move
// never observes a half-removed game.
func (d *Directory) Remove(id model.GameID) {
	e := d.entry(id)
	if e == nil {
		return
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return
	}
	e.removed = true
	if e.cleanup != nil {
		e.cleanup.Stop()
	}
	playerX, playerO := e.game.PlayerX, e.game.PlayerO
	e.mu.Unlock()

	d.mu.Lock()
	delete(d.games, id)
	if d.byPlayer[playerX] == id {
		delete(d.byPlayer, playerX)
	}
	if d.byPlayer[playerO] == id {
		delete(d.byPlayer, playerO)
	}
	remaining := len(d.games)
	d.mu.Unlock()

	d.logger.Info("game removed",
		slog.String("game_id", string(id)),
		slog.Int("active_games", remaining),
	)
}

// ActiveCount returns the number of games currently in the directory
func (d *Directory) ActiveCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.games)
}

// InProgress returns snapshots of all games still in progress
func (d *Directory) InProgress() []*model.Game {
	d.mu.RLock()
	entries := make([]*entry, 0, len(d.games))
	for _, e := range d.games {
		entries = append(entries, e)
	}
	d.mu.RUnlock()

	var games []*model.Game
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed && e.game.Status == model.StatusInProgress {
			snap := *e.game
			games = append(games, &snap)
		}
		e.mu.Unlock()
	}
	return games
}

// Close cancels all pending cleanup timers
func (d *Directory) Close() {
	d.mu.RLock()
	entries := make([]*entry, 0, len(d.games))
	for _, e := range d.games {
		entries = append(entries, e)
	}
	d.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		if e.cleanup != nil {
			e.cleanup.Stop()
		}
		e.mu.Unlock()
	}
}

func (d *Directory) entry(id model.GameID) *entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.games[id]
}

// finishMessage builds the user-facing message for a rules-based finish
func (d *Directory) finishMessage(g *model.Game) string {
	if g.Winner == model.WinnerDraw {
		return "Game ended in a draw!"
	}
	return fmt.Sprintf("%s wins!", g.PlayerFor(model.Symbol(g.Winner)))
}

// recordOutcome records stats exactly once per finished game: one call
// per participant. Recorder failures are logged but never corrupt the
// in-memory state.
func (d *Directory) recordOutcome(ctx context.Context, g *model.Game) {
	if g.Winner == model.WinnerDraw {
		d.metrics.RecordGameFinished("draw")
		if err := d.recorder.RecordDraw(ctx, g.PlayerX); err != nil {
			d.logger.Error("failed to record draw",
				slog.String("nickname", string(g.PlayerX)),
				slog.String("error", err.Error()))
		}
		if err := d.recorder.RecordDraw(ctx, g.PlayerO); err != nil {
			d.logger.Error("failed to record draw",
				slog.String("nickname", string(g.PlayerO)),
				slog.String("error", err.Error()))
		}
		return
	}

	d.metrics.RecordGameFinished("win")
	winner := g.PlayerFor(model.Symbol(g.Winner))
	loser := g.PlayerFor(model.Symbol(g.Winner).Opponent())
	if err := d.recorder.RecordWin(ctx, winner); err != nil {
		d.logger.Error("failed to record win",
			slog.String("nickname", string(winner)),
			slog.String("error", err.Error()))
	}
	if err := d.recorder.RecordLoss(ctx, loser); err != nil {
		d.logger.Error("failed to record loss",
			slog.String("nickname", string(loser)),
			slog.String("error", err.Error()))
	}
}

// scheduleCleanup arms the cancellable removal timer for a terminal
// game. The timer never fires while a lock is held.
func (d *Directory) scheduleCleanup(e *entry, id model.GameID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cleanup != nil || e.removed {
		return
	}
	e.cleanup = time.AfterFunc(d.grace, func() {
		d.Remove(id)
	})
}

// Interface for dependency injection
type DirectoryInterface interface {
	Create(ctx context.Context, playerX, playerO model.Nickname) (*model.Game, error)
	Get(id model.GameID) (*model.Game, error)
	GameFor(nickname model.Nickname) (model.GameID, bool)
	ApplyMove(ctx context.Context, id model.GameID, nickname model.Nickname, row, col int) (*model.Game, error)
	Forfeit(ctx context.Context, id model.GameID, nickname model.Nickname) (*model.Game, error)
	Abandon(ctx context.Context, id model.GameID, reason string) (*model.Game, error)
	Remove(id model.GameID)
	ActiveCount() int
	InProgress() []*model.Game
}

var _ DirectoryInterface = (*Directory)(nil)
