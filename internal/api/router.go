package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hferris/tictactoe-go/internal/api/handler"
	apimiddleware "github.com/hferris/tictactoe-go/internal/api/middleware"
	"github.com/hferris/tictactoe-go/internal/dependencies/clock"
	"github.com/hferris/tictactoe-go/internal/metrics"
	"github.com/hferris/tictactoe-go/internal/middleware"
	"github.com/hferris/tictactoe-go/internal/services/game"
	"github.com/hferris/tictactoe-go/internal/services/matchmaking"
	"github.com/hferris/tictactoe-go/internal/services/stats"
	"github.com/hferris/tictactoe-go/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	Clock        clock.Clock
	StatsService stats.ServiceInterface
	Matchmaking  matchmaking.ServiceInterface
	Directory    game.DirectoryInterface
	Hub          *ws.Hub
	WSHandler    *ws.Handler
	Gatherer     prometheus.Gatherer
	RateLimit    middleware.RateLimitConfig
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.StatsService)
	statsHandler := handler.NewStatsHandler(cfg.Directory, cfg.Matchmaking, cfg.Hub)
	adminHandler := handler.NewAdminHandler(cfg.Matchmaking, cfg.Clock)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)
	rateLimitMiddleware := middleware.RateLimit(cfg.RateLimit)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	api.Use(rateLimitMiddleware)

	api.HandleFunc("/leaderboard", playerHandler.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/player/{nickname}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/stats", statsHandler.Get).Methods(http.MethodGet)

	// Queue administration
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/queue/details", adminHandler.QueueDetails).Methods(http.MethodGet)
	admin.HandleFunc("/queue/clear", adminHandler.ClearQueue).Methods(http.MethodDelete)
	admin.HandleFunc("/queue/remove/{nickname}", adminHandler.RemoveFromQueue).Methods(http.MethodDelete)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Game connections, outside the rate-limited API surface
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		cfg.Hub.ServeWS(w, req, cfg.WSHandler)
	})

	r.Handle("/metrics", metrics.Handler(cfg.Gatherer)).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
