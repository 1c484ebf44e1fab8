// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics for the game server
type Collector struct {
	gamesStarted  prometheus.Counter
	gamesFinished *prometheus.CounterVec
	moves         *prometheus.CounterVec
	connections   prometheus.Gauge
	queueDepth    prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics with the
// given registry
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ttt_games_started_total",
			Help: "Number of games created by matchmaking",
		}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttt_games_finished_total",
			Help: "Number of games reaching a terminal state, by outcome",
		}, []string{"outcome"}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttt_moves_total",
			Help: "Number of move attempts, by result",
		}, []string{"result"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ttt_connections_active",
			Help: "Number of open websocket connections",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ttt_matchmaking_queue_depth",
			Help: "Number of players currently waiting for an opponent",
		}),
	}

	reg.MustRegister(
		c.gamesStarted,
		c.gamesFinished,
		c.moves,
		c.connections,
		c.queueDepth,
	)

	return c
}

// RecordGameStarted counts a successful pairing
func (c *Collector) RecordGameStarted() {
	c.gamesStarted.Inc()
}

// RecordGameFinished counts a terminal transition ("win", "draw", "abandoned")
func (c *Collector) RecordGameFinished(outcome string) {
	c.gamesFinished.WithLabelValues(outcome).Inc()
}

// RecordMove counts a move attempt ("accepted" or "rejected")
func (c *Collector) RecordMove(result string) {
	c.moves.WithLabelValues(result).Inc()
}

// ConnectionOpened increments the active connection gauge
func (c *Collector) ConnectionOpened() {
	c.connections.Inc()
}

// ConnectionClosed decrements the active connection gauge
func (c *Collector) ConnectionClosed() {
	c.connections.Dec()
}

// SetQueueDepth records the current matchmaking queue length
func (c *Collector) SetQueueDepth(n int) {
	c.queueDepth.Set(float64(n))
}

// Handler returns the HTTP handler for Prometheus scrapes
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
