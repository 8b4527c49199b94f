// Package metrics provides observability for the simulation server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Run metrics
	RunsStarted    int64
	RunsCompleted  int64
	RunErrors      int64
	RoundsPlayed   int64
	RoundLatSum    int64 // nanoseconds
	RoundLatMax    int64
	LastRoundTime  time.Time

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesOut       int64
	WSErrors            int64

	// Archive metrics
	ArchiveWrites int64
	ArchiveErrors int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordRunStarted counts a new or reset run.
func (c *Collector) RecordRunStarted() {
	atomic.AddInt64(&c.RunsStarted, 1)
}

// RecordRunCompleted counts a run reaching its final round.
func (c *Collector) RecordRunCompleted() {
	atomic.AddInt64(&c.RunsCompleted, 1)
}

// RecordRunError counts a rejected operation (invalid config, over-advance).
func (c *Collector) RecordRunError() {
	atomic.AddInt64(&c.RunErrors, 1)
}

// RecordRound records one resolved round and its latency.
func (c *Collector) RecordRound(latency time.Duration) {
	atomic.AddInt64(&c.RoundsPlayed, 1)
	atomic.AddInt64(&c.RoundLatSum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.RoundLatMax) {
		atomic.StoreInt64(&c.RoundLatMax, int64(latency))
	}

	c.mu.Lock()
	c.LastRoundTime = time.Now()
	c.mu.Unlock()
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records an outbound broadcast message.
func (c *Collector) RecordWSMessage() {
	atomic.AddInt64(&c.WSMessagesOut, 1)
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// RecordArchiveWrite records an archive write and its outcome.
func (c *Collector) RecordArchiveWrite(err error) {
	atomic.AddInt64(&c.ArchiveWrites, 1)
	if err != nil {
		atomic.AddInt64(&c.ArchiveErrors, 1)
	}
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rounds := atomic.LoadInt64(&c.RoundsPlayed)

	var roundAvg float64
	if rounds > 0 {
		roundAvg = float64(atomic.LoadInt64(&c.RoundLatSum)) / float64(rounds) / 1e6 // ms
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"runs": map[string]interface{}{
			"started":   atomic.LoadInt64(&c.RunsStarted),
			"completed": atomic.LoadInt64(&c.RunsCompleted),
			"errors":    atomic.LoadInt64(&c.RunErrors),
		},

		"rounds": map[string]interface{}{
			"played":         rounds,
			"avg_latency_ms": roundAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.RoundLatMax)) / 1e6,
			"last_round":     c.LastRoundTime.Format(time.RFC3339),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},

		"archive": map[string]interface{}{
			"writes": atomic.LoadInt64(&c.ArchiveWrites),
			"errors": atomic.LoadInt64(&c.ArchiveErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP terminal_runs_started Total runs initialized\n")
		fmt.Fprintf(w, "# TYPE terminal_runs_started counter\n")
		fmt.Fprintf(w, "terminal_runs_started %d\n\n", atomic.LoadInt64(&c.RunsStarted))

		fmt.Fprintf(w, "# HELP terminal_runs_completed Total runs played to the final round\n")
		fmt.Fprintf(w, "# TYPE terminal_runs_completed counter\n")
		fmt.Fprintf(w, "terminal_runs_completed %d\n\n", atomic.LoadInt64(&c.RunsCompleted))

		fmt.Fprintf(w, "# HELP terminal_run_errors Total rejected run operations\n")
		fmt.Fprintf(w, "# TYPE terminal_run_errors counter\n")
		fmt.Fprintf(w, "terminal_run_errors %d\n\n", atomic.LoadInt64(&c.RunErrors))

		fmt.Fprintf(w, "# HELP terminal_rounds_played Total rounds resolved\n")
		fmt.Fprintf(w, "# TYPE terminal_rounds_played counter\n")
		fmt.Fprintf(w, "terminal_rounds_played %d\n\n", atomic.LoadInt64(&c.RoundsPlayed))

		fmt.Fprintf(w, "# HELP terminal_round_latency_max_ms Maximum round latency\n")
		fmt.Fprintf(w, "# TYPE terminal_round_latency_max_ms gauge\n")
		fmt.Fprintf(w, "terminal_round_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.RoundLatMax))/1e6)

		fmt.Fprintf(w, "# HELP terminal_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE terminal_ws_connections gauge\n")
		fmt.Fprintf(w, "terminal_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP terminal_ws_messages_out Total broadcast messages\n")
		fmt.Fprintf(w, "# TYPE terminal_ws_messages_out counter\n")
		fmt.Fprintf(w, "terminal_ws_messages_out %d\n\n", atomic.LoadInt64(&c.WSMessagesOut))

		fmt.Fprintf(w, "# HELP terminal_archive_writes Total archive writes\n")
		fmt.Fprintf(w, "# TYPE terminal_archive_writes counter\n")
		fmt.Fprintf(w, "terminal_archive_writes %d\n", atomic.LoadInt64(&c.ArchiveWrites))

		fmt.Fprintf(w, "# HELP terminal_archive_errors Total archive write errors\n")
		fmt.Fprintf(w, "# TYPE terminal_archive_errors counter\n")
		fmt.Fprintf(w, "terminal_archive_errors %d\n", atomic.LoadInt64(&c.ArchiveErrors))
	}
}
