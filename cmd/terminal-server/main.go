// Package main is the entry point for the Terminales Gemelas simulation server.
// It only handles dependency injection, the run registry and HTTP routing.
// NO simulation logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/domain/terminal"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/engine"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/events"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/export"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/infra/storage"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/ledger"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/network"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/platform/logger"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/platform/metrics"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/scenario"
)

// ArchivePersisterAdapter translates session events to archive rows.
type ArchivePersisterAdapter struct {
	archive storage.Archive
}

func (a *ArchivePersisterAdapter) Append(event events.SimEvent) error {
	payloadBytes, _ := json.Marshal(event.Payload)
	row := storage.EventRow{
		ID:        event.ID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		RunID:     event.RunID,
		Round:     event.Round,
		Payload:   string(payloadBytes),
	}
	err := a.archive.AppendEvent(context.Background(), row)
	metrics.Get().RecordArchiveWrite(err)
	return err
}

// managedRun serializes access to one engine handle. The engine holds no
// locks; the hosting layer owns that contract.
type managedRun struct {
	mu  sync.Mutex
	run *engine.Run
}

// registry tracks every live run handle of the session.
type registry struct {
	mu   sync.RWMutex
	runs map[string]*managedRun
}

func newRegistry() *registry {
	return &registry{runs: make(map[string]*managedRun)}
}

func (r *registry) add(run *engine.Run) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.runs[id] = &managedRun{run: run}
	r.mu.Unlock()
	return id
}

func (r *registry) get(id string) (*managedRun, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mr, ok := r.runs[id]
	return mr, ok
}

// runRequest is the JSON surface for creating or resetting a run.
type runRequest struct {
	InitialVolumeA int64            `json:"initial_volume_a"`
	InitialVolumeB int64            `json:"initial_volume_b"`
	Rounds         int              `json:"rounds"`
	StrategyA      string           `json:"strategy_a"`
	StrategyB      string           `json:"strategy_b"`
	MaxCapacityA   int64            `json:"max_capacity_a,omitempty"`
	MaxCapacityB   int64            `json:"max_capacity_b,omitempty"`
	Modifiers      engine.Modifiers `json:"modifiers"`
	Scenario       string           `json:"scenario,omitempty"`
	Seed           uint64           `json:"seed,omitempty"` // 0 = crypto source
}

func buildConfig(req runRequest, lib *scenario.Library) (engine.Config, error) {
	stratA, err := terminal.ParseStrategy(req.StrategyA)
	if err != nil {
		return engine.Config{}, err
	}
	stratB, err := terminal.ParseStrategy(req.StrategyB)
	if err != nil {
		return engine.Config{}, err
	}
	cfg := engine.Config{
		InitialVolumeA: req.InitialVolumeA,
		InitialVolumeB: req.InitialVolumeB,
		Rounds:         req.Rounds,
		StrategyA:      stratA,
		StrategyB:      stratB,
		MaxCapacityA:   req.MaxCapacityA,
		MaxCapacityB:   req.MaxCapacityB,
		Modifiers:      req.Modifiers,
	}
	if req.Scenario != "" {
		s, ok := lib.Get(req.Scenario)
		if !ok {
			return engine.Config{}, errors.New("unknown scenario: " + req.Scenario)
		}
		cfg = s.Apply(cfg)
	}
	return cfg, nil
}

// writeEngineError maps the engine taxonomy to HTTP statuses: RunComplete is
// benign (409), config/strategy failures block the run (400).
func writeEngineError(w http.ResponseWriter, err error) {
	metrics.Get().RecordRunError()
	status := http.StatusBadRequest
	if errors.Is(err, engine.ErrRunComplete) {
		status = http.StatusConflict
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dbPath := flag.String("db", "", "optional SQLite archive path (empty = in-memory session only)")
	scenarioDir := flag.String("scenarios", "", "optional directory of YAML scenario files")
	flag.Parse()

	log.Println("[TERMINAL-SERVER] Initializing 'Terminales Gemelas' simulation server...")

	appLogger := logger.NewLogger()

	var persister events.EventPersister
	var archive storage.Archive
	if *dbPath != "" {
		appLogger.Info("Initializing SQLite session archive at " + *dbPath + "...")
		db, err := storage.InitSQLite(*dbPath)
		if err != nil {
			appLogger.Error("Failed to initialize SQLite: " + err.Error())
			os.Exit(1)
		}
		sqliteArchive := storage.NewSQLiteArchive(db)
		archive = sqliteArchive
		persister = &ArchivePersisterAdapter{archive: sqliteArchive}
	}

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(persister)

	appLogger.Info("Loading scenario library...")
	lib := scenario.NewLibrary(*scenarioDir)
	if err := lib.LoadDir(); err != nil {
		appLogger.Error("Failed to load scenarios: " + err.Error())
		os.Exit(1)
	}

	sessionLedger := ledger.New()
	runs := newRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(appLogger)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	// finishRun appends the ledger entry and archives the run once complete.
	finishRun := func(id string, run *engine.Run) {
		summary := run.Summary()
		entry := ledger.Entry{RunID: id, FinishedAt: time.Now(), Summary: summary}
		sessionLedger.Append(entry)
		metrics.Get().RecordRunCompleted()

		eventLog.Append(events.SimEvent{
			Type:    events.EventTypeRunCompleted,
			RunID:   id,
			Round:   summary.RoundsPlayed,
			Payload: summary,
		})
		eventLog.Append(events.SimEvent{
			Type:    events.EventTypeLedgerAppended,
			RunID:   id,
			Payload: entry,
		})

		if archive != nil {
			cfg := run.Config()
			rows := make([]storage.RoundRow, 0, summary.RoundsPlayed)
			for _, rec := range run.History() {
				rows = append(rows, storage.RoundRow{
					RunID: id, Round: rec.Round,
					MoveA: rec.MoveA.String(), MoveB: rec.MoveB.String(),
					RawGainA: rec.RawGainA, RawGainB: rec.RawGainB,
					NetGainA: rec.NetGainA, NetGainB: rec.NetGainB,
					SpilloverToB: rec.SpilloverToB,
					VolumeA:      rec.VolumeAAfter, VolumeB: rec.VolumeBAfter,
				})
			}
			err := archive.SaveRun(ctx, storage.RunSummary{
				RunID:     id,
				StrategyA: summary.StrategyA.String(), StrategyB: summary.StrategyB.String(),
				Rounds:   summary.RoundsPlayed,
				InitialA: cfg.InitialVolumeA, InitialB: cfg.InitialVolumeB,
				FinalA:   summary.FinalVolumeA, FinalB: summary.FinalVolumeB,
				TotalGain: summary.TotalGain, FinishedAt: time.Now(),
			}, rows)
			metrics.Get().RecordArchiveWrite(err)
			if err != nil {
				appLogger.Error("Failed to archive run " + id + ": " + err.Error())
			}
		}

		appLogger.Event("RUN_COMPLETED", id, summary.StrategyA.String()+" vs "+summary.StrategyB.String())
	}

	http.HandleFunc("POST /api/runs", func(w http.ResponseWriter, r *http.Request) {
		var req runRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		cfg, err := buildConfig(req, lib)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		var rng engine.RandomSource
		if req.Seed != 0 {
			rng = engine.NewSeededRNG(req.Seed)
		}
		run, err := engine.NewRun(cfg, rng)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		id := runs.add(run)
		metrics.Get().RecordRunStarted()
		eventLog.Append(events.SimEvent{Type: events.EventTypeRunStarted, RunID: id, Payload: cfg})
		appLogger.Event("RUN_STARTED", id, cfg.StrategyA.String()+" vs "+cfg.StrategyB.String())
		writeJSON(w, map[string]string{"run_id": id})
	})

	http.HandleFunc("POST /api/runs/{id}/advance", func(w http.ResponseWriter, r *http.Request) {
		mr, ok := runs.get(r.PathValue("id"))
		if !ok {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		mr.mu.Lock()
		started := time.Now()
		record, err := mr.run.Advance()
		complete := mr.run.IsComplete()
		mr.mu.Unlock()
		if err != nil {
			writeEngineError(w, err)
			return
		}
		metrics.Get().RecordRound(time.Since(started))
		eventLog.Append(events.SimEvent{
			Type:    events.EventTypeRoundCompleted,
			RunID:   r.PathValue("id"),
			Round:   record.Round,
			Payload: record,
		})
		if complete {
			mr.mu.Lock()
			finishRun(r.PathValue("id"), mr.run)
			mr.mu.Unlock()
		}
		writeJSON(w, record)
	})

	http.HandleFunc("POST /api/runs/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		mr, ok := runs.get(id)
		if !ok {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		mr.mu.Lock()
		defer mr.mu.Unlock()

		for !mr.run.IsComplete() {
			started := time.Now()
			record, err := mr.run.Advance()
			if err != nil {
				writeEngineError(w, err)
				return
			}
			metrics.Get().RecordRound(time.Since(started))
			eventLog.Append(events.SimEvent{
				Type:    events.EventTypeRoundCompleted,
				RunID:   id,
				Round:   record.Round,
				Payload: record,
			})
		}
		finishRun(id, mr.run)
		writeJSON(w, map[string]interface{}{
			"history": mr.run.History(),
			"summary": mr.run.Summary(),
		})
	})

	http.HandleFunc("POST /api/runs/{id}/strategies", func(w http.ResponseWriter, r *http.Request) {
		mr, ok := runs.get(r.PathValue("id"))
		if !ok {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		var req struct {
			StrategyA string `json:"strategy_a"`
			StrategyB string `json:"strategy_b"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		stratA, err := terminal.ParseStrategy(req.StrategyA)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		stratB, err := terminal.ParseStrategy(req.StrategyB)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		mr.mu.Lock()
		err = mr.run.SetStrategies(stratA, stratB)
		mr.mu.Unlock()
		if err != nil {
			writeEngineError(w, err)
			return
		}
		eventLog.Append(events.SimEvent{
			Type:    events.EventTypeStrategiesChanged,
			RunID:   r.PathValue("id"),
			Payload: map[string]string{"strategy_a": stratA.String(), "strategy_b": stratB.String()},
		})
		writeJSON(w, map[string]string{"status": "ok"})
	})

	http.HandleFunc("POST /api/runs/{id}/reset", func(w http.ResponseWriter, r *http.Request) {
		mr, ok := runs.get(r.PathValue("id"))
		if !ok {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		var req runRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		cfg, err := buildConfig(req, lib)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		mr.mu.Lock()
		err = mr.run.Reset(cfg)
		mr.mu.Unlock()
		if err != nil {
			writeEngineError(w, err)
			return
		}
		metrics.Get().RecordRunStarted()
		eventLog.Append(events.SimEvent{Type: events.EventTypeRunReset, RunID: r.PathValue("id"), Payload: cfg})
		writeJSON(w, map[string]string{"status": "ok"})
	})

	http.HandleFunc("GET /api/runs/{id}/history", func(w http.ResponseWriter, r *http.Request) {
		mr, ok := runs.get(r.PathValue("id"))
		if !ok {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		mr.mu.Lock()
		history := mr.run.History()
		volumeA, volumeB := mr.run.Volumes()
		complete := mr.run.IsComplete()
		mr.mu.Unlock()

		if r.URL.Query().Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", "attachment; filename=history.csv")
			if err := export.WriteHistoryCSV(w, history); err != nil {
				appLogger.Error("Failed to export history CSV: " + err.Error())
			}
			return
		}
		writeJSON(w, map[string]interface{}{
			"history":  history,
			"volume_a": volumeA,
			"volume_b": volumeB,
			"complete": complete,
		})
	})

	http.HandleFunc("GET /api/ledger", func(w http.ResponseWriter, r *http.Request) {
		entries := sessionLedger.Entries()
		if r.URL.Query().Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", "attachment; filename=comparison.csv")
			if err := export.WriteLedgerCSV(w, entries); err != nil {
				appLogger.Error("Failed to export ledger CSV: " + err.Error())
			}
			return
		}
		writeJSON(w, entries)
	})

	http.HandleFunc("DELETE /api/ledger", func(w http.ResponseWriter, r *http.Request) {
		sessionLedger.Clear()
		eventLog.Append(events.SimEvent{Type: events.EventTypeLedgerCleared})
		writeJSON(w, map[string]string{"status": "ok"})
	})

	http.HandleFunc("POST /api/reflections", func(w http.ResponseWriter, r *http.Request) {
		var doc export.ReflectionDoc
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if doc.SubmittedAt.IsZero() {
			doc.SubmittedAt = time.Now()
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", "attachment; filename=reflections.json")
		if err := export.WriteReflections(w, doc); err != nil {
			appLogger.Error("Failed to export reflections: " + err.Error())
		}
	})

	http.HandleFunc("GET /api/scenarios", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, lib.List())
	})

	http.HandleFunc("GET /api/strategies", func(w http.ResponseWriter, r *http.Request) {
		names := make([]string, 0, 5)
		for _, s := range terminal.Strategies() {
			names = append(names, s.String())
		}
		writeJSON(w, names)
	})

	replayHandler := network.NewReplayHandler(eventLog, appLogger)
	http.Handle("GET /api/replay", replayHandler)

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		network.ServeWs(hub, w, r)
	})

	http.HandleFunc("GET /metrics", metrics.Handler())
	http.HandleFunc("GET /metrics/prometheus", metrics.PrometheusHandler())

	go func() {
		log.Printf("[TERMINAL-SERVER] HTTP API & WS Server listening on %s", *addr)
		if err := http.ListenAndServe(*addr, nil); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[TERMINAL-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[TERMINAL-SERVER] Shutting down...")
}
