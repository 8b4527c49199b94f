// Session replay endpoint: JSON export of the full event stream, so a class
// can reconstruct exactly what happened, round by round, after the fact.
package network

import (
	"encoding/json"
	"net/http"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/events"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/platform/logger"
)

// ReplayHandler serves the session event log.
type ReplayHandler struct {
	eventLog *events.EventLog
	logger   *logger.Logger
}

// NewReplayHandler creates a new replay handler.
func NewReplayHandler(el *events.EventLog, log *logger.Logger) *ReplayHandler {
	return &ReplayHandler{
		eventLog: el,
		logger:   log,
	}
}

// ServeHTTP returns the event stream, optionally filtered with ?run_id=.
func (h *ReplayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var stream []events.SimEvent
	if runID := r.URL.Query().Get("run_id"); runID != "" {
		stream = h.eventLog.GetByRun(runID)
	} else {
		stream = h.eventLog.Replay()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"count":  len(stream),
		"events": stream,
	}); err != nil {
		h.logger.Error("Failed to encode replay response: " + err.Error())
	}
}
