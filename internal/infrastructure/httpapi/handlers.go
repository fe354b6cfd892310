package httpapi

import (
	"encoding/json"
	"net/http"

	"stockpulse/internal/state"
)

// StateHandler serves read-only views of the pipeline state.
type StateHandler struct {
	state *state.State
}

// NewStateHandler creates a handler over the shared state.
func NewStateHandler(pipelineState *state.State) *StateHandler {
	return &StateHandler{state: pipelineState}
}

// GetHealth reports liveness.
func (h *StateHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetAnalyses returns every stored analysis, newest first.
func (h *StateHandler) GetAnalyses(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.state.Store.All())
}

// GetCounts returns processed/stored totals.
func (h *StateHandler) GetCounts(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.state.Counts())
}

// GetFrequencies returns the symbol/topic/company count tables.
func (h *StateHandler) GetFrequencies(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.state.Frequencies.Snapshot())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
