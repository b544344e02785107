// Package handlers provides HTTP handlers for the scoring API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jomolabs/jomo/internal/modules/history"
	"github.com/jomolabs/jomo/internal/modules/scoring/domain"
	"github.com/jomolabs/jomo/internal/modules/scoring/scorers"
)

// Handlers provides HTTP handlers for the scoring module
type Handlers struct {
	engine  *scorers.ScoreEngine
	history *history.Repository // optional, may be nil
	log     zerolog.Logger
}

// NewHandlers creates a new scoring handlers instance.
// The history repository is optional; when present, every score computed for
// a known (project, stock) pair is snapshotted for trend display.
func NewHandlers(engine *scorers.ScoreEngine, historyRepo *history.Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		engine:  engine,
		history: historyRepo,
		log:     log.With().Str("module", "scoring_handlers").Logger(),
	}
}

// ScoreRequest represents a request to score a stock.
//
// AI and Manual are sparse overlays; the resolver merges them with the rubric
// defaults (manual wins, then AI, then default). TargetReturn is accepted at
// the top level because the dashboard keeps it as a project-wide slider; it
// is treated as a manual value.
type ScoreRequest struct {
	ProjectID    string               `json:"project_id,omitempty"`
	Symbol       string               `json:"symbol,omitempty"`
	AI           domain.MetricOverlay `json:"ai_metrics"`
	Manual       domain.MetricOverlay `json:"manual_metrics"`
	Weights      domain.WeightProfile `json:"weights"`
	TargetReturn *float64             `json:"target_return,omitempty"`
}

// ScoreResponse represents the response from scoring
type ScoreResponse struct {
	Score   *domain.Score     `json:"score,omitempty"`
	Metrics *domain.MetricSet `json:"metrics,omitempty"`
	Error   *string           `json:"error,omitempty"`
}

// HandleScore handles POST /api/scoring/score.
// Called by the dashboard on every metric edit or weight-slider change.
func (h *Handlers) HandleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode score request")
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	manual := req.Manual
	if req.TargetReturn != nil {
		manual.TargetReturn = req.TargetReturn
	}

	weights := req.Weights
	if len(weights) == 0 {
		weights = domain.DefaultWeightProfile()
	}

	metricSet := scorers.ResolveMetricSet(req.AI, manual, h.engine.Rubric())

	score, err := h.engine.ComputeScore(metricSet, weights)
	if err != nil {
		// Validation errors identify the offending field; the UI treats them
		// as "cannot score with current inputs" and prompts correction.
		if errors.Is(err, domain.ErrInvalidWeight) || errors.Is(err, domain.ErrInvalidInput) {
			h.writeError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.log.Error().Err(err).Msg("Failed to compute score")
		h.writeError(w, "Failed to compute score", http.StatusInternalServerError)
		return
	}

	if h.history != nil && req.ProjectID != "" && req.Symbol != "" {
		if err := h.history.Record(req.ProjectID, req.Symbol, score); err != nil {
			// Snapshot failures never fail the scoring call
			h.log.Warn().Err(err).Str("project_id", req.ProjectID).Str("symbol", req.Symbol).
				Msg("Failed to record score snapshot")
		}
	}

	h.writeJSON(w, ScoreResponse{Score: score, Metrics: &metricSet})
}

// HandleGetRubric handles GET /api/scoring/rubric.
// Returns the active rubric so the UI can render breakpoint tooltips.
func (h *Handlers) HandleGetRubric(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.engine.Rubric())
}

// HandleGetDefaultWeights handles GET /api/scoring/weights/default
func (h *Handlers) HandleGetDefaultWeights(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{
		"weights": domain.DefaultWeightProfile(),
		"total":   100,
	})
}

// writeJSON writes a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	errMsg := message
	h.writeJSON(w, ScoreResponse{Error: &errMsg})
}
