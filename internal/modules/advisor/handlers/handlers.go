// Package handlers provides HTTP handlers for the Jomo advisor.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jomolabs/jomo/internal/modules/advisor"
	"github.com/jomolabs/jomo/internal/modules/scoring/domain"
)

// Handlers provides HTTP handlers for the advisor module
type Handlers struct {
	svc *advisor.Service
	log zerolog.Logger
}

// NewHandlers creates a new advisor handlers instance
func NewHandlers(svc *advisor.Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		svc: svc,
		log: log.With().Str("module", "advisor_handlers").Logger(),
	}
}

// RegisterRoutes registers all advisor routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/advisor", func(r chi.Router) {
		r.Post("/chat", h.HandleChat)
		r.Post("/analyze-stock", h.HandleAnalyzeStock)
		r.Post("/suggest-weights", h.HandleSuggestWeights)
		r.Post("/verdict", h.HandleVerdict)
		r.Post("/strategy", h.HandleStrategy)
	})
}

// HandleChat handles POST /api/advisor/chat
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
		History []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		h.writeError(w, "Message is required", http.StatusBadRequest)
		return
	}

	history := make([]advisor.Turn, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, advisor.Turn{Role: m.Role, Text: m.Content})
	}

	reply := h.svc.Chat(r.Context(), req.Message, history)
	h.writeJSON(w, map[string]string{"reply": reply})
}

// HandleAnalyzeStock handles POST /api/advisor/analyze-stock.
// On extraction failure the response carries extracted=false and an empty
// overlay; the client scores with manual values and rubric defaults instead.
func (h *Handlers) HandleAnalyzeStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Symbol == "" {
		h.writeError(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	overlay, err := h.svc.AnalyzeStock(r.Context(), req.Symbol)
	if err != nil {
		if errors.Is(err, domain.ErrExtractionUnavailable) {
			h.writeJSON(w, map[string]interface{}{
				"symbol":     req.Symbol,
				"extracted":  false,
				"ai_metrics": domain.MetricOverlay{},
			})
			return
		}
		h.log.Error().Err(err).Str("symbol", req.Symbol).Msg("Analyze stock failed")
		h.writeError(w, "Failed to analyze stock", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"symbol":     req.Symbol,
		"extracted":  true,
		"ai_metrics": overlay,
	})
}

// HandleSuggestWeights handles POST /api/advisor/suggest-weights
func (h *Handlers) HandleSuggestWeights(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectName  string  `json:"project_name"`
		TargetReturn float64 `json:"target_return"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	weights := h.svc.SuggestWeights(r.Context(), req.ProjectName, req.TargetReturn)
	h.writeJSON(w, map[string]interface{}{"weights": weights})
}

// HandleVerdict handles POST /api/advisor/verdict
func (h *Handlers) HandleVerdict(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol  string           `json:"symbol"`
		Metrics domain.MetricSet `json:"metrics"`
		Score   domain.Score     `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Symbol == "" {
		h.writeError(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	verdict, err := h.svc.Verdict(r.Context(), req.Symbol, req.Metrics, &req.Score)
	if err != nil {
		h.log.Warn().Err(err).Str("symbol", req.Symbol).Msg("Verdict generation failed")
		h.writeError(w, "Advisor unavailable", http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, map[string]string{"verdict": verdict})
}

// HandleStrategy handles POST /api/advisor/strategy
func (h *Handlers) HandleStrategy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PortfolioSummary string  `json:"portfolio_summary"`
		TargetReturn     float64 `json:"target_return"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	strategy, err := h.svc.Strategy(r.Context(), req.PortfolioSummary, req.TargetReturn)
	if err != nil {
		h.log.Warn().Err(err).Msg("Strategy generation failed")
		h.writeError(w, "Advisor unavailable", http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, map[string]string{"strategy": strategy})
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
	h.writeJSON(w, map[string]string{"error": message})
}
