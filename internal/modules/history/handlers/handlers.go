// Package handlers provides HTTP handlers for score history.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jomolabs/jomo/internal/modules/history"
)

// Handlers provides HTTP handlers for the history module
type Handlers struct {
	repo *history.Repository
	log  zerolog.Logger
}

// NewHandlers creates a new history handlers instance
func NewHandlers(repo *history.Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("module", "history_handlers").Logger(),
	}
}

// RegisterRoutes registers all history routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/history", func(r chi.Router) {
		r.Get("/{projectID}/{symbol}", h.HandleRecent) // Recent score snapshots
	})
}

// HandleRecent handles GET /api/history/{projectID}/{symbol}?limit=N
func (h *Handlers) HandleRecent(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	symbol := chi.URLParam(r, "symbol")
	if projectID == "" || symbol == "" {
		h.writeError(w, "Project ID and symbol are required", http.StatusBadRequest)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.repo.Recent(projectID, symbol, limit)
	if err != nil {
		h.log.Error().Err(err).Str("project_id", projectID).Str("symbol", symbol).
			Msg("Failed to load score history")
		h.writeError(w, "Failed to load score history", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{"entries": entries})
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
