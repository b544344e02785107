// Package handlers provides HTTP handlers for runtime settings.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jomolabs/jomo/internal/modules/settings"
)

// Keys that are write-only over HTTP: readable presence, never the value.
var secretKeys = map[string]bool{
	"gemini_api_key": true,
}

// Handlers provides HTTP handlers for the settings module
type Handlers struct {
	repo *settings.Repository
	log  zerolog.Logger
}

// NewHandlers creates a new settings handlers instance
func NewHandlers(repo *settings.Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("module", "settings_handlers").Logger(),
	}
}

// RegisterRoutes registers all settings routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.HandleGetAll)
		r.Get("/{key}", h.HandleGet)
		r.Put("/{key}", h.HandleSet)
		r.Delete("/{key}", h.HandleDelete)
	})
}

// HandleGetAll handles GET /api/settings
func (h *Handlers) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get settings")
		h.writeError(w, "Failed to get settings", http.StatusInternalServerError)
		return
	}

	for key := range all {
		if secretKeys[key] {
			all[key] = maskSecret(all[key])
		}
	}

	h.writeJSON(w, all)
}

// HandleGet handles GET /api/settings/{key}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := h.repo.Get(key)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to get setting")
		h.writeError(w, "Failed to get setting", http.StatusInternalServerError)
		return
	}
	if value == nil {
		h.writeError(w, "Setting not found", http.StatusNotFound)
		return
	}

	v := *value
	if secretKeys[key] {
		v = maskSecret(v)
	}
	h.writeJSON(w, map[string]string{"key": key, "value": v})
}

// HandleSet handles PUT /api/settings/{key}
func (h *Handlers) HandleSet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req struct {
		Value       string  `json:"value"`
		Description *string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.Set(key, req.Value, req.Description); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to set setting")
		h.writeError(w, "Failed to set setting", http.StatusInternalServerError)
		return
	}

	h.log.Info().Str("key", key).Msg("Setting updated")
	h.writeJSON(w, map[string]string{"status": "success"})
}

// HandleDelete handles DELETE /api/settings/{key}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := h.repo.Delete(key); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to delete setting")
		h.writeError(w, "Failed to delete setting", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]string{"status": "success"})
}

// maskSecret keeps the last 4 characters visible
func maskSecret(v string) string {
	if len(v) <= 4 {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
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
