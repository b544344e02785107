package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all scoring routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/scoring", func(r chi.Router) {
		r.Post("/score", h.HandleScore)     // Compute score (called on every edit)
		r.Get("/rubric", h.HandleGetRubric) // Active rubric version

		r.Route("/weights", func(r chi.Router) {
			r.Get("/default", h.HandleGetDefaultWeights) // Recommended starting weights
		})
	})
}
