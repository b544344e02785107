// Package projects stores dashboard projects: the stocks a user tracks, the
// factor weights they chose, their target return and the advisor chat that
// belongs to the project. A project is persisted as a single JSON document,
// matching the document-store shape the SPA works with.
package projects

import "github.com/jomolabs/jomo/internal/modules/scoring/domain"

// ChatMessage is one turn of the project's advisor conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "model"
	Content string `json:"content"`
}

// Stock is one tracked stock within a project. AI and Manual are the two
// metric overlays the override resolver merges at scoring time; they are
// stored separately so clearing a manual cell falls back to the AI value
// instead of losing it.
type Stock struct {
	Symbol  string               `json:"symbol"`
	AI      domain.MetricOverlay `json:"ai_metrics"`
	Manual  domain.MetricOverlay `json:"manual_metrics"`
	Verdict string               `json:"verdict,omitempty"` // Advisor verdict text
}

// Project is the persisted unit of the dashboard.
type Project struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Stocks       []Stock              `json:"stocks"`
	Weights      domain.WeightProfile `json:"weights"`
	TargetReturn float64              `json:"target_return"`
	ChatHistory  []ChatMessage        `json:"chat_history,omitempty"`
	Strategy     string               `json:"strategy,omitempty"` // Advisor portfolio strategy text
	UpdatedAt    int64                `json:"updated_at"`         // Unix seconds
}
