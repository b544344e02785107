// Package history records score snapshots per (project, stock) so the
// dashboard can chart how a stock's score moved as metrics and weights
// changed. Snapshots are derived data; the authoritative score is always
// recomputed from the current inputs.
package history

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jomolabs/jomo/internal/database"
	"github.com/jomolabs/jomo/internal/modules/scoring/domain"
)

// Entry is one recorded score snapshot.
type Entry struct {
	ID             int64   `json:"id"`
	ProjectID      string  `json:"project_id"`
	Symbol         string  `json:"symbol"`
	FinalScore     float64 `json:"final_score"`
	WeightedSum    float64 `json:"weighted_sum"`
	RiskMultiplier float64 `json:"risk_multiplier"`
	Grade          string  `json:"grade"`
	RubricVersion  string  `json:"rubric_version"`
	CreatedAt      int64   `json:"created_at"` // Unix seconds
}

// Repository handles score history database operations.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new score history repository.
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "history").Logger(),
	}
}

// Migrate creates the score_history table if it does not exist.
func (r *Repository) Migrate() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS score_history (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id      TEXT NOT NULL,
			symbol          TEXT NOT NULL,
			final_score     REAL NOT NULL,
			weighted_sum    REAL NOT NULL,
			risk_multiplier REAL NOT NULL,
			grade           TEXT NOT NULL,
			rubric_version  TEXT NOT NULL,
			created_at      INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_score_history_lookup
			ON score_history (project_id, symbol, created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate score_history: %w", err)
	}
	return nil
}

// Record stores one score snapshot.
func (r *Repository) Record(projectID, symbol string, score *domain.Score) error {
	_, err := r.db.Exec(`
		INSERT INTO score_history
			(project_id, symbol, final_score, weighted_sum, risk_multiplier, grade, rubric_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, projectID, symbol, score.FinalScore, score.WeightedSum, score.RiskMultiplier,
		score.Grade, score.RubricVersion, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record score snapshot for %s/%s: %w", projectID, symbol, err)
	}
	return nil
}

// Recent returns the most recent snapshots for a (project, stock) pair,
// newest first.
func (r *Repository) Recent(projectID, symbol string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT id, project_id, symbol, final_score, weighted_sum, risk_multiplier,
		       grade, rubric_version, created_at
		FROM score_history
		WHERE project_id = ? AND symbol = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, projectID, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query score history for %s/%s: %w", projectID, symbol, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Symbol, &e.FinalScore, &e.WeightedSum,
			&e.RiskMultiplier, &e.Grade, &e.RubricVersion, &e.CreatedAt); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan score history row")
			continue
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating score history: %w", err)
	}

	return entries, nil
}

// PruneBefore deletes snapshots older than the cutoff and returns how many
// rows were removed. Called by the maintenance job.
func (r *Repository) PruneBefore(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec("DELETE FROM score_history WHERE created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune score history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}
