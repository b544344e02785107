package projects

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jomolabs/jomo/internal/database"
)

// Repository handles project database operations.
// Each project is stored as a JSON document keyed by id; the name column is
// duplicated out of the document for listing without full deserialization.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new projects repository.
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "projects").Logger(),
	}
}

// Migrate creates the projects table if it does not exist.
func (r *Repository) Migrate() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			data       TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate projects: %w", err)
	}
	return nil
}

// GetAll returns all projects, most recently updated first.
func (r *Repository) GetAll() ([]Project, error) {
	rows, err := r.db.Query("SELECT data FROM projects ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var result []Project
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan project row")
			continue
		}

		var p Project
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			r.log.Warn().Err(err).Msg("Failed to unmarshal project document")
			continue
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return result, nil
}

// Get returns a project by id, or nil if it does not exist.
func (r *Repository) Get(id string) (*Project, error) {
	var data string
	err := r.db.QueryRow("SELECT data FROM projects WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", id, err)
	}

	var p Project
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project %s: %w", id, err)
	}
	return &p, nil
}

// Save inserts or replaces a project document. UpdatedAt is stamped here so
// the caller never has to remember it.
func (r *Repository) Save(p *Project) error {
	if p.ID == "" {
		return fmt.Errorf("project id is required")
	}
	p.UpdatedAt = time.Now().Unix()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project %s: %w", p.ID, err)
	}

	_, err = r.db.Exec(`
		INSERT INTO projects (id, name, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, string(data), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save project %s: %w", p.ID, err)
	}

	return nil
}

// Delete deletes a project. Idempotent: deleting a missing project is not an
// error.
func (r *Repository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM projects WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	return nil
}
