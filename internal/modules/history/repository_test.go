package history

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jomolabs/jomo/internal/database"
	"github.com/jomolabs/jomo/internal/modules/scoring/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.New(database.Config{Path: dsn, Name: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db, zerolog.Nop())
	require.NoError(t, repo.Migrate())
	return repo
}

func sampleScore(final float64, grade string) *domain.Score {
	return &domain.Score{
		WeightedSum:    final,
		RiskMultiplier: 1.0,
		FinalScore:     final,
		Grade:          grade,
		RubricVersion:  "v1",
	}
}

func TestRecordAndRecent(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Record("p1", "ACME", sampleScore(72.5, "B")))
	require.NoError(t, repo.Record("p1", "ACME", sampleScore(81.0, "A")))
	require.NoError(t, repo.Record("p1", "OTHER", sampleScore(40.0, "C")))

	entries, err := repo.Recent("p1", "ACME", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2, "snapshots are scoped to the (project, symbol) pair")

	// Newest first; same-second inserts break ties by insertion order
	assert.Equal(t, 81.0, entries[0].FinalScore)
	assert.Equal(t, "A", entries[0].Grade)
	assert.Equal(t, 72.5, entries[1].FinalScore)
	assert.Equal(t, "v1", entries[0].RubricVersion)
	assert.NotZero(t, entries[0].CreatedAt)
}

func TestRecent_LimitAndDefault(t *testing.T) {
	repo := newTestRepo(t)

	for i := 0; i < 60; i++ {
		require.NoError(t, repo.Record("p1", "ACME", sampleScore(float64(i), "C")))
	}

	entries, err := repo.Recent("p1", "ACME", 5)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	// Zero or negative limits fall back to 50
	entries, err = repo.Recent("p1", "ACME", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 50)
}

func TestRecent_EmptyForUnknownPair(t *testing.T) {
	repo := newTestRepo(t)

	entries, err := repo.Recent("p1", "ACME", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPruneBefore(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Record("p1", "ACME", sampleScore(70, "B")))
	require.NoError(t, repo.Record("p1", "ACME", sampleScore(75, "B")))

	// Backdate the first snapshot past the retention window
	_, err := repo.db.Exec(
		"UPDATE score_history SET created_at = ? WHERE final_score = 70",
		time.Now().Add(-120*24*time.Hour).Unix())
	require.NoError(t, err)

	pruned, err := repo.PruneBefore(time.Now().Add(-90 * 24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	entries, err := repo.Recent("p1", "ACME", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 75.0, entries[0].FinalScore)

	// Nothing left to prune
	pruned, err = repo.PruneBefore(time.Now().Add(-90 * 24 * time.Hour))
	require.NoError(t, err)
	assert.Zero(t, pruned)
}
