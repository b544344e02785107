package settings

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jomolabs/jomo/internal/database"
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

func TestSetAndGet(t *testing.T) {
	repo := newTestRepo(t)

	desc := "Gemini model used by the advisor"
	require.NoError(t, repo.Set("gemini_model", "gemini-1.5-flash", &desc))

	got, err := repo.Get("gemini_model")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "gemini-1.5-flash", *got)
}

func TestGetMissingReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.Get("does_not_exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetUpserts(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Set("gemini_api_key", "old-key", nil))
	require.NoError(t, repo.Set("gemini_api_key", "new-key", nil))

	got, err := repo.Get("gemini_api_key")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new-key", *got)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetAll(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Set("a", "1", nil))
	require.NoError(t, repo.Set("b", "2", nil))

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, all)
}

func TestGetFloat(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Set("history_retention_days", "90", nil))

	got, err := repo.GetFloat("history_retention_days", 30)
	require.NoError(t, err)
	assert.Equal(t, 90.0, got)

	// Missing key falls back to the default
	got, err = repo.GetFloat("missing", 30)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got)

	// Unparseable value falls back too, without erroring
	require.NoError(t, repo.Set("history_retention_days", "ninety", nil))
	got, err = repo.GetFloat("history_retention_days", 30)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Set("a", "1", nil))
	require.NoError(t, repo.Delete("a"))

	got, err := repo.Get("a")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Idempotent
	assert.NoError(t, repo.Delete("a"))
}
