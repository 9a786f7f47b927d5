package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/nlsh/internal/adapters/blob/file"
	"github.com/bnema/nlsh/internal/domain"
)

func newTestRepository(t *testing.T) (*Repository, string) {
	t.Helper()

	root := t.TempDir()
	return NewRepository(file.NewStore(root)), root
}

func sampleSession(id string, base time.Time) domain.Session {
	session := domain.NewSession(id, base)
	session.Append("list files", domain.StringPtr("ls -la"), false, base.Add(time.Second))
	session.UpdateLast(nil, true, domain.StringPtr("file1\nfile2\n"), base.Add(2*time.Second))
	session.Append("show disk usage", nil, false, base.Add(3*time.Second))
	return session
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepository(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	session := sampleSession("6f1c2c4e-6a54-4c1c-9d9b-0e2b7f3c1a10", base)

	require.NoError(t, repo.Save(context.Background(), session))

	got, err := repo.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestRepositoryWritesDocumentedLayout(t *testing.T) {
	t.Parallel()

	repo, root := newTestRepository(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(context.Background(), sampleSession("s-1", base)))

	data, err := os.ReadFile(filepath.Join(root, "sessions", "s-1.json"))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "s-1", raw["id"])
	assert.Equal(t, "2026-03-01T09:00:00Z", raw["createdAt"])
	assert.Equal(t, "2026-03-01T09:00:03Z", raw["lastUpdatedAt"])

	entries, ok := raw["entries"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 2)
	assert.Equal(t, map[string]any{
		"timestamp": "2026-03-01T09:00:02Z",
		"prompt":    "list files",
		"command":   "ls -la",
		"executed":  true,
		"output":    "file1\nfile2\n",
	}, entries[0])
	assert.Equal(t, map[string]any{
		"timestamp": "2026-03-01T09:00:03Z",
		"prompt":    "show disk usage",
		"executed":  false,
	}, entries[1])
}

func TestRepositoryListSortsByLastUpdateAndSkipsCorruptFiles(t *testing.T) {
	t.Parallel()

	repo, root := newTestRepository(t)
	older := domain.NewSession("older", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	newer := domain.NewSession("newer", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(context.Background(), older))
	require.NoError(t, repo.Save(context.Background(), newer))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sessions", "broken.json"), []byte("{"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sessions", "notes.txt"), []byte("x"), 0o600))

	sessions, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "newer", sessions[0].ID)
	assert.Equal(t, "older", sessions[1].ID)
}

func TestRepositoryListWithoutSessionsDirectory(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepository(t)
	sessions, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRepositoryGetAndDeleteMissingSession(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepository(t)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	err = repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRepositoryDeleteRemovesSession(t *testing.T) {
	t.Parallel()

	repo, root := newTestRepository(t)
	require.NoError(t, repo.Save(context.Background(), domain.NewSession("s-1", time.Now().UTC())))

	require.NoError(t, repo.Delete(context.Background(), "s-1"))

	_, err := os.Stat(filepath.Join(root, "sessions", "s-1.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRepositoryRejectsUnsafeIDs(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepository(t)
	for _, id := range []string{"", "  ", "../escape", "a/b", ".."} {
		_, err := repo.GetByID(context.Background(), id)
		assert.Error(t, err, id)
		assert.NotErrorIs(t, err, domain.ErrSessionNotFound, id)
	}
}
