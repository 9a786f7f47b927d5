package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/nlsh/internal/domain"
)

func TestSessionLogPersistsEveryMutation(t *testing.T) {
	t.Parallel()

	repo := &memorySessionRepository{}
	clock := &fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	log := NewSessionLog(repo, clock, nil)

	_, err := uuid.Parse(log.ID())
	require.NoError(t, err)
	assert.True(t, log.Empty())

	clock.Advance(time.Second)
	session, err := log.Append(context.Background(), "list files", nil, false)
	require.NoError(t, err)
	require.Len(t, session.Entries, 1)
	assert.Equal(t, 1, repo.Saves())

	clock.Advance(time.Second)
	session, err = log.UpdateLast(context.Background(), domain.StringPtr("ls -la"), true, domain.StringPtr("file1\nfile2"))
	require.NoError(t, err)
	assert.Equal(t, 2, repo.Saves())

	last, ok := session.Last()
	require.True(t, ok)
	assert.Equal(t, "ls -la", *last.Command)
	assert.True(t, *last.Executed)
	assert.Equal(t, clock.Now(), last.Timestamp)
	assert.Equal(t, clock.Now(), session.LastUpdatedAt)

	stored, err := repo.GetByID(context.Background(), log.ID())
	require.NoError(t, err)
	assert.Equal(t, session, stored)
}

func TestSessionLogUpdateLastWithoutEntriesIsNoop(t *testing.T) {
	t.Parallel()

	repo := &memorySessionRepository{}
	log := NewSessionLog(repo, &fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}, nil)
	before := log.Session()

	session, err := log.UpdateLast(context.Background(), domain.StringPtr("ls"), true, nil)

	require.NoError(t, err)
	assert.Equal(t, before, session)
	assert.Equal(t, 0, repo.Saves())
}

func TestSessionLogKeepsEntryWhenPersistFails(t *testing.T) {
	t.Parallel()

	repo := &memorySessionRepository{saveErr: errors.New("read-only file system")}
	log := NewSessionLog(repo, &fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}, nil)

	session, err := log.Append(context.Background(), "list files", nil, false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist session")
	assert.Len(t, session.Entries, 1)
	assert.False(t, log.Empty())
}

func TestSessionLogContextAppliesRedactor(t *testing.T) {
	t.Parallel()

	redact := func(command string) string { return strings.ReplaceAll(command, "hunter2", "***") }
	log := NewSessionLog(nil, &fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}, redact)

	_, err := log.Append(context.Background(), "login", domain.StringPtr("mysql -phunter2"), true)
	require.NoError(t, err)

	rendered := log.Context(domain.DefaultContextLimit)
	assert.Contains(t, rendered, "Command: mysql -p***")
	assert.NotContains(t, rendered, "hunter2")

	raw, _ := log.Session().Last()
	assert.Equal(t, "mysql -phunter2", *raw.Command)
}

func TestSessionLogSessionReturnsCopy(t *testing.T) {
	t.Parallel()

	log := NewSessionLog(nil, &fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}, nil)
	_, err := log.Append(context.Background(), "first", nil, false)
	require.NoError(t, err)

	snapshot := log.Session()
	snapshot.Entries[0].Prompt = "mutated"

	current, _ := log.Session().Last()
	assert.Equal(t, "first", current.Prompt)
}

func TestResumeSessionLogContinuesExistingSession(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	existing := domain.NewSession("s-1", base)
	existing.Append("list files", domain.StringPtr("ls"), true, base)

	repo := &memorySessionRepository{}
	log := ResumeSessionLog(existing, repo, &fixedClock{now: base.Add(time.Minute)}, nil)

	session, err := log.Append(context.Background(), "count them", nil, false)
	require.NoError(t, err)
	assert.Equal(t, "s-1", session.ID)
	assert.Len(t, session.Entries, 2)
	assert.Contains(t, log.Context(5), "[2] User: count them")
}
