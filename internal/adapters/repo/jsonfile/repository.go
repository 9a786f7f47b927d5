package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/bnema/nlsh/internal/domain"
	"github.com/bnema/nlsh/internal/ports"
)

const (
	sessionsPrefix = "sessions"
	sessionExt     = ".json"
)

// Repository stores one JSON document per session under sessions/<id>.json.
type Repository struct {
	blobs ports.ListableBlobStore
	mu    sync.RWMutex
}

var _ ports.SessionRepository = (*Repository)(nil)

func NewRepository(blobs ports.ListableBlobStore) *Repository {
	return &Repository{blobs: blobs}
}

func (r *Repository) Save(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, err := sessionKey(session.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(toSchema(session), "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	data = append(data, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.blobs.Put(ctx, key, data); err != nil {
		return fmt.Errorf("save session %q: %w", session.ID, err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	key, err := sessionKey(id)
	if err != nil {
		return domain.Session{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.read(ctx, key)
}

// List returns every stored session, most recently updated first. Files that
// fail to decode are skipped.
func (r *Repository) List(ctx context.Context) ([]domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	keys, err := r.blobs.List(ctx, sessionsPrefix)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]domain.Session, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, sessionExt) {
			continue
		}
		session, err := r.read(ctx, key)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			continue
		}
		sessions = append(sessions, session)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastUpdatedAt.After(sessions[j].LastUpdatedAt)
	})
	return sessions, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, err := sessionKey(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.blobs.Get(ctx, key); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrSessionNotFound
		}
		return fmt.Errorf("read session %q: %w", id, err)
	}
	if err := r.blobs.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete session %q: %w", id, err)
	}
	return nil
}

func (r *Repository) read(ctx context.Context, key string) (domain.Session, error) {
	data, err := r.blobs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Session{}, domain.ErrSessionNotFound
		}
		return domain.Session{}, fmt.Errorf("read session: %w", err)
	}

	var schema sessionSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return domain.Session{}, fmt.Errorf("decode session %s: %w", key, err)
	}
	return fromSchema(schema), nil
}

func sessionKey(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", errors.New("session id is required")
	}
	if strings.ContainsAny(trimmed, `/\`) || trimmed == "." || trimmed == ".." {
		return "", fmt.Errorf("invalid session id %q", id)
	}
	return path.Join(sessionsPrefix, trimmed+sessionExt), nil
}
