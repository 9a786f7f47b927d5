package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bnema/nlsh/internal/domain"
	"github.com/bnema/nlsh/internal/ports"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func (c *fixedClock) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func (c *fixedClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type memoryCredentialStore struct {
	mu       sync.Mutex
	values   map[domain.CredentialSlot]string
	setErr   error
	clearErr error
}

var _ ports.CredentialStore = (*memoryCredentialStore)(nil)

func newMemoryCredentialStore() *memoryCredentialStore {
	return &memoryCredentialStore{values: map[domain.CredentialSlot]string{}}
}

func (s *memoryCredentialStore) Get(_ context.Context, slot domain.CredentialSlot) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[slot]
	return value, ok
}

func (s *memoryCredentialStore) Set(_ context.Context, slot domain.CredentialSlot, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.values[slot] = value
	return nil
}

func (s *memoryCredentialStore) Clear(_ context.Context, slot domain.CredentialSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return s.clearErr
	}
	delete(s.values, slot)
	return nil
}

func (s *memoryCredentialStore) ClearAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return s.clearErr
	}
	s.values = map[domain.CredentialSlot]string{}
	return nil
}

func (s *memoryCredentialStore) Load(context.Context) domain.CredentialRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := domain.CredentialRecord{IdentityToken: s.values[domain.SlotIdentity]}
	token, hasToken := s.values[domain.SlotService]
	rawExpiry, hasExpiry := s.values[domain.SlotServiceExpiry]
	if !hasToken || !hasExpiry {
		return record
	}
	expiry, err := time.Parse(time.RFC3339, rawExpiry)
	if err != nil {
		return record
	}
	record.ServiceToken = token
	record.ServiceTokenExpiry = expiry
	return record
}

func (s *memoryCredentialStore) seedServiceToken(token string, expiry time.Time) {
	s.values[domain.SlotService] = token
	s.values[domain.SlotServiceExpiry] = expiry.UTC().Format(time.RFC3339)
}

type countingIssuer struct {
	mu      sync.Mutex
	calls   int
	lastID  string
	token   ports.ServiceToken
	err     error
}

func (i *countingIssuer) IssueServiceToken(_ context.Context, identityToken string) (ports.ServiceToken, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls++
	i.lastID = identityToken
	if i.err != nil {
		return ports.ServiceToken{}, i.err
	}
	return i.token, nil
}

func (i *countingIssuer) Calls() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.calls
}

type memorySessionRepository struct {
	mu      sync.Mutex
	saved   []domain.Session
	saveErr error
}

var _ ports.SessionRepository = (*memorySessionRepository)(nil)

func (r *memorySessionRepository) GetByID(_ context.Context, id string) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].ID == id {
			return r.saved[i], nil
		}
	}
	return domain.Session{}, domain.ErrSessionNotFound
}

func (r *memorySessionRepository) List(context.Context) ([]domain.Session, error) {
	return nil, errors.New("not supported")
}

func (r *memorySessionRepository) Save(_ context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, session)
	return nil
}

func (r *memorySessionRepository) Delete(context.Context, string) error {
	return errors.New("not supported")
}

func (r *memorySessionRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

type mockCompletionClient struct {
	mock.Mock
}

func (m *mockCompletionClient) Complete(ctx context.Context, serviceToken string, request domain.SuggestionRequest) (string, error) {
	args := m.Called(ctx, serviceToken, request)
	return args.String(0), args.Error(1)
}

func mockAnyContext() interface{} {
	return mock.MatchedBy(func(context.Context) bool { return true })
}
