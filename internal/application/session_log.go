package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bnema/nlsh/internal/domain"
	"github.com/bnema/nlsh/internal/ports"
)

// SessionLog owns the single in-memory session of a run and persists it
// after every mutation. The stored copy is never read back mid-run.
type SessionLog struct {
	session domain.Session
	repo    ports.SessionRepository
	clock   ports.Clock
	redact  func(string) string
}

// NewSessionLog starts a fresh session. redact may be nil.
func NewSessionLog(repo ports.SessionRepository, clock ports.Clock, redact func(string) string) *SessionLog {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SessionLog{
		session: domain.NewSession(uuid.NewString(), clock.Now().UTC()),
		repo:    repo,
		clock:   clock,
		redact:  redact,
	}
}

// ResumeSessionLog continues a session loaded from storage.
func ResumeSessionLog(session domain.Session, repo ports.SessionRepository, clock ports.Clock, redact func(string) string) *SessionLog {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SessionLog{session: session, repo: repo, clock: clock, redact: redact}
}

func (l *SessionLog) ID() string {
	return l.session.ID
}

func (l *SessionLog) Empty() bool {
	return l.session.Empty()
}

// Session returns a copy of the current state.
func (l *SessionLog) Session() domain.Session {
	session := l.session
	session.Entries = append([]domain.SessionEntry(nil), l.session.Entries...)
	return session
}

// Append records a new prompt. The in-memory entry is kept even when
// persisting it fails.
func (l *SessionLog) Append(ctx context.Context, prompt string, command *string, executed bool) (domain.Session, error) {
	l.session.Append(prompt, command, executed, l.clock.Now().UTC())
	return l.Session(), l.save(ctx)
}

// UpdateLast attaches the outcome to the latest entry. Without entries it
// does nothing and touches no storage.
func (l *SessionLog) UpdateLast(ctx context.Context, command *string, executed bool, output *string) (domain.Session, error) {
	if !l.session.UpdateLast(command, executed, output, l.clock.Now().UTC()) {
		return l.Session(), nil
	}
	return l.Session(), l.save(ctx)
}

// Context renders the last limit entries for the completion request.
func (l *SessionLog) Context(limit int) string {
	return l.session.Context(limit, l.redact)
}

func (l *SessionLog) save(ctx context.Context) error {
	if l.repo == nil {
		return nil
	}
	if err := l.repo.Save(ctx, l.session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
