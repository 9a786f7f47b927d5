package ports

import (
	"context"
	"errors"
	"time"

	"github.com/bnema/nlsh/internal/domain"
)

type ServiceToken struct {
	Token     string
	ExpiresAt time.Time
}

// ServiceTokenIssuer exchanges an identity token for a short-lived service token.
type ServiceTokenIssuer interface {
	IssueServiceToken(ctx context.Context, identityToken string) (ServiceToken, error)
}

// CompletionClient returns the first choice's message content.
type CompletionClient interface {
	Complete(ctx context.Context, serviceToken string, request domain.SuggestionRequest) (string, error)
}

// ErrTransport marks failures to reach a remote service at all.
var ErrTransport = errors.New("transport unavailable")

// StatusError is a non-2xx answer from a remote service.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "unexpected status " + e.Status
	}
	return "unexpected status " + e.Status + ": " + e.Body
}
