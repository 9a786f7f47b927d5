package copilot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bnema/nlsh/internal/ports"
)

const tokenPath = "/copilot_internal/v2/token"

var _ ports.ServiceTokenIssuer = TokenClient{}

// TokenClient derives short-lived Copilot tokens from a GitHub identity token.
type TokenClient struct {
	BaseURL        string
	EditorVersion  string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

func (c TokenClient) IssueServiceToken(ctx context.Context, identityToken string) (ports.ServiceToken, error) {
	if err := ctx.Err(); err != nil {
		return ports.ServiceToken{}, err
	}
	if identityToken == "" {
		return ports.ServiceToken{}, errors.New("identity token is required")
	}

	endpoint, err := buildURL(c.BaseURL, tokenPath)
	if err != nil {
		return ports.ServiceToken{}, err
	}

	settings := httpSettings{client: c.HTTPClient, timeout: c.RequestTimeout}
	requestCtx, cancel := settings.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ports.ServiceToken{}, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Authorization", "token "+identityToken)
	req.Header.Set("Accept", "application/json")
	if c.EditorVersion != "" {
		req.Header.Set("Editor-Version", c.EditorVersion)
	}

	resp, err := settings.do(requestCtx, req)
	if err != nil {
		return ports.ServiceToken{}, fmt.Errorf("issue service token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var payload tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return ports.ServiceToken{}, fmt.Errorf("decode service token response: %w", err)
	}
	if payload.Token == "" {
		return ports.ServiceToken{}, errors.New("service token response missing token")
	}
	if payload.ExpiresAt <= 0 {
		return ports.ServiceToken{}, errors.New("service token response missing expires_at")
	}

	return ports.ServiceToken{
		Token:     payload.Token,
		ExpiresAt: time.Unix(payload.ExpiresAt, 0).UTC(),
	}, nil
}
