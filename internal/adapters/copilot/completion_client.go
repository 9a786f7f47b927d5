package copilot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bnema/nlsh/internal/domain"
	"github.com/bnema/nlsh/internal/ports"
)

const completionsPath = "/chat/completions"

var _ ports.CompletionClient = CompletionClient{}

// CompletionClient asks the chat-completion endpoint for one deterministic
// answer per request.
type CompletionClient struct {
	BaseURL        string
	Model          string
	IntegrationID  string
	EditorVersion  string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	N           int           `json:"n"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

// Complete returns the content of the first choice, or "" when the service
// answered without any.
func (c CompletionClient) Complete(ctx context.Context, serviceToken string, request domain.SuggestionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if serviceToken == "" {
		return "", errors.New("service token is required")
	}
	if c.Model == "" {
		return "", errors.New("model is required")
	}

	endpoint, err := buildURL(c.BaseURL, completionsPath)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(c.buildRequest(request))
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	settings := httpSettings{client: c.HTTPClient, timeout: c.RequestTimeout}
	requestCtx, cancel := settings.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+serviceToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.IntegrationID != "" {
		req.Header.Set("Copilot-Integration-Id", c.IntegrationID)
	}
	if c.EditorVersion != "" {
		req.Header.Set("Editor-Version", c.EditorVersion)
	}

	resp, err := settings.do(requestCtx, req)
	if err != nil {
		return "", fmt.Errorf("request completion: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var payload chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return "", nil
	}
	return payload.Choices[0].Message.Content, nil
}

func (c CompletionClient) buildRequest(request domain.SuggestionRequest) chatRequest {
	messages := make([]chatMessage, 0, len(request.Messages))
	for _, message := range request.Messages {
		messages = append(messages, chatMessage{Role: string(message.Role), Content: message.Content})
	}

	return chatRequest{
		Model:       c.Model,
		Messages:    messages,
		Temperature: 0,
		TopP:        1,
		N:           1,
		Stream:      false,
	}
}
