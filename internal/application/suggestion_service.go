package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bnema/nlsh/internal/domain"
	"github.com/bnema/nlsh/internal/ports"
)

type SuggestionService struct {
	tokens       *TokenBroker
	completions  ports.CompletionClient
	contextLimit int
	logger       *slog.Logger
}

func NewSuggestionService(tokens *TokenBroker, completions ports.CompletionClient, contextLimit int, logger *slog.Logger) *SuggestionService {
	if contextLimit <= 0 {
		contextLimit = domain.DefaultContextLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SuggestionService{
		tokens:       tokens,
		completions:  completions,
		contextLimit: contextLimit,
		logger:       logger,
	}
}

// Suggest turns prompt into one shell command. The session log, when given
// and non-empty, contributes recent history as a system message. Every
// failure is a *domain.Error.
func (s *SuggestionService) Suggest(ctx context.Context, prompt string, identityToken string, log *SessionLog) (string, error) {
	serviceToken, err := s.tokens.GetServiceToken(ctx, identityToken)
	if err != nil {
		return "", translateError(err)
	}

	var sessionContext string
	if log != nil && !log.Empty() {
		sessionContext = log.Context(s.contextLimit)
	}
	request := domain.NewSuggestionRequest(sessionContext, prompt)

	content, err := s.completions.Complete(ctx, serviceToken, request)
	if err != nil {
		classified := classifyCompletionFailure(err)
		if classified.Kind == domain.KindServiceTokenExpired {
			s.tokens.InvalidateServiceToken(ctx)
		}
		s.logger.Debug("completion failed", "kind", classified.Kind, "error", err)
		return "", translateError(classified)
	}

	command := cleanSuggestion(content)
	if command == "" {
		return "", translateError(domain.NewError(domain.KindEmptyResult, nil))
	}
	return command, nil
}

// cleanSuggestion strips a surrounding markdown code fence or inline code
// span and trims whitespace.
func cleanSuggestion(content string) string {
	text := strings.TrimSpace(content)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if newline := strings.IndexByte(text, '\n'); newline >= 0 {
			text = text[newline+1:]
		} else {
			text = ""
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	} else if len(text) >= 2 && strings.HasPrefix(text, "`") && strings.HasSuffix(text, "`") {
		text = text[1 : len(text)-1]
	}

	return strings.TrimSpace(text)
}
