package domain

import "strings"

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type Message struct {
	Role    Role
	Content string
}

// SuggestionRequest holds at most one system message with session context
// followed by exactly one user message with the prompt.
type SuggestionRequest struct {
	Messages []Message
}

func NewSuggestionRequest(sessionContext, prompt string) SuggestionRequest {
	messages := make([]Message, 0, 2)
	if strings.TrimSpace(sessionContext) != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: sessionContext})
	}
	messages = append(messages, Message{Role: RoleUser, Content: prompt})

	return SuggestionRequest{Messages: messages}
}

func (r SuggestionRequest) SystemMessage() (Message, bool) {
	for _, message := range r.Messages {
		if message.Role == RoleSystem {
			return message, true
		}
	}
	return Message{}, false
}
