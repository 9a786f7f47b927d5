package jsonfile

import (
	"time"

	"github.com/bnema/nlsh/internal/domain"
)

type sessionSchema struct {
	ID            string        `json:"id"`
	CreatedAt     time.Time     `json:"createdAt"`
	LastUpdatedAt time.Time     `json:"lastUpdatedAt"`
	Entries       []entrySchema `json:"entries"`
}

type entrySchema struct {
	Timestamp time.Time `json:"timestamp"`
	Prompt    string    `json:"prompt"`
	Command   *string   `json:"command,omitempty"`
	Executed  *bool     `json:"executed,omitempty"`
	Output    *string   `json:"output,omitempty"`
}

func toSchema(session domain.Session) sessionSchema {
	entries := make([]entrySchema, 0, len(session.Entries))
	for _, entry := range session.Entries {
		entries = append(entries, entrySchema{
			Timestamp: entry.Timestamp.UTC(),
			Prompt:    entry.Prompt,
			Command:   entry.Command,
			Executed:  entry.Executed,
			Output:    entry.Output,
		})
	}

	return sessionSchema{
		ID:            session.ID,
		CreatedAt:     session.CreatedAt.UTC(),
		LastUpdatedAt: session.LastUpdatedAt.UTC(),
		Entries:       entries,
	}
}

func fromSchema(schema sessionSchema) domain.Session {
	session := domain.Session{
		ID:            schema.ID,
		CreatedAt:     schema.CreatedAt,
		LastUpdatedAt: schema.LastUpdatedAt,
	}
	if len(schema.Entries) == 0 {
		return session
	}

	session.Entries = make([]domain.SessionEntry, 0, len(schema.Entries))
	for _, entry := range schema.Entries {
		session.Entries = append(session.Entries, domain.SessionEntry{
			Timestamp: entry.Timestamp,
			Prompt:    entry.Prompt,
			Command:   entry.Command,
			Executed:  entry.Executed,
			Output:    entry.Output,
		})
	}
	return session
}
