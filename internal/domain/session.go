package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultContextLimit = 5
	MaxContextOutput    = 500
	TruncationMarker    = "... [truncated]"
)

type Session struct {
	ID            string
	CreatedAt     time.Time
	LastUpdatedAt time.Time
	Entries       []SessionEntry
}

type SessionEntry struct {
	Timestamp time.Time
	Prompt    string
	Command   *string
	Executed  *bool
	Output    *string
}

func NewSession(id string, now time.Time) Session {
	return Session{
		ID:            id,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

func (s Session) Empty() bool {
	return len(s.Entries) == 0
}

func (s Session) Last() (SessionEntry, bool) {
	if len(s.Entries) == 0 {
		return SessionEntry{}, false
	}
	return s.Entries[len(s.Entries)-1], true
}

// Append adds an entry stamped with now, or with the previous entry's
// timestamp if the clock went backwards.
func (s *Session) Append(prompt string, command *string, executed bool, now time.Time) {
	stamp := s.nextStamp(now)
	s.Entries = append(s.Entries, SessionEntry{
		Timestamp: stamp,
		Prompt:    prompt,
		Command:   cloneString(command),
		Executed:  &executed,
	})
	s.LastUpdatedAt = stamp
}

// UpdateLast attaches the command and execution outcome to the most recent
// entry. A nil command or output keeps what the entry already has. Returns
// false when there is no entry to update.
func (s *Session) UpdateLast(command *string, executed bool, output *string, now time.Time) bool {
	if len(s.Entries) == 0 {
		return false
	}

	last := &s.Entries[len(s.Entries)-1]
	stamp := s.nextStamp(now)
	if command != nil {
		last.Command = cloneString(command)
	}
	if output != nil {
		last.Output = cloneString(output)
	}
	last.Executed = &executed
	last.Timestamp = stamp
	s.LastUpdatedAt = stamp

	return true
}

func (s Session) nextStamp(now time.Time) time.Time {
	if last, ok := s.Last(); ok && now.Before(last.Timestamp) {
		return last.Timestamp
	}
	return now
}

// Context renders the last limit entries, oldest first. redact, when non-nil,
// is applied to each command before rendering.
func (s Session) Context(limit int, redact func(string) string) string {
	if limit <= 0 || len(s.Entries) == 0 {
		return ""
	}

	entries := s.Entries
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	blocks := make([]string, 0, len(entries))
	for i, entry := range entries {
		blocks = append(blocks, renderContextEntry(i+1, entry, redact))
	}

	return strings.Join(blocks, "\n\n")
}

func renderContextEntry(n int, entry SessionEntry, redact func(string) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] User: %s", n, entry.Prompt)

	if entry.Command != nil && *entry.Command != "" {
		command := *entry.Command
		if redact != nil {
			command = redact(command)
		}
		fmt.Fprintf(&b, "\n    Command: %s", command)
	}

	executed := "No"
	if entry.Executed != nil && *entry.Executed {
		executed = "Yes"
	}
	fmt.Fprintf(&b, "\n    Executed: %s", executed)

	if entry.Output != nil && *entry.Output != "" {
		b.WriteString("\n    Output:\n")
		b.WriteString(indent(TruncateOutput(*entry.Output), "      "))
	}

	return b.String()
}

// TruncateOutput keeps the first MaxContextOutput characters and appends
// TruncationMarker when anything was dropped.
func TruncateOutput(output string) string {
	output = strings.TrimRight(output, "\n")
	runes := []rune(output)
	if len(runes) <= MaxContextOutput {
		return output
	}
	return string(runes[:MaxContextOutput]) + "\n" + TruncationMarker
}

func indent(text string, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func StringPtr(value string) *string {
	return &value
}
