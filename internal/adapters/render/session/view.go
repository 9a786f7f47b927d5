package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/nlsh/internal/domain"
)

const timeLayout = "2006-01-02 15:04"

// RenderList draws one summary line per session.
func RenderList(sessions []domain.Session) (string, error) {
	return run(func(s styles) string {
		return listView(sessions, s)
	})
}

// RenderSession draws every entry of one session, outputs included.
func RenderSession(session domain.Session) (string, error) {
	return run(func(s styles) string {
		return sessionView(session, s)
	})
}

func listView(sessions []domain.Session, s styles) string {
	lines := []string{
		s.title.Render("nlsh sessions"),
		s.header.Render(fmt.Sprintf("sessions: %d", len(sessions))),
	}
	if len(sessions) == 0 {
		lines = append(lines, s.empty.Render("No sessions recorded."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, session := range sessions {
		summary := fmt.Sprintf("%s  %s", formatTime(session.LastUpdatedAt), entryCount(len(session.Entries)))
		if last, ok := session.Last(); ok {
			summary += "  last: " + firstLine(last.Prompt)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, s.id.Render(session.ID), "  ", s.meta.Render(summary)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func sessionView(session domain.Session, s styles) string {
	lines := []string{
		s.title.Render("Session " + session.ID),
		s.header.Render(fmt.Sprintf("created %s, updated %s, %s",
			formatTime(session.CreatedAt), formatTime(session.LastUpdatedAt), entryCount(len(session.Entries)))),
	}
	if session.Empty() {
		lines = append(lines, s.empty.Render("No entries."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for i, entry := range session.Entries {
		lines = append(lines, s.section.Render(entryView(i+1, entry, s)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func entryView(n int, entry domain.SessionEntry, s styles) string {
	parts := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			s.meta.Render(fmt.Sprintf("[%d] %s", n, entry.Timestamp.Local().Format("15:04:05"))),
			" ",
			s.prompt.Render(entry.Prompt),
		),
	}

	if entry.Command != nil && *entry.Command != "" {
		parts = append(parts, s.command.Render("$ "+*entry.Command))
	}

	executed := "not run"
	if entry.Executed != nil && *entry.Executed {
		executed = "executed"
	}
	parts = append(parts, s.meta.Render(executed))

	if entry.Output != nil && strings.TrimSpace(*entry.Output) != "" {
		parts = append(parts, s.output.Render(strings.TrimRight(*entry.Output, "\n")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format(timeLayout)
}

func entryCount(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i] + " ..."
	}
	return text
}
