package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/nlsh/internal/domain"
)

// Copilot tokens are issued for roughly this long; it scales the bar.
const serviceTokenLifetime = 30 * time.Minute

type RenderOptions struct {
	Now     time.Time
	Backend string
	Dir     string
}

func renderView(record domain.CredentialRecord, opts RenderOptions, s styles) string {
	lines := []string{s.title.Render("nlsh auth status")}
	if opts.Backend != "" || opts.Dir != "" {
		lines = append(lines, s.header.Render(fmt.Sprintf("store: %s (%s)", opts.Backend, opts.Dir)))
	}

	lines = append(lines, identityLine(record, s), serviceLine(record, opts, s))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func identityLine(record domain.CredentialRecord, s styles) string {
	state := s.warning.Render("not logged in")
	if record.HasIdentity() {
		state = s.ok.Render("logged in")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render("github:"), " ", state)
}

func serviceLine(record domain.CredentialRecord, opts RenderOptions, s styles) string {
	label := s.label.Render("copilot token:")
	if !record.HasServiceToken() {
		return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.empty.Render("none cached"))
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	expiry := record.ServiceTokenExpiry
	if !record.ServiceTokenValid(now) {
		return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.warning.Render("expired"), " ",
			s.detail.Render(fmt.Sprintf("(%s)", expiry.UTC().Format(time.RFC3339))))
	}

	remaining := expiry.Sub(now)
	leftPercent := clampPercent(100 * remaining.Seconds() / serviceTokenLifetime.Seconds())
	expiryStyle := lipgloss.NewStyle().Foreground(interpolateColor(leftPercent, 0, 100))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		label,
		" ",
		renderProgressBar(leftPercent, 24, s),
		" ",
		expiryStyle.Render(formatExpiryRelative(expiry, now)),
	)
}

func renderProgressBar(leftPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(leftPercent) / 100))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatExpiryRelative(expiresAt, now time.Time) string {
	remaining := expiresAt.Sub(now)
	if remaining < time.Hour {
		minutes := int(math.Ceil(remaining.Minutes()))
		if minutes < 1 {
			minutes = 1
		}
		suffix := "minutes"
		if minutes == 1 {
			suffix = "minute"
		}
		return fmt.Sprintf("expires in %d %s (%s)", minutes, suffix, expiresAt.Format("15:04"))
	}

	hours := int(math.Ceil(remaining.Hours()))
	suffix := "hours"
	if hours == 1 {
		suffix = "hour"
	}
	return fmt.Sprintf("expires in %d %s (%s)", hours, suffix, expiresAt.Format("15:04 on 02 Jan"))
}

// interpolateColor maps value onto the 240..255 greyscale ramp.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	return lipgloss.Color(fmt.Sprintf("%d", int(240+15*normalized)))
}
