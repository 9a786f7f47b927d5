package session

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	id      lipgloss.Style
	prompt  lipgloss.Style
	command lipgloss.Style
	meta    lipgloss.Style
	output  lipgloss.Style
	section lipgloss.Style
	empty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		id:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		command: lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		meta:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		output:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")).PaddingLeft(4),
		section: lipgloss.NewStyle().MarginTop(1),
		empty:   lipgloss.NewStyle().Faint(true),
	}
}
