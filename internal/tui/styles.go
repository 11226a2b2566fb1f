package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#F97316")
	colorMuted   = lipgloss.Color("#6B7280")
	colorDanger  = lipgloss.Color("#EF4444")

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Padding(0, 1)

	styleHelp = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	styleError = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true).
			Padding(0, 1)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colorPrimary).
		Padding(0, 1)
	s.Selected = s.Selected.
		Background(lipgloss.Color("#1F2937")).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(false)
	s.Cell = s.Cell.Padding(0, 1)
	return s
}
