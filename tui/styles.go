// ABOUTME: lipgloss styles for the terminal board: column frames, card priorities, prompt and status bar.
// ABOUTME: StyleForPriority maps a card priority to its accent colour.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/corkboard/kanban"
)

var (
	// Column frames
	ColumnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	ActiveColumnStyle = ColumnStyle.
				BorderForeground(lipgloss.Color("62"))
	DropTargetStyle = ColumnStyle.
			BorderForeground(lipgloss.Color("214")).
			BorderStyle(lipgloss.DoubleBorder())

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))
	CountStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Cards
	CardStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	CursorStyle   = lipgloss.NewStyle().Reverse(true)
	CarriedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	LowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	MediumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	HighStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	UnknownStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	EmptyColStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	HelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Prompt
	PromptStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 2)
)

// StyleForPriority returns the accent style for a card priority.
func StyleForPriority(p kanban.Priority) lipgloss.Style {
	switch p {
	case kanban.PriorityLow:
		return LowStyle
	case kanban.PriorityMedium:
		return MediumStyle
	case kanban.PriorityHigh:
		return HighStyle
	default:
		return UnknownStyle
	}
}
