// Package styles provides Lip Gloss styles for the depscope TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette for the TUI.
var (
	// Primary colors
	Primary    = lipgloss.Color("#7C3AED") // Purple
	Secondary  = lipgloss.Color("#06B6D4") // Cyan
	Warning    = lipgloss.Color("#F59E0B") // Amber
	Muted      = lipgloss.Color("#6B7280") // Gray
	MutedLight = lipgloss.Color("#9CA3AF") // Light Gray
	Background = lipgloss.Color("#1F2937") // Dark Gray
	Foreground = lipgloss.Color("#F9FAFB") // White
)

// Header styles.
var (
	// HeaderStyle is the main header container.
	HeaderStyle = lipgloss.NewStyle().
			Foreground(Foreground).
			Background(Primary).
			Padding(0, 1)

	// HeaderLabelStyle is for header labels.
	HeaderLabelStyle = lipgloss.NewStyle().
				Foreground(MutedLight)

	// HeaderValueStyle is for header values.
	HeaderValueStyle = lipgloss.NewStyle().
				Foreground(Foreground).
				Bold(true)

	// TitleStyle is for the application title.
	TitleStyle = lipgloss.NewStyle().
			Foreground(Foreground).
			Background(Primary).
			Bold(true).
			Padding(0, 1)
)

// Text styles.
var (
	// MutedTextStyle is for de-emphasized text.
	MutedTextStyle = lipgloss.NewStyle().
		Foreground(Muted)
)

// Status bar styles.
var (
	// StatusBarStyle is the main status bar container.
	StatusBarStyle = lipgloss.NewStyle().
			Background(Background).
			Padding(0, 1)

	// KeyStyle is for keyboard shortcut keys.
	KeyStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// HelpStyle is for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted)
)

// Search bar styles.
var (
	// SearchPromptStyle is for the leading slash of the search bar.
	SearchPromptStyle = lipgloss.NewStyle().
				Foreground(Secondary).
				Bold(true)

	// SearchCountStyle is for the match counter next to the query.
	SearchCountStyle = lipgloss.NewStyle().
				Foreground(MutedLight)

	// SearchNoMatchStyle is for the counter when nothing matches.
	SearchNoMatchStyle = lipgloss.NewStyle().
				Foreground(Warning)
)
