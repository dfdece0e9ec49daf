// Package components provides reusable TUI components for depscope.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/depscope/depscope/internal/tui/styles"
)

// StatusBarData contains the data to display in the status bar.
type StatusBarData struct {
	Selected      string // label of the selected node
	Row           int    // 1-based row of the selection
	TotalRows     int    // visible rows in the whole tree
	Matches       int    // match count for the active query
	MatchIndex    int    // 1-based index of the current match, 0 when none
	Query         string // active search query
	ShowShortcuts bool
	Shortcuts     []ShortcutDef // optional custom shortcuts
}

// StatusBar is a component that displays position, search state and
// keyboard shortcuts.
type StatusBar struct {
	data  StatusBarData
	width int
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar() *StatusBar {
	return &StatusBar{
		data: StatusBarData{ShowShortcuts: true},
	}
}

// SetData updates the status bar data.
func (s *StatusBar) SetData(data StatusBarData) {
	s.data = data
}

// SetWidth sets the width of the status bar.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// View renders the status bar.
func (s *StatusBar) View() string {
	sep := lipgloss.NewStyle().
		Foreground(styles.Muted).
		Render(" │ ")

	selValue := lipgloss.NewStyle().
		Foreground(styles.Foreground).
		Render(s.data.Selected)

	posLabel := lipgloss.NewStyle().
		Foreground(styles.MutedLight).
		Render("Row: ")
	posValue := lipgloss.NewStyle().
		Foreground(styles.Secondary).
		Render(fmt.Sprintf("%d/%d", s.data.Row, s.data.TotalRows))

	leftContent := selValue + sep + posLabel + posValue

	if s.data.Query != "" {
		leftContent += sep + s.renderMatches()
	}

	rightContent := ""
	if s.data.ShowShortcuts {
		rightContent = s.renderShortcuts()
	}

	containerStyle := styles.StatusBarStyle
	if s.width > 0 {
		containerStyle = containerStyle.Width(s.width)

		leftWidth := lipgloss.Width(leftContent)
		rightWidth := lipgloss.Width(rightContent)
		padding := s.width - leftWidth - rightWidth - 2 // -2 for container padding
		if padding > 0 {
			return containerStyle.Render(leftContent + strings.Repeat(" ", padding) + rightContent)
		}
	}

	return containerStyle.Render(leftContent + "  " + rightContent)
}

// renderMatches renders the match counter for the active query.
func (s *StatusBar) renderMatches() string {
	if s.data.Matches == 0 {
		return styles.SearchNoMatchStyle.Render(fmt.Sprintf("%q: no matches", s.data.Query))
	}
	if s.data.MatchIndex > 0 {
		return styles.SearchCountStyle.Render(
			fmt.Sprintf("%q: %d/%d", s.data.Query, s.data.MatchIndex, s.data.Matches))
	}
	return styles.SearchCountStyle.Render(
		fmt.Sprintf("%q: %d matches", s.data.Query, s.data.Matches))
}

// renderShortcuts renders the keyboard shortcuts based on context.
func (s *StatusBar) renderShortcuts() string {
	if len(s.data.Shortcuts) > 0 {
		bar := NewShortcutBar(s.data.Shortcuts...)
		return bar.View()
	}

	var shortcuts []ShortcutDef
	if s.data.Query != "" {
		shortcuts = MatchShortcuts
	} else {
		shortcuts = BrowseShortcuts
	}

	bar := NewShortcutBar(shortcuts...)
	return bar.View()
}
