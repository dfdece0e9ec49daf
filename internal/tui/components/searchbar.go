// Package components provides reusable TUI components for depscope.
package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/depscope/depscope/internal/tui/styles"
)

// SearchBar wraps the bubbles textinput component as an incremental
// search prompt.
type SearchBar struct {
	model   textinput.Model
	focused bool
	width   int
}

// NewSearchBar creates a new SearchBar component.
func NewSearchBar() *SearchBar {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 40
	ti.Prompt = "/"
	ti.PromptStyle = styles.SearchPromptStyle

	return &SearchBar{model: ti}
}

// Focus focuses the search bar and clears the previous query.
func (s *SearchBar) Focus() tea.Cmd {
	s.focused = true
	s.model.Reset()
	return s.model.Focus()
}

// Blur removes focus from the search bar.
func (s *SearchBar) Blur() {
	s.focused = false
	s.model.Blur()
}

// Focused returns whether the search bar is focused.
func (s *SearchBar) Focused() bool {
	return s.focused
}

// Value returns the current query.
func (s *SearchBar) Value() string {
	return s.model.Value()
}

// SetValue sets the query.
func (s *SearchBar) SetValue(value string) {
	s.model.SetValue(value)
}

// SetWidth sets the width of the search bar.
func (s *SearchBar) SetWidth(width int) {
	s.width = width
	s.model.Width = width - 4
	if s.model.Width < 10 {
		s.model.Width = 10
	}
}

// Update handles messages for the search bar.
func (s *SearchBar) Update(msg tea.Msg) tea.Cmd {
	if !s.focused {
		return nil
	}

	var cmd tea.Cmd
	s.model, cmd = s.model.Update(msg)
	return cmd
}

// View renders the search bar.
func (s *SearchBar) View() string {
	if !s.focused {
		return ""
	}
	return s.model.View()
}
