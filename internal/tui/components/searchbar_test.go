package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewSearchBar(t *testing.T) {
	sb := NewSearchBar()

	if sb.Focused() {
		t.Error("search bar should start unfocused")
	}
	if sb.Value() != "" {
		t.Error("search bar should start empty")
	}
}

func TestSearchBarFocusResetsQuery(t *testing.T) {
	sb := NewSearchBar()
	sb.SetValue("old query")

	sb.Focus()
	if !sb.Focused() {
		t.Error("Focus should focus the search bar")
	}
	if sb.Value() != "" {
		t.Errorf("Focus should clear the previous query, got %q", sb.Value())
	}

	sb.Blur()
	if sb.Focused() {
		t.Error("Blur should unfocus the search bar")
	}
}

func TestSearchBarTyping(t *testing.T) {
	sb := NewSearchBar()
	sb.Focus()

	for _, r := range "serde" {
		sb.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	if sb.Value() != "serde" {
		t.Errorf("value = %q, want serde", sb.Value())
	}
}

func TestSearchBarIgnoresInputWhenBlurred(t *testing.T) {
	sb := NewSearchBar()

	sb.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if sb.Value() != "" {
		t.Error("blurred search bar should ignore input")
	}
}

func TestSearchBarView(t *testing.T) {
	sb := NewSearchBar()

	if sb.View() != "" {
		t.Error("blurred search bar should render nothing")
	}

	sb.Focus()
	sb.SetValue("tokio")
	if !strings.Contains(sb.View(), "tokio") {
		t.Error("focused search bar should render the query")
	}
}

func TestSearchBarSetWidth(t *testing.T) {
	sb := NewSearchBar()

	sb.SetWidth(8)
	if sb.model.Width < 10 {
		t.Error("width should be clamped to a usable minimum")
	}

	sb.SetWidth(100)
	if sb.model.Width != 96 {
		t.Errorf("model width = %d, want 96", sb.model.Width)
	}
}
