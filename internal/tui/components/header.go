// Package components provides reusable TUI components for depscope.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/depscope/depscope/internal/tui/styles"
)

// HeaderData contains the data to display in the header.
type HeaderData struct {
	RootName    string
	RootVersion string
	Source      string // "metadata" or "lockfile"
	Packages    int
}

// Header is a component that displays the loaded graph in a header bar.
type Header struct {
	data  HeaderData
	width int
}

// NewHeader creates a new Header component.
func NewHeader() *Header {
	return &Header{
		data: HeaderData{
			RootName: "-",
			Source:   "-",
		},
	}
}

// SetData updates the header data.
func (h *Header) SetData(data HeaderData) {
	h.data = data
}

// SetWidth sets the width for the header.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// View renders the header.
func (h *Header) View() string {
	title := styles.TitleStyle.Render("DEPSCOPE")

	sep := lipgloss.NewStyle().
		Foreground(styles.MutedLight).
		Render(" │ ")

	root := h.data.RootName
	if h.data.RootVersion != "" {
		root += " " + h.data.RootVersion
	}
	rootLabel := styles.HeaderLabelStyle.Render("Root: ")
	rootValue := styles.HeaderValueStyle.Render(root)

	sourceLabel := styles.HeaderLabelStyle.Render("Source: ")
	sourceValue := styles.HeaderValueStyle.Render(h.data.Source)

	pkgLabel := styles.HeaderLabelStyle.Render("Packages: ")
	pkgValue := styles.HeaderValueStyle.Render(fmt.Sprintf("%d", h.data.Packages))

	content := fmt.Sprintf("%s%s%s%s%s%s%s%s%s%s",
		title, sep,
		rootLabel, rootValue, sep,
		sourceLabel, sourceValue, sep,
		pkgLabel, pkgValue,
	)

	headerStyle := styles.HeaderStyle
	if h.width > 0 {
		headerStyle = headerStyle.Width(h.width)
	}

	return headerStyle.Render(content)
}
