// Package tui provides the terminal user interface for depscope.
package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/depscope/depscope/internal/logging"
	"github.com/depscope/depscope/internal/tree"
	"github.com/depscope/depscope/internal/tui/components"
	"github.com/depscope/depscope/internal/view"
)

// Options configure the TUI model.
type Options struct {
	// ASCII switches the tree glyphs to plain ASCII.
	ASCII bool
	// InitialDepth pre-opens the tree to this depth. Zero keeps the
	// default of an expanded root.
	InitialDepth int
	// ExpandAll pre-opens the whole tree.
	ExpandAll bool
	// Source names the loader the graph came from, for the header.
	Source string
}

// Model is the Bubble Tea model for the depscope TUI.
type Model struct {
	// Components
	header      *components.Header
	statusBar   *components.StatusBar
	searchBar   *components.SearchBar
	helpOverlay *components.HelpOverlay

	// Viewing session
	tree  *tree.Tree
	state *view.State
	style view.Style

	// Window dimensions
	width  int
	height int

	// Flags
	quitting bool
}

// New creates a new TUI model for the given tree.
func New(t *tree.Tree, opts Options) *Model {
	style := view.DefaultStyle()
	if opts.ASCII {
		style.Glyphs = view.ASCIIGlyphs()
	}

	state := view.NewState(t)
	if opts.ExpandAll {
		state.ExpandAll()
	} else if opts.InitialDepth > 1 {
		state.OpenToDepth(opts.InitialDepth)
	}

	m := &Model{
		header:      components.NewHeader(),
		statusBar:   components.NewStatusBar(),
		searchBar:   components.NewSearchBar(),
		helpOverlay: components.NewHelpOverlay(),
		tree:        t,
		state:       state,
		style:       style,
	}

	root := t.Node(t.Root())
	m.header.SetData(components.HeaderData{
		RootName:    root.Package.Name,
		RootVersion: root.Package.Version,
		Source:      opts.Source,
		Packages:    t.Packages(),
	})
	return m
}

// Init is the Bubble Tea initialization function.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The help overlay captures input while visible.
	if m.helpOverlay.IsVisible() {
		if cmd := m.helpOverlay.Update(msg); cmd != nil {
			return m, cmd
		}
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, nil
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searchBar.Focused() {
			return m.handleSearchKey(msg)
		}
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.searchBar.SetWidth(msg.Width)
		m.helpOverlay.SetSize(60, 25)
		m.state.Resize(m.treeHeight())
		return m, nil

	case components.HelpClosedMsg:
		return m, nil
	}

	return m, nil
}

// handleSearchKey routes input while the search bar is focused.
func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.searchBar.Blur()
		m.state.CancelSearch()
		m.state.Resize(m.treeHeight())
		return m, nil

	case "enter":
		m.searchBar.Blur()
		m.state.AcceptSearch()
		m.state.Resize(m.treeHeight())
		return m, nil
	}

	cmd := m.searchBar.Update(msg)
	m.state.SetQuery(m.searchBar.Value())
	return m, cmd
}

// handleKeyPress handles keyboard input while browsing.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.helpOverlay.Toggle()
		return m, nil

	case "j", "down":
		m.state.Apply(view.CmdMoveDown)
	case "k", "up":
		m.state.Apply(view.CmdMoveUp)
	case "g", "home":
		m.state.Apply(view.CmdMoveTop)
	case "G", "end":
		m.state.Apply(view.CmdMoveBottom)
	case "pgdown":
		m.state.Apply(view.CmdPageDown)
	case "pgup":
		m.state.Apply(view.CmdPageUp)
	case "ctrl+d":
		m.state.Apply(view.CmdHalfPageDown)
	case "ctrl+u":
		m.state.Apply(view.CmdHalfPageUp)
	case "p":
		m.state.Apply(view.CmdMoveParent)
	case "]":
		m.state.Apply(view.CmdNextSibling)
	case "[":
		m.state.Apply(view.CmdPrevSibling)

	case "l", "right", "+":
		m.state.Apply(view.CmdExpand)
	case "h", "left", "-":
		m.state.Apply(view.CmdCollapse)
	case "enter", " ":
		m.state.Apply(view.CmdToggle)
	case "E":
		m.state.Apply(view.CmdExpandAll)
	case "C":
		m.state.Apply(view.CmdCollapseAll)

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		depth, _ := strconv.Atoi(key)
		m.state.Apply(view.CmdCollapseAll)
		m.state.OpenToDepth(depth)

	case "/":
		m.state.StartSearch()
		cmd := m.searchBar.Focus()
		m.state.Resize(m.treeHeight())
		return m, cmd

	case "n":
		m.state.Apply(view.CmdNextMatch)
	case "N":
		m.state.Apply(view.CmdPrevMatch)

	case "esc":
		if m.state.Query() != "" {
			m.state.CancelSearch()
		}
	}

	return m, nil
}

// treeHeight returns the rows available for the tree frame: the full
// window minus header, status bar and the search bar when focused.
func (m *Model) treeHeight() int {
	h := m.height - 2
	if m.searchBar.Focused() {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

// View renders the TUI.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.header.View())
	b.WriteString("\n")

	b.WriteString(m.renderTree())
	b.WriteString("\n")

	if m.searchBar.Focused() {
		b.WriteString(m.searchBar.View())
		b.WriteString("\n")
	}

	m.updateStatusBar()
	b.WriteString(m.statusBar.View())

	out := b.String()
	if m.helpOverlay.IsVisible() {
		out = m.renderOverlay(out, m.helpOverlay.View())
	}
	return out
}

// renderTree renders the tree frame for the current window.
func (m *Model) renderTree() string {
	vp := view.Viewport{Width: m.width, Height: m.treeHeight()}
	if vp.Width <= 0 {
		vp.Width = 80
	}
	frame := view.Render(m.tree, m.state, vp, m.style)
	return strings.Join(frame.Lines, "\n")
}

// updateStatusBar pushes the current position and search state into
// the status bar.
func (m *Model) updateStatusBar() {
	rows := m.state.VisibleRows()
	row := 0
	for i, r := range rows {
		if m.tree.Node(r.ID).Path == m.state.Selected() {
			row = i + 1
			break
		}
	}

	selected := m.state.SelectedNode()
	label := selected.Label()
	if selected.Kind == tree.KindPackage && selected.Package.Version != "" {
		label += " v" + selected.Package.Version
	}

	var shortcuts []components.ShortcutDef
	if m.searchBar.Focused() {
		shortcuts = components.SearchShortcuts
	}

	m.statusBar.SetData(components.StatusBarData{
		Selected:      label,
		Row:           row,
		TotalRows:     len(rows),
		Matches:       m.state.MatchCount(),
		MatchIndex:    m.state.MatchIndex() + 1,
		Query:         m.state.Query(),
		ShowShortcuts: true,
		Shortcuts:     shortcuts,
	})
}

// renderOverlay renders an overlay component on top of the base view.
func (m *Model) renderOverlay(base, overlay string) string {
	if overlay == "" {
		return base
	}
	return base + "\n" + overlay
}

// Run starts the TUI for the given tree and blocks until it exits.
func Run(t *tree.Tree, opts Options) error {
	logging.Debug("starting tui", "packages", t.Packages(), "source", opts.Source)
	p := tea.NewProgram(New(t, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
