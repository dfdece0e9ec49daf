package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/depscope/depscope/internal/tree"
)

// Viewport is the drawable area handed to Render.
type Viewport struct {
	Width  int
	Height int
}

// Frame is one rendered screen of the tree. Lines always has exactly
// the viewport height entries and no line exceeds the viewport width.
type Frame struct {
	Lines []string
	// TotalRows is the number of visible rows in the whole tree,
	// independent of the viewport. Offset is the scroll offset the
	// frame was rendered at. Both feed the status bar.
	TotalRows int
	Offset    int
}

// Glyphs is the character set used for tree structure.
type Glyphs struct {
	Branch       string // edge to a child with more siblings below
	LastBranch   string // edge to the last child
	Continuation string // ancestor with more siblings below
	Empty        string // ancestor that was the last child
	Open         string // expanded node marker
	Closed       string // collapsed node marker
	Leaf         string // node without children
	Ellipsis     string // truncation marker
	CrumbSep     string // breadcrumb separator
}

// UTF8Glyphs returns the default box-drawing character set.
func UTF8Glyphs() Glyphs {
	return Glyphs{
		Branch:       "├──",
		LastBranch:   "└──",
		Continuation: "│  ",
		Empty:        "   ",
		Open:         "▾ ",
		Closed:       "▸ ",
		Leaf:         "• ",
		Ellipsis:     "…",
		CrumbSep:     " → ",
	}
}

// ASCIIGlyphs returns a plain-ASCII character set for terminals
// without good Unicode support.
func ASCIIGlyphs() Glyphs {
	return Glyphs{
		Branch:       "|--",
		LastBranch:   "`--",
		Continuation: "|  ",
		Empty:        "   ",
		Open:         "v ",
		Closed:       "> ",
		Leaf:         "* ",
		Ellipsis:     "...",
		CrumbSep:     " > ",
	}
}

// Style bundles the glyph set with the per-span text styles.
type Style struct {
	Glyphs Glyphs

	Branch     lipgloss.Style
	Name       lipgloss.Style
	Selected   lipgloss.Style
	Match      lipgloss.Style
	Version    lipgloss.Style
	Suffix     lipgloss.Style
	Repeat     lipgloss.Style
	Group      lipgloss.Style
	Breadcrumb lipgloss.Style
}

// DefaultStyle returns the standard color scheme.
func DefaultStyle() Style {
	return Style{
		Glyphs:     UTF8Glyphs(),
		Branch:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Name:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Selected:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		Match:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Version:    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		Suffix:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true),
		Repeat:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Group:      lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true),
		Breadcrumb: lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	}
}

// PlainStyle returns a style with no colors. Output is the bare text,
// which is what the tests assert against.
func PlainStyle() Style {
	return Style{Glyphs: UTF8Glyphs()}
}

type span struct {
	text  string
	style lipgloss.Style
}

// Render produces the frame for the current tree and state. It is a
// pure function of its inputs: identical tree, state and viewport
// yield an identical frame.
//
// The frame has exactly vp.Height lines. When the state is scrolled
// the first line is a breadcrumb from the root to the selection and
// the tree rows start one line later. Rows wider than the viewport
// are truncated with an ellipsis, never wrapped.
func Render(t *tree.Tree, s *State, vp Viewport, style Style) Frame {
	rows := s.VisibleRows()
	frame := Frame{
		TotalRows: len(rows),
		Offset:    s.Offset(),
	}
	if vp.Height <= 0 {
		return frame
	}

	lines := make([]string, 0, vp.Height)
	start := s.Offset()
	if start > 0 {
		lines = append(lines, renderBreadcrumb(t, s, vp.Width, style))
		start++
	}
	for i := start; i < len(rows) && len(lines) < vp.Height; i++ {
		lines = append(lines, renderRow(t, s, rows[i].ID, vp.Width, style))
	}
	for len(lines) < vp.Height {
		lines = append(lines, "")
	}
	frame.Lines = lines
	return frame
}

func renderRow(t *tree.Tree, s *State, id tree.NodeID, width int, style Style) string {
	n := t.Node(id)
	var spans []span

	if n.Kind == tree.KindGroup {
		// Group headers show lineage but no connector or marker.
		spans = append(spans, span{lineage(t, id, style.Glyphs), style.Branch})
		spans = append(spans, span{n.Label(), groupStyle(s, n, style)})
		return renderSpans(spans, width, style.Glyphs.Ellipsis)
	}

	if n.Parent != tree.None {
		spans = append(spans, span{lineage(t, id, style.Glyphs), style.Branch})
		spans = append(spans, span{connector(t, id, style.Glyphs), style.Branch})
		spans = append(spans, span{marker(s, n, style.Glyphs), style.Branch})
	}

	spans = append(spans, span{n.Package.Name, nameStyle(s, n, style)})
	if n.Package.Version != "" {
		spans = append(spans, span{" v" + n.Package.Version, style.Version})
	}
	if suffix := packageSuffix(n); suffix != "" {
		spans = append(spans, span{suffix, style.Suffix})
	}
	if n.Repeat {
		spans = append(spans, span{" (*)", style.Repeat})
	}
	return renderSpans(spans, width, style.Glyphs.Ellipsis)
}

func nameStyle(s *State, n *tree.Node, style Style) lipgloss.Style {
	if n.Path == s.Selected() {
		return style.Selected
	}
	if s.IsMatch(n.Path) {
		return style.Match
	}
	return style.Name
}

func groupStyle(s *State, n *tree.Node, style Style) lipgloss.Style {
	if n.Path == s.Selected() {
		return style.Selected
	}
	return style.Group
}

// packageSuffix annotates local-path and proc-macro packages the way
// cargo tree does.
func packageSuffix(n *tree.Node) string {
	var parts []string
	if n.ManifestDir != "" {
		parts = append(parts, n.ManifestDir)
	}
	if n.ProcMacro {
		parts = append(parts, "proc-macro")
	}
	if n.Optional {
		parts = append(parts, "optional")
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// lineage builds the indentation segments for a row: one segment per
// ancestor strictly between the root and the parent, a continuation
// bar when that ancestor has more siblings below it. Group headers
// occupy no horizontal space of their own, so they contribute nothing.
func lineage(t *tree.Tree, id tree.NodeID, g Glyphs) string {
	var segments []string
	n := t.Node(id)
	for ancestor := n.Parent; ancestor != tree.None; {
		a := t.Node(ancestor)
		if a.Parent == tree.None {
			break
		}
		if a.Kind != tree.KindGroup {
			if isLastChild(t, ancestor) {
				segments = append(segments, g.Empty)
			} else {
				segments = append(segments, g.Continuation)
			}
		}
		ancestor = a.Parent
	}
	// Walked child to root; the screen wants root to child.
	var b strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		b.WriteString(segments[i])
	}
	return b.String()
}

func connector(t *tree.Tree, id tree.NodeID, g Glyphs) string {
	if isLastChild(t, id) {
		return g.LastBranch
	}
	return g.Branch
}

func marker(s *State, n *tree.Node, g Glyphs) string {
	if n.Repeat || !n.HasChildren() {
		return g.Leaf
	}
	if s.IsExpanded(n.Path) {
		return g.Open
	}
	return g.Closed
}

func isLastChild(t *tree.Tree, id tree.NodeID) bool {
	n := t.Node(id)
	if n.Parent == tree.None {
		return true
	}
	siblings := t.Node(n.Parent).Children
	return siblings[len(siblings)-1] == id
}

// renderBreadcrumb draws the path from the root to the selection. When
// it does not fit, middle crumbs are elided keeping the root and as
// many trailing crumbs as the width allows.
func renderBreadcrumb(t *tree.Tree, s *State, width int, style Style) string {
	var crumbs []string
	id, ok := t.ByPath(s.Selected())
	if !ok {
		id = t.Root()
	}
	for id != tree.None {
		n := t.Node(id)
		crumbs = append(crumbs, n.Label())
		id = n.Parent
	}
	// Reverse into root-first order.
	for i, j := 0, len(crumbs)-1; i < j; i, j = i+1, j-1 {
		crumbs[i], crumbs[j] = crumbs[j], crumbs[i]
	}

	g := style.Glyphs
	line := strings.Join(crumbs, g.CrumbSep)
	for runewidth.StringWidth(line) > width && len(crumbs) > 2 {
		// Drop the crumb after the root, marking the elision.
		crumbs = append(crumbs[:1], crumbs[2:]...)
		elided := append([]string{crumbs[0], g.Ellipsis}, crumbs[1:]...)
		line = strings.Join(elided, g.CrumbSep)
	}
	return renderSpans([]span{{line, style.Breadcrumb}}, width, g.Ellipsis)
}

// renderSpans concatenates styled spans, truncating at the width with
// an ellipsis. Widths are display cells, not bytes. The result never
// exceeds width cells, even when the cut lands on a span boundary.
func renderSpans(spans []span, width int, ellipsis string) string {
	if width <= 0 {
		return ""
	}
	total := 0
	for _, sp := range spans {
		total += runewidth.StringWidth(sp.text)
	}

	var b strings.Builder
	if total <= width {
		for _, sp := range spans {
			b.WriteString(sp.style.Render(sp.text))
		}
		return b.String()
	}

	// Too wide: reserve room for the ellipsis up front, then emit
	// spans until the remaining budget runs out.
	avail := width - runewidth.StringWidth(ellipsis)
	if avail < 0 {
		avail = 0
	}
	cutStyle := spans[len(spans)-1].style
	for _, sp := range spans {
		w := runewidth.StringWidth(sp.text)
		if w <= avail {
			b.WriteString(sp.style.Render(sp.text))
			avail -= w
			continue
		}
		if avail > 0 {
			b.WriteString(sp.style.Render(runewidth.Truncate(sp.text, avail, "")))
		}
		cutStyle = sp.style
		break
	}
	if width >= runewidth.StringWidth(ellipsis) {
		b.WriteString(cutStyle.Render(ellipsis))
	}
	return b.String()
}
