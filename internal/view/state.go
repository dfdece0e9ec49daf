// Package view holds the navigation state machine and the frame
// renderer. Both are pure with respect to the terminal: the state is
// mutated only by discrete commands handed in by the TUI layer, and
// rendering is a function of (tree, state, viewport). That split is
// what keeps the whole core testable without a terminal.
package view

import (
	"strings"

	"github.com/depscope/depscope/internal/tree"
)

// Command is an already-mapped user command. Key binding happens in the
// TUI layer; the core only consumes commands.
type Command int

const (
	// CmdNone is ignored.
	CmdNone Command = iota
	// CmdMoveDown selects the next visible row.
	CmdMoveDown
	// CmdMoveUp selects the previous visible row.
	CmdMoveUp
	// CmdMoveTop selects the first visible row.
	CmdMoveTop
	// CmdMoveBottom selects the last visible row.
	CmdMoveBottom
	// CmdPageDown moves the selection down by one viewport height.
	CmdPageDown
	// CmdPageUp moves the selection up by one viewport height.
	CmdPageUp
	// CmdHalfPageDown moves the selection down by half a viewport.
	CmdHalfPageDown
	// CmdHalfPageUp moves the selection up by half a viewport.
	CmdHalfPageUp
	// CmdMoveParent selects the parent of the current selection.
	CmdMoveParent
	// CmdNextSibling selects the next visible row at the same depth.
	CmdNextSibling
	// CmdPrevSibling selects the previous visible row at the same depth.
	CmdPrevSibling
	// CmdExpand expands the selection; when already expanded it
	// descends into the first child.
	CmdExpand
	// CmdCollapse collapses the selection; when already collapsed it
	// moves to the parent and collapses that.
	CmdCollapse
	// CmdToggle flips the selection's expansion.
	CmdToggle
	// CmdExpandAll expands every expandable node.
	CmdExpandAll
	// CmdCollapseAll clears the expanded set.
	CmdCollapseAll
	// CmdNextMatch jumps to the next search match, circularly.
	CmdNextMatch
	// CmdPrevMatch jumps to the previous search match, circularly.
	CmdPrevMatch
)

// Row is one visible row: a tree node at its row position.
type Row struct {
	ID tree.NodeID
}

// State is the navigation state of one viewing session. It owns no
// tree data, only references into the immutable tree.
//
// Invariants maintained by every command:
//   - the selected node is visible (every ancestor expanded) or is root
//   - cycle repeats are never in the expanded set
//   - the scroll offset keeps the selected row inside the viewport
type State struct {
	tree     *tree.Tree
	expanded map[string]bool
	selected string
	offset   int
	height   int

	searchActive bool
	query        string
	matches      []string
	matchSet     map[string]bool
	matchIdx     int
}

// NewState creates the initial state for a tree: root expanded and
// selected, no scroll, no search.
func NewState(t *tree.Tree) *State {
	s := &State{
		tree:     t,
		expanded: make(map[string]bool),
		matchIdx: -1,
	}
	root := t.Node(t.Root())
	s.selected = root.Path
	s.expandNode(t.Root())
	return s
}

// Apply executes one command. Commands are total: anything that does
// not apply to the current state is a no-op, never an error.
func (s *State) Apply(cmd Command) {
	switch cmd {
	case CmdMoveDown:
		s.moveBy(1)
	case CmdMoveUp:
		s.moveBy(-1)
	case CmdMoveTop:
		s.moveTo(0)
	case CmdMoveBottom:
		s.moveTo(len(s.VisibleRows()) - 1)
	case CmdPageDown:
		s.moveBy(max(1, s.height))
	case CmdPageUp:
		s.moveBy(-max(1, s.height))
	case CmdHalfPageDown:
		s.moveBy(max(1, s.height/2))
	case CmdHalfPageUp:
		s.moveBy(-max(1, s.height/2))
	case CmdMoveParent:
		s.moveParent()
	case CmdNextSibling:
		s.moveSibling(1)
	case CmdPrevSibling:
		s.moveSibling(-1)
	case CmdExpand:
		s.expand()
	case CmdCollapse:
		s.collapse()
	case CmdToggle:
		s.toggle()
	case CmdExpandAll:
		s.expandAll()
	case CmdCollapseAll:
		s.collapseAll()
	case CmdNextMatch:
		s.gotoMatch(1)
	case CmdPrevMatch:
		s.gotoMatch(-1)
	}
}

// Resize records a new viewport height and re-clamps the scroll offset.
// The selection is unchanged.
func (s *State) Resize(height int) {
	s.height = height
	s.ensureVisible()
}

// Selected returns the selected node's path key.
func (s *State) Selected() string {
	return s.selected
}

// SelectedNode returns the selected tree node.
func (s *State) SelectedNode() *tree.Node {
	if id, ok := s.tree.ByPath(s.selected); ok {
		return s.tree.Node(id)
	}
	return s.tree.Node(s.tree.Root())
}

// Offset returns the scroll offset (index of the first visible row).
func (s *State) Offset() int {
	return s.offset
}

// Height returns the last viewport height handed to Resize.
func (s *State) Height() int {
	return s.height
}

// IsExpanded reports whether the node with the given path is expanded.
func (s *State) IsExpanded(path string) bool {
	return s.expanded[path]
}

// VisibleRows returns the visible rows in depth-first pre-order: a
// node's children appear only when the node is expanded. The slice
// index is the row number used for all scroll and selection math. It
// is recomputed on demand rather than cached; tree sizes are bounded
// by realistic dependency counts and rendering dominates the cost.
func (s *State) VisibleRows() []Row {
	rows := make([]Row, 0, 64)
	s.collectVisible(s.tree.Root(), &rows)
	return rows
}

func (s *State) collectVisible(id tree.NodeID, rows *[]Row) {
	n := s.tree.Node(id)
	*rows = append(*rows, Row{ID: id})
	if !s.expanded[n.Path] {
		return
	}
	for _, child := range n.Children {
		s.collectVisible(child, rows)
	}
}

// selectedIndex returns the selected row index within rows. If the
// selection is not among them the root (index 0) is reported.
func (s *State) selectedIndex(rows []Row) int {
	for i, row := range rows {
		if s.tree.Node(row.ID).Path == s.selected {
			return i
		}
	}
	return 0
}

func (s *State) moveBy(delta int) {
	rows := s.VisibleRows()
	idx := s.selectedIndex(rows) + delta
	// Clamp, no wraparound: wrapping is disorienting on deep trees.
	if idx < 0 {
		idx = 0
	}
	if idx > len(rows)-1 {
		idx = len(rows) - 1
	}
	s.selected = s.tree.Node(rows[idx].ID).Path
	s.ensureVisible()
}

func (s *State) moveTo(idx int) {
	rows := s.VisibleRows()
	if len(rows) == 0 {
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(rows)-1 {
		idx = len(rows) - 1
	}
	s.selected = s.tree.Node(rows[idx].ID).Path
	s.ensureVisible()
}

func (s *State) moveParent() {
	n := s.SelectedNode()
	if n.Parent == tree.None {
		return
	}
	s.selected = s.tree.Node(n.Parent).Path
	s.ensureVisible()
}

// moveSibling scans visible rows for the next/previous row at the same
// depth, stopping at any shallower row: once the walk leaves the
// subtree there are no more siblings.
func (s *State) moveSibling(dir int) {
	rows := s.VisibleRows()
	idx := s.selectedIndex(rows)
	depth := s.tree.Node(rows[idx].ID).Depth

	for i := idx + dir; i >= 0 && i < len(rows); i += dir {
		d := s.tree.Node(rows[i].ID).Depth
		if d == depth {
			s.selected = s.tree.Node(rows[i].ID).Path
			s.ensureVisible()
			return
		}
		if d < depth {
			return
		}
	}
}

// expandable reports whether a node can be in the expanded set: cycle
// repeats and leaves cannot.
func expandable(n *tree.Node) bool {
	return !n.Repeat && n.HasChildren()
}

func (s *State) expandNode(id tree.NodeID) {
	n := s.tree.Node(id)
	if expandable(n) {
		s.expanded[n.Path] = true
	}
}

func (s *State) expand() {
	n := s.SelectedNode()
	if !expandable(n) {
		return
	}
	if !s.expanded[n.Path] {
		s.expanded[n.Path] = true
		s.ensureVisible()
		return
	}
	// Already open: descend into the first child.
	s.selected = s.tree.Node(n.Children[0]).Path
	s.ensureVisible()
}

func (s *State) collapse() {
	n := s.SelectedNode()
	if s.expanded[n.Path] {
		delete(s.expanded, n.Path)
		s.ensureVisible()
		return
	}
	// Already collapsed: bubble up, collapsing the parent.
	if n.Parent == tree.None {
		return
	}
	parent := s.tree.Node(n.Parent)
	s.selected = parent.Path
	delete(s.expanded, parent.Path)
	s.ensureVisible()
}

func (s *State) toggle() {
	n := s.SelectedNode()
	if !expandable(n) {
		return
	}
	if s.expanded[n.Path] {
		delete(s.expanded, n.Path)
	} else {
		s.expanded[n.Path] = true
	}
	s.ensureVisible()
}

func (s *State) expandAll() {
	for i := 0; i < s.tree.Len(); i++ {
		s.expandNode(tree.NodeID(i))
	}
	s.ensureVisible()
}

func (s *State) collapseAll() {
	s.expanded = make(map[string]bool)
	// Root is the only visible node left; the selection follows.
	s.selected = s.tree.Node(s.tree.Root()).Path
	s.offset = 0
}

// OpenToDepth expands all expandable nodes shallower than depth. Depth
// 1 opens the root only; 0 is a no-op.
func (s *State) OpenToDepth(depth int) {
	for i := 0; i < s.tree.Len(); i++ {
		n := s.tree.Node(tree.NodeID(i))
		if n.Depth < depth {
			s.expandNode(tree.NodeID(i))
		}
	}
	s.ensureVisible()
}

// ExpandAll expands every expandable node.
func (s *State) ExpandAll() {
	s.expandAll()
}

// ensureVisible clamps the scroll offset so the selected row stays
// inside the viewport. When scrolled the first viewport line is taken
// by the breadcrumb, so the usable window starts one row later.
func (s *State) ensureVisible() {
	// Repair selection first: collapsing an ancestor may have hidden it.
	s.repairSelection()

	if s.height <= 0 {
		s.offset = 0
		return
	}

	rows := s.VisibleRows()
	idx := s.selectedIndex(rows)

	top := s.offset
	if s.offset > 0 {
		top++
	}
	if idx < top {
		if idx <= 1 {
			s.offset = 0
		} else {
			s.offset = idx - 1
		}
	}
	if idx >= s.offset+s.height {
		s.offset = idx - s.height + 1
	}

	maxOffset := 0
	if len(rows) > s.height {
		maxOffset = len(rows) - s.height + 1
	}
	if s.offset > maxOffset {
		s.offset = maxOffset
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// repairSelection moves the selection to its nearest visible ancestor
// when an ancestor was collapsed underneath it.
func (s *State) repairSelection() {
	id, ok := s.tree.ByPath(s.selected)
	if !ok {
		s.selected = s.tree.Node(s.tree.Root()).Path
		return
	}
	n := s.tree.Node(id)
	for ancestor := n.Parent; ancestor != tree.None; {
		a := s.tree.Node(ancestor)
		if !s.expanded[a.Path] {
			// Hidden: the shallowest collapsed ancestor wins, since
			// anything below it is off screen too.
			s.selected = a.Path
			n = a
		}
		ancestor = a.Parent
	}
}

// SearchActive reports whether the query is being edited.
func (s *State) SearchActive() bool {
	return s.searchActive
}

// Query returns the current search query.
func (s *State) Query() string {
	return s.query
}

// MatchCount returns the number of matches for the current query.
func (s *State) MatchCount() int {
	return len(s.matches)
}

// MatchIndex returns the 0-based index of the current match, or -1
// before any match navigation.
func (s *State) MatchIndex() int {
	return s.matchIdx
}

// IsMatch reports whether the node with the given path matches the
// active query.
func (s *State) IsMatch(path string) bool {
	return s.matchSet[path]
}

// StartSearch enters search mode with an empty query.
func (s *State) StartSearch() {
	s.searchActive = true
	s.SetQuery("")
}

// SetQuery replaces the query and recomputes the match list against
// the full tree, independent of what is expanded. Matching is a
// case-insensitive substring test on the package name; group headers
// never match. The match list preserves depth-first order.
func (s *State) SetQuery(query string) {
	s.query = query
	s.matches = nil
	s.matchSet = nil
	s.matchIdx = -1
	if query == "" {
		return
	}

	needle := strings.ToLower(query)
	s.matchSet = make(map[string]bool)
	s.collectMatches(s.tree.Root(), needle)
}

func (s *State) collectMatches(id tree.NodeID, needle string) {
	n := s.tree.Node(id)
	if n.Kind == tree.KindPackage && strings.Contains(strings.ToLower(n.Package.Name), needle) {
		s.matches = append(s.matches, n.Path)
		s.matchSet[n.Path] = true
	}
	for _, child := range n.Children {
		s.collectMatches(child, needle)
	}
}

// AcceptSearch leaves search mode keeping the query, so match
// navigation and highlighting stay active.
func (s *State) AcceptSearch() {
	s.searchActive = false
}

// CancelSearch leaves search mode and clears the query and match list.
// The selection stays wherever it last landed.
func (s *State) CancelSearch() {
	s.searchActive = false
	s.SetQuery("")
}

// gotoMatch advances the match cursor circularly and navigates to the
// target: all its ancestors are expanded, it becomes selected, and the
// scroll follows.
func (s *State) gotoMatch(dir int) {
	if len(s.matches) == 0 {
		return
	}
	if s.matchIdx < 0 {
		if dir > 0 {
			s.matchIdx = 0
		} else {
			s.matchIdx = len(s.matches) - 1
		}
	} else {
		s.matchIdx = (s.matchIdx + dir + len(s.matches)) % len(s.matches)
	}

	path := s.matches[s.matchIdx]
	id, ok := s.tree.ByPath(path)
	if !ok {
		return
	}
	for ancestor := s.tree.Node(id).Parent; ancestor != tree.None; {
		a := s.tree.Node(ancestor)
		if expandable(a) {
			s.expanded[a.Path] = true
		}
		ancestor = a.Parent
	}
	s.selected = path
	s.ensureVisible()
}
