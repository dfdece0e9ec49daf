// Package tree converts the raw dependency graph into the renderable
// tree the viewer navigates. The same package can occur at several tree
// positions (diamond dependencies), so tree nodes are identified by
// their path from the root rather than by package id. A package that
// re-occurs along its own ancestor path becomes a childless cycle
// repeat, which is what guarantees construction terminates on cyclic
// graphs.
//
// The tree is immutable after Build: expansion and selection are view
// state, not tree mutations.
package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/depscope/depscope/internal/graph"
)

// NodeID identifies a node within the tree arena.
type NodeID int

// None is the absent NodeID (e.g. the root's parent).
const None NodeID = -1

// Kind distinguishes package rows from dependency-group header rows.
type Kind int

const (
	// KindPackage is a regular package node.
	KindPackage Kind = iota
	// KindGroup is a dependency-group header ([dev-dependencies] or
	// [build-dependencies]).
	KindGroup
)

// Node is one occurrence of a package (or a group header) at a specific
// tree position. Fields are set during Build and must not be modified.
type Node struct {
	// Kind distinguishes package nodes from group headers.
	Kind Kind
	// Package is the referenced package id (package nodes only).
	Package graph.PackageID
	// Group is the dependency kind of a group header node.
	Group graph.DepKind
	// Parent is the parent node id, None for the root.
	Parent NodeID
	// Children are the child node ids in render order.
	Children []NodeID
	// Depth is the distance from the root.
	Depth int
	// Path is the node's stable identity: the segment sequence from the
	// root. Unique across the tree; expansion state is keyed on it.
	Path string
	// Repeat marks a cycle guard: the package already occurs on this
	// node's ancestor path. Repeats have no children and can never be
	// expanded.
	Repeat bool
	// Optional marks an optional dependency edge.
	Optional bool
	// ManifestDir is the local manifest directory (workspace members).
	ManifestDir string
	// ProcMacro reports whether the package exposes a proc-macro target.
	ProcMacro bool
}

// Label returns the node's display name: the package name, or the
// bracketed section label for group headers.
func (n *Node) Label() string {
	if n.Kind == KindGroup {
		return "[" + n.Group.String() + "]"
	}
	return n.Package.Name
}

// HasChildren reports whether the node has any children.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Tree is the arena of nodes produced by Build.
type Tree struct {
	nodes  []Node
	byPath map[string]NodeID
}

// Options control which dependency groups are materialized.
type Options struct {
	// IncludeDev materializes [dev-dependencies] groups.
	IncludeDev bool
	// IncludeBuild materializes [build-dependencies] groups.
	IncludeBuild bool
}

// DefaultOptions includes both dev and build groups.
func DefaultOptions() Options {
	return Options{IncludeDev: true, IncludeBuild: true}
}

// Build constructs the tree for the graph's root with default options.
func Build(g *graph.Graph) (*Tree, error) {
	return BuildWithOptions(g, DefaultOptions())
}

// BuildWithOptions constructs the tree for the graph's root.
//
// The traversal is depth-first from the root, keeping the current path
// of package ids as the recursion stack. Children are ordered
// deterministically: normal dependencies sorted by (name, version,
// source), then the dev group, then the build group, each group's
// children sorted the same way. Identical input always yields an
// identical tree.
func BuildWithOptions(g *graph.Graph, opts Options) (*Tree, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	b := &builder{
		graph: g,
		opts:  opts,
		tree: &Tree{
			byPath: make(map[string]NodeID),
		},
		onPath: make(map[graph.PackageID]bool),
	}
	b.buildPackage(g.Root(), None, 0, "")
	return b.tree, nil
}

// Root returns the root node id.
func (t *Tree) Root() NodeID {
	return 0
}

// Node returns the node for the given id, or nil if out of range.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[int(id)]
}

// ByPath returns the node id for a path key.
func (t *Tree) ByPath(path string) (NodeID, bool) {
	id, ok := t.byPath[path]
	return id, ok
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Packages counts distinct package ids in the tree (repeats and group
// headers excluded from double-counting).
func (t *Tree) Packages() int {
	seen := make(map[graph.PackageID]bool)
	for i := range t.nodes {
		if t.nodes[i].Kind == KindPackage {
			seen[t.nodes[i].Package] = true
		}
	}
	return len(seen)
}

// String returns a stable textual dump of the tree, one node per line
// in depth-first order. Two structurally identical trees produce
// identical dumps.
func (t *Tree) String() string {
	var sb strings.Builder
	t.dump(&sb, t.Root())
	return sb.String()
}

func (t *Tree) dump(sb *strings.Builder, id NodeID) {
	n := t.Node(id)
	sb.WriteString(strings.Repeat("  ", n.Depth))
	sb.WriteString(n.Label())
	if n.Kind == KindPackage && n.Package.Version != "" {
		fmt.Fprintf(sb, " v%s", n.Package.Version)
	}
	if n.Repeat {
		sb.WriteString(" (*)")
	}
	sb.WriteString("\n")
	for _, child := range n.Children {
		t.dump(sb, child)
	}
}

type builder struct {
	graph  *graph.Graph
	opts   Options
	tree   *Tree
	onPath map[graph.PackageID]bool
}

// buildPackage emits the node for pkg and recurses into its
// dependencies. parentPath is the path key prefix ("" for the root).
func (b *builder) buildPackage(pkg graph.PackageID, parent NodeID, depth int, parentPath string) NodeID {
	path := joinPath(parentPath, packageSegment(pkg))
	repeat := b.onPath[pkg]

	gn, known := b.graph.Node(pkg)

	node := Node{
		Kind:    KindPackage,
		Package: pkg,
		Parent:  parent,
		Depth:   depth,
		Path:    path,
		Repeat:  repeat,
	}
	if known {
		node.ManifestDir = gn.ManifestDir
		node.ProcMacro = gn.ProcMacro
	}

	id := b.push(node)
	if repeat || !known {
		return id
	}

	b.onPath[pkg] = true

	normal, dev, build := splitEdges(gn.Edges)
	optional := make(map[graph.PackageID]bool)
	for _, e := range gn.Edges {
		if e.Optional {
			optional[e.To] = true
		}
	}

	var children []NodeID
	for _, dep := range normal {
		child := b.buildPackage(dep, id, depth+1, path)
		b.tree.nodes[child].Optional = optional[dep]
		children = append(children, child)
	}
	if b.opts.IncludeDev && len(dev) > 0 {
		children = append(children, b.buildGroup(graph.KindDev, dev, id, depth, path))
	}
	if b.opts.IncludeBuild && len(build) > 0 {
		children = append(children, b.buildGroup(graph.KindBuild, build, id, depth, path))
	}
	b.tree.nodes[id].Children = children

	delete(b.onPath, pkg)
	return id
}

// buildGroup emits a group header node and the packages beneath it.
// Groups sit at the same depth as their siblings but add a path
// segment, so expansion state of the group is independent of the
// parent package's other occurrences.
func (b *builder) buildGroup(kind graph.DepKind, deps []graph.PackageID, parent NodeID, depth int, parentPath string) NodeID {
	path := joinPath(parentPath, "["+kind.String()+"]")
	id := b.push(Node{
		Kind:   KindGroup,
		Group:  kind,
		Parent: parent,
		Depth:  depth + 1,
		Path:   path,
	})

	var children []NodeID
	for _, dep := range deps {
		children = append(children, b.buildPackage(dep, id, depth+2, path))
	}
	b.tree.nodes[id].Children = children
	return id
}

func (b *builder) push(n Node) NodeID {
	id := NodeID(len(b.tree.nodes))
	b.tree.nodes = append(b.tree.nodes, n)
	b.tree.byPath[n.Path] = id
	return id
}

// splitEdges buckets edges by kind and sorts each bucket, deduplicating
// repeated edges to the same package within a bucket.
func splitEdges(edges []graph.Edge) (normal, dev, build []graph.PackageID) {
	bucket := func(ids []graph.PackageID, to graph.PackageID) []graph.PackageID {
		for _, id := range ids {
			if id == to {
				return ids
			}
		}
		return append(ids, to)
	}

	for _, e := range edges {
		switch e.Kind {
		case graph.KindDev:
			dev = bucket(dev, e.To)
		case graph.KindBuild:
			build = bucket(build, e.To)
		default:
			normal = bucket(normal, e.To)
		}
	}

	sortIDs := func(ids []graph.PackageID) {
		sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	}
	sortIDs(normal)
	sortIDs(dev)
	sortIDs(build)
	return normal, dev, build
}

func packageSegment(id graph.PackageID) string {
	if id.Source == "" {
		return id.String()
	}
	return fmt.Sprintf("%s (%s)", id.String(), id.Source)
}

func joinPath(parent, segment string) string {
	if parent == "" {
		return segment
	}
	return parent + "/" + segment
}
