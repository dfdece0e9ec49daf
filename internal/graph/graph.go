// Package graph defines the raw dependency graph model consumed by the
// tree builder, and the loaders that produce it from cargo metadata or
// a Cargo.lock file. The graph is built once at startup and read-only
// afterwards.
package graph

import (
	"fmt"
	"sort"

	"github.com/depscope/depscope/internal/errors"
)

// PackageID uniquely identifies a package: two versions of the same
// name, or the same version from two sources, are distinct packages.
type PackageID struct {
	Name    string
	Version string
	Source  string
}

// String returns "name version" (source omitted; it only matters for
// identity, not display).
func (id PackageID) String() string {
	if id.Version == "" {
		return id.Name
	}
	return fmt.Sprintf("%s %s", id.Name, id.Version)
}

// IsZero reports whether the id is the zero value.
func (id PackageID) IsZero() bool {
	return id == PackageID{}
}

// Less orders ids by name, then version, then source.
func (id PackageID) Less(other PackageID) bool {
	if id.Name != other.Name {
		return id.Name < other.Name
	}
	if id.Version != other.Version {
		return id.Version < other.Version
	}
	return id.Source < other.Source
}

// DepKind classifies a dependency edge.
type DepKind int

const (
	// KindNormal is a regular [dependencies] entry.
	KindNormal DepKind = iota
	// KindDev is a [dev-dependencies] entry.
	KindDev
	// KindBuild is a [build-dependencies] entry.
	KindBuild
)

// String returns the manifest section label for the kind.
func (k DepKind) String() string {
	switch k {
	case KindDev:
		return "dev-dependencies"
	case KindBuild:
		return "build-dependencies"
	default:
		return "dependencies"
	}
}

// Edge is a directed dependency from one package to another.
type Edge struct {
	To       PackageID
	Kind     DepKind
	Optional bool
}

// Node is a package together with its outgoing dependency edges.
// Produced once by a loader; read-only afterwards.
type Node struct {
	ID PackageID
	// Edges are the direct dependencies, in loader order. The tree
	// builder imposes its own deterministic ordering.
	Edges []Edge
	// Features are the feature flags active for this package.
	Features []string
	// ManifestDir is the local manifest directory, set only for
	// workspace members.
	ManifestDir string
	// ProcMacro reports whether the package exposes a proc-macro target.
	ProcMacro bool
}

// Graph is the resolved dependency graph with an explicit root.
type Graph struct {
	nodes map[PackageID]*Node
	root  PackageID
}

// New creates an empty graph rooted at the given package.
func New(root PackageID) *Graph {
	return &Graph{
		nodes: make(map[PackageID]*Node),
		root:  root,
	}
}

// Add inserts a node, replacing any existing node with the same id.
func (g *Graph) Add(n *Node) {
	g.nodes[n.ID] = n
}

// Node returns the node for the given id.
func (g *Graph) Node(id PackageID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Root returns the root package id.
func (g *Graph) Root() PackageID {
	return g.root
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// IDs returns all package ids in sorted order.
func (g *Graph) IDs() []PackageID {
	ids := make([]PackageID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

// Validate checks structural consistency: the root must exist and every
// edge must reference a package in the node set. A dangling edge means
// the loader produced a malformed graph; no tree is built from it.
func (g *Graph) Validate() error {
	if _, ok := g.nodes[g.root]; !ok {
		return errors.New(errors.ErrGraphInconsistency, "root package missing from graph").
			WithDetails("root", g.root.String())
	}
	for _, id := range g.IDs() {
		for _, edge := range g.nodes[id].Edges {
			if _, ok := g.nodes[edge.To]; !ok {
				return errors.NewGraphInconsistency(id.String(), edge.To.String())
			}
		}
	}
	return nil
}
