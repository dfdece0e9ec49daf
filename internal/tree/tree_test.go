package tree

import (
	"errors"
	"strings"
	"testing"

	deperrors "github.com/depscope/depscope/internal/errors"
	"github.com/depscope/depscope/internal/graph"
)

func pid(name, version string) graph.PackageID {
	return graph.PackageID{Name: name, Version: version}
}

// buildGraph assembles a graph from an adjacency list of normal edges.
func buildGraph(t *testing.T, root string, adjacency map[string][]string) *graph.Graph {
	t.Helper()
	g := graph.New(pid(root, "1.0.0"))
	for name, deps := range adjacency {
		node := &graph.Node{ID: pid(name, "1.0.0")}
		for _, dep := range deps {
			node.Edges = append(node.Edges, graph.Edge{To: pid(dep, "1.0.0")})
		}
		g.Add(node)
	}
	return g
}

func mustBuild(t *testing.T, g *graph.Graph) *Tree {
	t.Helper()
	tr, err := Build(g)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return tr
}

func TestBuildSingleNode(t *testing.T) {
	g := buildGraph(t, "root", map[string][]string{"root": nil})
	tr := mustBuild(t, g)

	if tr.Len() != 1 {
		t.Fatalf("expected 1 node, got %d", tr.Len())
	}
	root := tr.Node(tr.Root())
	if root.Parent != None {
		t.Error("root should have no parent")
	}
	if root.HasChildren() {
		t.Error("root without deps should have no children")
	}
}

func TestBuildChildrenSorted(t *testing.T) {
	g := buildGraph(t, "root", map[string][]string{
		"root": {"zeta", "alpha", "mid"},
		"zeta": nil, "alpha": nil, "mid": nil,
	})
	tr := mustBuild(t, g)

	root := tr.Node(tr.Root())
	var names []string
	for _, child := range root.Children {
		names = append(names, tr.Node(child).Package.Name)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("children order %v, want %v", names, want)
		}
	}
}

func TestBuildVersionOrdering(t *testing.T) {
	g := graph.New(pid("root", "1.0.0"))
	g.Add(&graph.Node{ID: pid("root", "1.0.0"), Edges: []graph.Edge{
		{To: pid("dep", "2.0.0")},
		{To: pid("dep", "1.0.0")},
	}})
	g.Add(&graph.Node{ID: pid("dep", "1.0.0")})
	g.Add(&graph.Node{ID: pid("dep", "2.0.0")})

	tr := mustBuild(t, g)
	root := tr.Node(tr.Root())
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
	if tr.Node(root.Children[0]).Package.Version != "1.0.0" {
		t.Error("same-name children should be ordered by version")
	}
}

func TestBuildDiamond(t *testing.T) {
	// a and b both depend on shared; shared appears twice, at two paths.
	g := buildGraph(t, "root", map[string][]string{
		"root":   {"a", "b"},
		"a":      {"shared"},
		"b":      {"shared"},
		"shared": nil,
	})
	tr := mustBuild(t, g)

	var occurrences []*Node
	for i := 0; i < tr.Len(); i++ {
		n := tr.Node(NodeID(i))
		if n.Package.Name == "shared" {
			occurrences = append(occurrences, n)
		}
	}
	if len(occurrences) != 2 {
		t.Fatalf("shared should occur at 2 tree positions, got %d", len(occurrences))
	}
	if occurrences[0].Path == occurrences[1].Path {
		t.Error("distinct occurrences must have distinct path keys")
	}
	for _, n := range occurrences {
		if n.Repeat {
			t.Error("diamond sharing is not a cycle; occurrences should not be repeats")
		}
	}
}

func TestBuildCycleThroughRoot(t *testing.T) {
	g := buildGraph(t, "root", map[string][]string{
		"root": {"a"},
		"a":    {"root"},
	})
	tr := mustBuild(t, g)

	// root -> a -> root(*); the inner root is a childless repeat.
	a := tr.Node(tr.Node(tr.Root()).Children[0])
	if a.Package.Name != "a" {
		t.Fatalf("expected a, got %s", a.Package.Name)
	}
	if len(a.Children) != 1 {
		t.Fatalf("a should have exactly one child, got %d", len(a.Children))
	}
	inner := tr.Node(a.Children[0])
	if inner.Package.Name != "root" {
		t.Errorf("cycle repeat should reference root, got %s", inner.Package.Name)
	}
	if !inner.Repeat {
		t.Error("re-occurrence of an ancestor must be flagged as a repeat")
	}
	if inner.HasChildren() {
		t.Error("cycle repeats must be childless")
	}
}

func TestBuildLongCycleTerminates(t *testing.T) {
	g := buildGraph(t, "root", map[string][]string{
		"root": {"a"},
		"a":    {"b"},
		"b":    {"c"},
		"c":    {"a"},
	})
	tr := mustBuild(t, g)

	// Walk to the deepest node; it must be the repeat of a.
	id := tr.Root()
	for tr.Node(id).HasChildren() {
		id = tr.Node(id).Children[0]
	}
	leaf := tr.Node(id)
	if leaf.Package.Name != "a" || !leaf.Repeat {
		t.Errorf("deepest node should be the a repeat, got %s (repeat=%v)", leaf.Package.Name, leaf.Repeat)
	}
}

func TestBuildSelfDependency(t *testing.T) {
	g := buildGraph(t, "root", map[string][]string{
		"root": {"root"},
	})
	tr := mustBuild(t, g)

	root := tr.Node(tr.Root())
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children))
	}
	if !tr.Node(root.Children[0]).Repeat {
		t.Error("self dependency should be a repeat")
	}
}

func TestBuildDiamondNotRepeat(t *testing.T) {
	// A package seen on a *different* path is not a cycle: only
	// ancestors of the current node count.
	g := buildGraph(t, "root", map[string][]string{
		"root": {"a", "b"},
		"a":    {"c"},
		"b":    {"c"},
		"c":    {"d"},
		"d":    nil,
	})
	tr := mustBuild(t, g)

	count := 0
	for i := 0; i < tr.Len(); i++ {
		n := tr.Node(NodeID(i))
		if n.Package.Name == "d" {
			count++
			if n.Repeat {
				t.Error("d is reachable twice but never through itself; not a repeat")
			}
		}
	}
	if count != 2 {
		t.Errorf("d should be materialized under both paths, got %d", count)
	}
}

func TestBuildUnreachableExcluded(t *testing.T) {
	g := buildGraph(t, "root", map[string][]string{
		"root":    {"a"},
		"a":       nil,
		"orphan":  {"a"},
		"orphan2": nil,
	})
	tr := mustBuild(t, g)

	for i := 0; i < tr.Len(); i++ {
		if name := tr.Node(NodeID(i)).Package.Name; name == "orphan" || name == "orphan2" {
			t.Errorf("unreachable package %s should not be in the tree", name)
		}
	}
	if tr.Len() != 2 {
		t.Errorf("expected 2 nodes, got %d", tr.Len())
	}
}

func TestBuildDanglingEdge(t *testing.T) {
	g := graph.New(pid("root", "1.0.0"))
	g.Add(&graph.Node{ID: pid("root", "1.0.0"), Edges: []graph.Edge{{To: pid("ghost", "0.0.1")}}})

	_, err := Build(g)
	if err == nil {
		t.Fatal("Build should fail on a dangling edge")
	}
	if !errors.Is(err, deperrors.ErrGraphInconsistency) {
		t.Errorf("expected ErrGraphInconsistency, got %v", err)
	}
}

func TestBuildIdempotent(t *testing.T) {
	g := buildGraph(t, "root", map[string][]string{
		"root": {"b", "a"},
		"a":    {"c", "b"},
		"b":    {"c"},
		"c":    {"a"},
	})

	first := mustBuild(t, g).String()
	second := mustBuild(t, g).String()
	if first != second {
		t.Errorf("two builds of the same graph should serialize identically:\n%s\nvs\n%s", first, second)
	}
}

func TestBuildPathKeysUnique(t *testing.T) {
	g := buildGraph(t, "root", map[string][]string{
		"root": {"a", "b"},
		"a":    {"c"},
		"b":    {"c"},
		"c":    nil,
	})
	tr := mustBuild(t, g)

	seen := make(map[string]bool)
	for i := 0; i < tr.Len(); i++ {
		path := tr.Node(NodeID(i)).Path
		if seen[path] {
			t.Errorf("duplicate path key %q", path)
		}
		seen[path] = true
	}
}

func TestBuildGroups(t *testing.T) {
	g := graph.New(pid("root", "1.0.0"))
	g.Add(&graph.Node{ID: pid("root", "1.0.0"), Edges: []graph.Edge{
		{To: pid("serde", "1.0.0"), Kind: graph.KindNormal},
		{To: pid("trybuild", "1.0.0"), Kind: graph.KindDev},
		{To: pid("cc", "1.0.0"), Kind: graph.KindBuild},
	}})
	g.Add(&graph.Node{ID: pid("serde", "1.0.0")})
	g.Add(&graph.Node{ID: pid("trybuild", "1.0.0")})
	g.Add(&graph.Node{ID: pid("cc", "1.0.0")})

	tr := mustBuild(t, g)
	root := tr.Node(tr.Root())
	if len(root.Children) != 3 {
		t.Fatalf("expected serde + 2 groups, got %d children", len(root.Children))
	}

	first := tr.Node(root.Children[0])
	if first.Kind != KindPackage || first.Package.Name != "serde" {
		t.Error("normal dependencies should come before groups")
	}
	devGroup := tr.Node(root.Children[1])
	if devGroup.Kind != KindGroup || devGroup.Group != graph.KindDev {
		t.Errorf("second child should be the dev group, got %v", devGroup.Label())
	}
	if devGroup.Label() != "[dev-dependencies]" {
		t.Errorf("unexpected group label %q", devGroup.Label())
	}
	buildGroup := tr.Node(root.Children[2])
	if buildGroup.Kind != KindGroup || buildGroup.Group != graph.KindBuild {
		t.Errorf("third child should be the build group, got %v", buildGroup.Label())
	}

	dev := tr.Node(devGroup.Children[0])
	if dev.Package.Name != "trybuild" {
		t.Errorf("dev group should contain trybuild, got %s", dev.Package.Name)
	}
}

func TestBuildGroupsExcluded(t *testing.T) {
	g := graph.New(pid("root", "1.0.0"))
	g.Add(&graph.Node{ID: pid("root", "1.0.0"), Edges: []graph.Edge{
		{To: pid("serde", "1.0.0"), Kind: graph.KindNormal},
		{To: pid("trybuild", "1.0.0"), Kind: graph.KindDev},
	}})
	g.Add(&graph.Node{ID: pid("serde", "1.0.0")})
	g.Add(&graph.Node{ID: pid("trybuild", "1.0.0")})

	tr, err := BuildWithOptions(g, Options{IncludeDev: false, IncludeBuild: false})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	root := tr.Node(tr.Root())
	if len(root.Children) != 1 {
		t.Fatalf("dev group should be excluded, got %d children", len(root.Children))
	}
}

func TestByPath(t *testing.T) {
	g := buildGraph(t, "root", map[string][]string{
		"root": {"a"},
		"a":    nil,
	})
	tr := mustBuild(t, g)

	a := tr.Node(tr.Node(tr.Root()).Children[0])
	id, ok := tr.ByPath(a.Path)
	if !ok {
		t.Fatal("ByPath should find an existing node")
	}
	if tr.Node(id).Package.Name != "a" {
		t.Error("ByPath returned the wrong node")
	}
	if _, ok := tr.ByPath("no/such/path"); ok {
		t.Error("ByPath should miss unknown keys")
	}
}

func TestPackagesCount(t *testing.T) {
	g := buildGraph(t, "root", map[string][]string{
		"root":   {"a", "b"},
		"a":      {"shared"},
		"b":      {"shared"},
		"shared": nil,
	})
	tr := mustBuild(t, g)

	// 5 tree nodes but 4 distinct packages.
	if tr.Len() != 5 {
		t.Errorf("expected 5 tree nodes, got %d", tr.Len())
	}
	if tr.Packages() != 4 {
		t.Errorf("expected 4 distinct packages, got %d", tr.Packages())
	}
}

func TestStringDump(t *testing.T) {
	g := buildGraph(t, "root", map[string][]string{
		"root": {"a"},
		"a":    {"root"},
	})
	tr := mustBuild(t, g)

	dump := tr.String()
	if !strings.Contains(dump, "root v1.0.0") {
		t.Errorf("dump should contain the root: %q", dump)
	}
	if !strings.Contains(dump, "(*)") {
		t.Errorf("dump should mark the cycle repeat: %q", dump)
	}
}
