package tree

import (
	"fmt"
	"testing"

	"github.com/depscope/depscope/internal/graph"
)

// syntheticGraph builds a layered graph with the given fanout and
// depth, plus back-edges to force cycle handling.
func syntheticGraph(fanout, depth int) *graph.Graph {
	root := graph.PackageID{Name: "root", Version: "1.0.0"}
	g := graph.New(root)

	prev := []graph.PackageID{root}
	g.Add(&graph.Node{ID: root})

	for d := 1; d <= depth; d++ {
		var layer []graph.PackageID
		for i := 0; i < fanout; i++ {
			id := graph.PackageID{Name: fmt.Sprintf("pkg-%d-%d", d, i), Version: "1.0.0"}
			node := &graph.Node{ID: id}
			// Link back up to create shared subtrees and cycles.
			if d > 1 && i == 0 {
				node.Edges = append(node.Edges, graph.Edge{To: prev[0]})
			}
			g.Add(node)
			layer = append(layer, id)
		}
		for _, p := range prev {
			n, _ := g.Node(p)
			for _, c := range layer {
				n.Edges = append(n.Edges, graph.Edge{To: c})
			}
		}
		prev = layer
	}
	return g
}

func BenchmarkBuildSmall(b *testing.B) {
	g := syntheticGraph(4, 3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(g); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuildLarge(b *testing.B) {
	g := syntheticGraph(8, 4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(g); err != nil {
			b.Fatal(err)
		}
	}
}
