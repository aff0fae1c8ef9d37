package topo_test

import (
	"fmt"

	"github.com/matzehuels/algotrace/pkg/engine/topo"
)

func ExampleKahn() {
	g, _ := topo.ParseEdges([]string{"shirt->tie", "tie->jacket", "trousers->shoes", "trousers->jacket"})

	res, log := topo.Kahn(g)
	fmt.Println(res.Order, res.HasCycle)
	last, _ := log.Last()
	fmt.Println(last.Narrative)
	// Output:
	// [shirt trousers tie shoes jacket] false
	// topological order: shirt, trousers, tie, shoes, jacket
}

func ExampleDFS() {
	g, _ := topo.ParseEdges([]string{"A->B", "B->C", "C->A"})

	res, _ := topo.DFS(g)
	fmt.Println(res.HasCycle, res.Cycle)
	// Output:
	// true [A B C A]
}
