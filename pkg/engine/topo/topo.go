package topo

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/trace"
)

// Algorithm names.
const (
	AlgorithmKahn = "kahn"
	AlgorithmDFS  = "dfs"
)

// Step kinds emitted by both strategies.
const (
	KindInDegrees   trace.Kind = "in_degrees"
	KindEnqueue     trace.Kind = "enqueue"
	KindDequeue     trace.Kind = "dequeue"
	KindRelaxEdge   trace.Kind = "relax_edge"
	KindVisit       trace.Kind = "visit"
	KindExploreEdge trace.Kind = "explore_edge"
	KindSkipVisited trace.Kind = "skip_visited"
	KindBackEdge    trace.Kind = "back_edge"
	KindFinish      trace.Kind = "finish"
	KindCycle       trace.Kind = "cycle_detected"
	KindDone        trace.Kind = "done"
)

// Result is the outcome of a sort. Order is complete only when HasCycle is
// false. Cycle lists the closed path along the back edge for DFS, and the
// vertices left with in-degree above zero for Kahn.
type Result struct {
	Order    []string `json:"order"`
	HasCycle bool     `json:"has_cycle"`
	Cycle    []string `json:"cycle,omitempty"`
}

// Sorter is the signature shared by [Kahn] and [DFS].
type Sorter func(*Graph) (Result, trace.Log)

// ByName returns the sorter for "kahn" or "dfs".
func ByName(name string) (Sorter, error) {
	switch strings.ToLower(name) {
	case AlgorithmKahn, "bfs":
		return Kahn, nil
	case AlgorithmDFS:
		return DFS, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidOperation, "unknown algorithm %q (want kahn or dfs)", name)
}

type run struct {
	rec   *trace.Recorder
	state Snapshot
}

func newRun(g *Graph, algorithm string) *run {
	return &run{
		rec: trace.NewRecorder(),
		state: Snapshot{
			Algorithm: algorithm,
			Vertices:  g.Vertices(),
			Edges:     g.Edges(),
			Order:     []string{},
		},
	}
}

func (r *run) record(kind trace.Kind, focus []string, p trace.Payload, narrative string) {
	r.rec.Record(kind, focus, p, r.state.clone(), narrative)
}

// Kahn sorts g breadth-first by in-degree. g is not modified.
func Kahn(g *Graph) (Result, trace.Log) {
	r := newRun(g, AlgorithmKahn)
	indeg := make(map[string]int, g.VertexCount())
	for _, v := range g.vertices {
		indeg[v] = g.InDegree(v)
	}
	r.state.InDegree = indeg
	r.record(KindInDegrees, nil, trace.Payload{"in_degree": indeg}, "count incoming edges of every vertex")

	for _, v := range g.vertices {
		if indeg[v] == 0 {
			r.state.Queue = append(r.state.Queue, v)
			r.record(KindEnqueue, []string{v}, trace.Payload{"vertex": v, "queue": r.state.Queue},
				fmt.Sprintf("%s has no incoming edges: enqueue", v))
		}
	}

	for len(r.state.Queue) > 0 {
		v := r.state.Queue[0]
		r.state.Queue = r.state.Queue[1:]
		r.state.Order = append(r.state.Order, v)
		r.record(KindDequeue, []string{v}, trace.Payload{"vertex": v, "order": r.state.Order},
			fmt.Sprintf("dequeue %s and append it to the order", v))

		for _, w := range g.Successors(v) {
			indeg[w]--
			r.record(KindRelaxEdge, []string{v, w}, trace.Payload{"from": v, "to": w, "in_degree": indeg[w]},
				fmt.Sprintf("remove edge %s->%s: in-degree of %s is now %d", v, w, w, indeg[w]))
			if indeg[w] == 0 {
				r.state.Queue = append(r.state.Queue, w)
				r.record(KindEnqueue, []string{w}, trace.Payload{"vertex": w, "queue": r.state.Queue},
					fmt.Sprintf("%s reached in-degree 0: enqueue", w))
			}
		}
	}

	if len(r.state.Order) < g.VertexCount() {
		var left []string
		for _, v := range g.vertices {
			if indeg[v] > 0 {
				left = append(left, v)
			}
		}
		r.record(KindCycle, left, trace.Payload{"remaining": left},
			fmt.Sprintf("only %d of %d vertices ordered: %s lie on or behind a cycle",
				len(r.state.Order), g.VertexCount(), strings.Join(left, ", ")))
		return Result{Order: slices.Clone(r.state.Order), HasCycle: true, Cycle: left}, r.rec.Log()
	}
	r.record(KindDone, nil, trace.Payload{"order": r.state.Order},
		fmt.Sprintf("topological order: %s", strings.Join(r.state.Order, ", ")))
	return Result{Order: slices.Clone(r.state.Order)}, r.rec.Log()
}

// DFS sorts g by reverse post-order of a depth-first search. g is not
// modified.
func DFS(g *Graph) (Result, trace.Log) {
	r := newRun(g, AlgorithmDFS)
	color := make(map[string]string, g.VertexCount())
	for _, v := range g.vertices {
		color[v] = White
	}
	r.state.Color = color
	r.state.Stack = []string{}

	var cycle []string
	var visit func(v string) bool
	visit = func(v string) bool {
		color[v] = Gray
		r.state.Stack = append(r.state.Stack, v)
		r.record(KindVisit, []string{v}, trace.Payload{"vertex": v, "stack": r.state.Stack},
			fmt.Sprintf("visit %s and push it on the recursion stack", v))

		for _, w := range g.Successors(v) {
			switch color[w] {
			case Gray:
				i := slices.Index(r.state.Stack, w)
				cycle = append(slices.Clone(r.state.Stack[i:]), w)
				r.record(KindBackEdge, []string{v, w}, trace.Payload{"from": v, "to": w, "cycle": cycle},
					fmt.Sprintf("edge %s->%s returns to %s on the stack: cycle %s", v, w, w, strings.Join(cycle, " -> ")))
				return false
			case Black:
				r.record(KindSkipVisited, []string{v, w}, trace.Payload{"from": v, "to": w},
					fmt.Sprintf("edge %s->%s: %s already finished", v, w, w))
			default:
				r.record(KindExploreEdge, []string{v, w}, trace.Payload{"from": v, "to": w},
					fmt.Sprintf("follow edge %s->%s", v, w))
				if !visit(w) {
					return false
				}
			}
		}

		color[v] = Black
		r.state.Stack = r.state.Stack[:len(r.state.Stack)-1]
		r.state.Order = slices.Insert(r.state.Order, 0, v)
		r.record(KindFinish, []string{v}, trace.Payload{"vertex": v, "order": r.state.Order},
			fmt.Sprintf("finish %s: pop it and prepend it to the order", v))
		return true
	}

	for _, v := range g.vertices {
		if color[v] != White {
			continue
		}
		if !visit(v) {
			r.record(KindCycle, cycle, trace.Payload{"cycle": cycle},
				fmt.Sprintf("graph has a cycle: %s", strings.Join(cycle, " -> ")))
			return Result{Order: slices.Clone(r.state.Order), HasCycle: true, Cycle: cycle}, r.rec.Log()
		}
	}
	r.record(KindDone, nil, trace.Payload{"order": r.state.Order},
		fmt.Sprintf("topological order: %s", strings.Join(r.state.Order, ", ")))
	return Result{Order: slices.Clone(r.state.Order)}, r.rec.Log()
}
