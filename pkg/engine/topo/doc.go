// Package topo implements instrumented topological sorting with two
// interchangeable strategies over the same adjacency-list graph.
//
// # Kahn
//
// [Kahn] seeds a queue with every vertex of in-degree zero, then repeatedly
// dequeues a vertex, appends it to the order and decrements the in-degree of
// each successor, enqueueing those that reach zero. When the order ends up
// shorter than the vertex count the remaining vertices lie on or behind a
// cycle.
//
// # Depth-first search
//
// [DFS] keeps a visited set and a recursion stack. Reaching a vertex that is
// still on the stack is a back edge, which closes a cycle and aborts the sort.
// Finished vertices are prepended to the order, so the result is the reverse
// post-order.
//
// Both strategies record a step per vertex visit, per edge relaxation and per
// queue or stack change. A cycle is a result, not an error: [Result.HasCycle]
// is set and the final step says why the sort stopped.
//
// Vertices are ordered by first appearance in the edge list, and successors
// by edge order, so both strategies are deterministic.
package topo
