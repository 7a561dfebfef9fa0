// Package graph is a small directed-graph utility used for the call graph
// (the inliner walks it post-order) and the struct dependency graph.
// Kept small and single-purpose so the driver can wire it independently of
// any one pass, matching this codebase's pipeline-stage composition style.
package graph

import "fmt"

// Graph is a directed graph over string node names (function/struct names
// are already unique within a program after path resolution, so no
// separate node-ID type is needed).
type Graph struct {
	nodes map[string]bool
	edges map[string][]string // from -> []to
}

func New() *Graph {
	return &Graph{nodes: make(map[string]bool), edges: make(map[string][]string)}
}

func (g *Graph) AddNode(name string) {
	g.nodes[name] = true
	if _, ok := g.edges[name]; !ok {
		g.edges[name] = nil
	}
}

// AddEdge records that from depends on / calls to. Both endpoints are
// added as nodes if not already present.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.edges[from] = append(g.edges[from], to)
}

func (g *Graph) Successors(name string) []string {
	return g.edges[name]
}

func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		names = append(names, n)
	}
	return names
}

// PostOrder returns nodes in dependency-first order: every node appears
// after all nodes it points to, the order the inliner needs so that a
// callee is already fully inlined before its caller is processed. roots,
// when non-empty,
// restricts the walk to what's reachable from them; an empty roots walks
// every known node.
func (g *Graph) PostOrder(roots ...string) []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var order []string

	var visit func(n string) error
	visit = func(n string) error {
		if visited[n] {
			return nil
		}
		if onStack[n] {
			return fmt.Errorf("graph: cycle detected at %q", n)
		}
		onStack[n] = true
		for _, succ := range g.edges[n] {
			if err := visit(succ); err != nil {
				return err
			}
		}
		onStack[n] = false
		visited[n] = true
		order = append(order, n)
		return nil
	}

	start := roots
	if len(start) == 0 {
		start = g.Nodes()
	}
	for _, n := range start {
		// A cycle can only occur among mutually-recursive functions/structs,
		// which is itself a diagnosed structural error;
		// DetectCycle should be called first so PostOrder can assume none.
		_ = visit(n)
	}
	return order
}

// DetectCycle reports the first cycle found (as the sequence of node names
// forming it) reachable from roots, or ok==false if the graph restricted to
// that reachable set is acyclic. Used by the type checker for S001 (cyclic
// struct definitions) and by the inliner to refuse to process a call graph with
// recursion.
func (g *Graph) DetectCycle(roots ...string) (cycle []string, ok bool) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int)
	var path []string
	var found []string

	var visit func(n string) bool
	visit = func(n string) bool {
		color[n] = gray
		path = append(path, n)
		for _, succ := range g.edges[n] {
			switch color[succ] {
			case white:
				if visit(succ) {
					return true
				}
			case gray:
				idx := indexOf(path, succ)
				found = append([]string{}, path[idx:]...)
				found = append(found, succ)
				return true
			}
		}
		path = path[:len(path)-1]
		color[n] = black
		return false
	}

	start := roots
	if len(start) == 0 {
		start = g.Nodes()
	}
	for _, n := range start {
		if color[n] == white {
			if visit(n) {
				return found, true
			}
		}
	}
	return nil, false
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
