package schedule

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// detectCycles runs an iterative depth-first traversal over the built graph.
// A node is "on stack" while its DFS frame is open; an edge targeting an
// on-stack node closes a cycle. When any cycle exists, the full set of edges
// lying on some cycle is collected: an edge (u,v) lies on a directed cycle
// exactly when u and v share a strongly connected component, so membership
// comes from Tarjan SCC rather than from the single back edge the DFS found.
func (g *Graph) detectCycles() CycleReport {
	const (
		white = 0 // unvisited
		gray  = 1 // on stack
		black = 2 // fully visited
	)

	state := make(map[string]int, len(g.Nodes))
	hasCycle := false

	// Explicit frame stack; issue graphs are user data, so depth is
	// unbounded and recursion is off the table.
	type frame struct {
		id   string
		next int
	}

	ids := g.SortedIDs()
	for _, start := range ids {
		if state[start] != white {
			continue
		}
		stack := []frame{{id: start}}
		state[start] = gray
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			succ := g.out[f.id]
			if f.next < len(succ) {
				to := succ[f.next]
				f.next++
				switch state[to] {
				case white:
					state[to] = gray
					stack = append(stack, frame{id: to})
				case gray:
					hasCycle = true
				}
				continue
			}
			state[f.id] = black
			stack = stack[:len(stack)-1]
		}
	}

	// Self-loops never enter the DFS successor walk of another node but are
	// cycles all the same.
	for _, e := range g.Edges {
		if e.From == e.To {
			hasCycle = true
		}
	}

	if !hasCycle {
		return CycleReport{}
	}
	return CycleReport{HasCycle: true, CycleEdges: g.cycleEdges()}
}

// cycleEdges collects every edge whose endpoints share an SCC, plus
// self-loops, sorted for stable reporting.
func (g *Graph) cycleEdges() []Edge {
	dg := simple.NewDirectedGraph()
	idToNode := make(map[string]int64, len(g.Nodes))
	for _, id := range g.SortedIDs() {
		n := dg.NewNode()
		dg.AddNode(n)
		idToNode[id] = n.ID()
	}
	for _, e := range g.Edges {
		if e.From == e.To {
			continue // gonum rejects self-loops; handled below
		}
		dg.SetEdge(dg.NewEdge(dg.Node(idToNode[e.From]), dg.Node(idToNode[e.To])))
	}

	comp := make(map[int64]int, len(g.Nodes))
	for i, scc := range topo.TarjanSCC(dg) {
		for _, n := range scc {
			comp[n.ID()] = i
		}
	}

	sccSize := make(map[int]int)
	for _, c := range comp {
		sccSize[c]++
	}

	var cycleEdges []Edge
	for _, e := range g.Edges {
		if e.From == e.To {
			cycleEdges = append(cycleEdges, e)
			continue
		}
		cf, ct := comp[idToNode[e.From]], comp[idToNode[e.To]]
		if cf == ct && sccSize[cf] > 1 {
			cycleEdges = append(cycleEdges, e)
		}
	}

	sort.Slice(cycleEdges, func(i, j int) bool {
		if cycleEdges[i].From != cycleEdges[j].From {
			return cycleEdges[i].From < cycleEdges[j].From
		}
		return cycleEdges[i].To < cycleEdges[j].To
	})
	return cycleEdges
}
