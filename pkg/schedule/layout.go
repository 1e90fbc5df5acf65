package schedule

// assignLayout maps each node to integer coordinates for box-and-arrow
// rendering. X is the node's rank: its longest-path distance in hops from a
// source, so parallel independent chains line up by dependency depth instead
// of by tie-break order. Y is assigned greedily top to bottom within a rank,
// following the topological sequence (which is id-ascending among ties), with
// rowGap slots reserved per node so boxes do not overlap. This is a layout
// heuristic, not crossing minimization; graphs are small and the views pan.
func (g *Graph) assignLayout(rowGap int) {
	if rowGap < 1 {
		rowGap = 1
	}

	rank := make(map[string]int, len(g.Nodes))
	for _, id := range g.TopologicalOrder {
		r := 0
		for _, pred := range g.in[id] {
			if pr := rank[pred] + 1; pr > r {
				r = pr
			}
		}
		rank[id] = r
	}

	nextRow := make(map[int]int)
	for _, id := range g.TopologicalOrder {
		n := g.Nodes[id]
		r := rank[id]
		n.X = r
		n.Y = nextRow[r]
		nextRow[r] += rowGap
	}

	g.EdgeHints = make([]EdgeHint, 0, len(g.Edges))
	for _, e := range g.Edges {
		g.EdgeHints = append(g.EdgeHints, EdgeHint{
			Edge:     e,
			LaneSpan: rank[e.To] - rank[e.From],
			Critical: g.EdgeIsCritical(e),
		})
	}
}

// LaneCount returns the number of layout lanes (max rank + 1), 0 when the
// graph is empty or cyclic.
func (g *Graph) LaneCount() int {
	if len(g.TopologicalOrder) == 0 {
		return 0
	}
	max := 0
	for _, n := range g.Nodes {
		if n.X > max {
			max = n.X
		}
	}
	return max + 1
}
