package schedule

// Direction selects which edges a focus traversal follows.
type Direction string

const (
	// Upstream follows incoming edges: everything the focused issue waits on.
	Upstream Direction = "upstream"
	// Downstream follows outgoing edges: everything waiting on the focused issue.
	Downstream Direction = "downstream"
	// Both follows edges in both directions.
	Both Direction = "both"
)

// Focus depth bounds. Requests outside the range are clamped, not rejected.
const (
	MinFocusDepth = 1
	MaxFocusDepth = 10
)

// FocusResult is the induced subgraph around a focused node. Node records
// are shared with the full graph, so CPM metrics and layout coordinates come
// along without recomputation: focusing is a view filter, not a new analysis.
type FocusResult struct {
	Root      string           `json:"root"`
	Direction Direction        `json:"direction"`
	Depth     int              `json:"depth"`
	Nodes     map[string]*Node `json:"nodes"`
	Edges     []Edge           `json:"edges"`
}

// Focus extracts the bounded neighborhood of id. Depth is clamped to
// [MinFocusDepth, MaxFocusDepth]; an unknown id yields an empty result.
func (g *Graph) Focus(id string, dir Direction, depth int) FocusResult {
	if depth < MinFocusDepth {
		depth = MinFocusDepth
	}
	if depth > MaxFocusDepth {
		depth = MaxFocusDepth
	}

	res := FocusResult{
		Root:      id,
		Direction: dir,
		Depth:     depth,
		Nodes:     make(map[string]*Node),
	}
	root, ok := g.Nodes[id]
	if !ok {
		return res
	}

	visited := map[string]bool{id: true}
	res.Nodes[id] = root

	// Breadth-first, one ring per depth step.
	frontier := []string{id}
	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []string
		for _, cur := range frontier {
			var neighbors []string
			if dir == Upstream || dir == Both {
				neighbors = append(neighbors, g.in[cur]...)
			}
			if dir == Downstream || dir == Both {
				neighbors = append(neighbors, g.out[cur]...)
			}
			for _, nb := range neighbors {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				res.Nodes[nb] = g.Nodes[nb]
				next = append(next, nb)
			}
		}
		frontier = next
	}

	for _, e := range g.Edges {
		if visited[e.From] && visited[e.To] {
			res.Edges = append(res.Edges, e)
		}
	}
	return res
}

// IsFull reports whether the focus result covers the entire source graph.
func (r FocusResult) IsFull(g *Graph) bool {
	return len(r.Nodes) == len(g.Nodes) && len(r.Edges) == len(g.Edges)
}
