package schedule

import "math"

// runCPM computes earliest/latest start and finish, slack, and critical-path
// membership. Callers guarantee the graph is acyclic and TopologicalOrder is
// populated.
//
// The critical flag compares each node's slack against the graph-wide
// minimum rather than against zero: on a plain dependency graph the minimum
// is zero, but the same definition keeps working when every path carries
// positive slack relative to an external deadline.
func (g *Graph) runCPM(epsilon float64) {
	if len(g.TopologicalOrder) == 0 {
		return
	}

	// Forward pass: a node starts when its slowest predecessor finishes.
	for _, id := range g.TopologicalOrder {
		n := g.Nodes[id]
		es := 0.0
		for _, pred := range g.in[id] {
			if ef := g.Nodes[pred].EarliestFinish; ef > es {
				es = ef
			}
		}
		n.EarliestStart = es
		n.EarliestFinish = es + n.DurationHours
	}

	projectFinish := 0.0
	for _, n := range g.Nodes {
		if n.EarliestFinish > projectFinish {
			projectFinish = n.EarliestFinish
		}
	}
	g.ProjectFinishHours = projectFinish

	// Backward pass: sinks finish no later than the project does; everything
	// else must finish before its earliest successor needs to start.
	for i := len(g.TopologicalOrder) - 1; i >= 0; i-- {
		id := g.TopologicalOrder[i]
		n := g.Nodes[id]
		if len(g.out[id]) == 0 {
			n.LatestFinish = projectFinish
		} else {
			lf := math.Inf(1)
			for _, succ := range g.out[id] {
				if ls := g.Nodes[succ].LatestStart; ls < lf {
					lf = ls
				}
			}
			n.LatestFinish = lf
		}
		n.LatestStart = n.LatestFinish - n.DurationHours
		n.Slack = n.LatestStart - n.EarliestStart
	}

	minSlack := math.Inf(1)
	for _, n := range g.Nodes {
		if n.Slack < minSlack {
			minSlack = n.Slack
		}
	}
	for _, n := range g.Nodes {
		n.IsCritical = n.Slack-minSlack <= epsilon
	}
}

// EdgeIsCritical reports whether both endpoints of e lie on the critical path.
func (g *Graph) EdgeIsCritical(e Edge) bool {
	from, ok := g.Nodes[e.From]
	if !ok {
		return false
	}
	to, ok := g.Nodes[e.To]
	if !ok {
		return false
	}
	return from.IsCritical && to.IsCritical
}
