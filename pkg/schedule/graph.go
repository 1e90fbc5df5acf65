// Package schedule builds dependency graphs from issue snapshots and computes
// the Critical Path Method (CPM) metrics and layout coordinates behind the
// PERT and Gantt views.
//
// The pipeline is synchronous and allocation-owned by the caller: Build is a
// pure function of its inputs, each view holds its own Graph, and a changed
// issue set means a full rebuild. Cycles and empty input are reported as data
// on the Graph rather than as errors.
package schedule

import (
	"sort"

	"github.com/dvermeulen86/pertview/pkg/model"
)

// Options carries the engine parameters that would otherwise be ambient
// state. They are passed explicitly so rebuilds stay deterministic.
type Options struct {
	// DefaultDurationHours is used for issues without a usable estimate.
	DefaultDurationHours float64

	// CriticalSlackEpsilon absorbs floating point error when comparing a
	// node's slack against the graph-wide minimum.
	CriticalSlackEpsilon float64

	// RowGap is the vertical distance reserved per node within a lane.
	RowGap int
}

// DefaultOptions returns the options used by the views unless overridden
// in config.
func DefaultOptions() Options {
	return Options{
		DefaultDurationHours: 8,
		CriticalSlackEpsilon: 1e-6,
		RowGap:               2,
	}
}

// Node is one issue positioned in the scheduled graph. Timing fields are
// meaningless until CPM has run, which only happens on acyclic graphs;
// IsCritical is never true before then.
type Node struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	DurationHours float64 `json:"duration_hours"`

	EarliestStart  float64 `json:"earliest_start"`
	EarliestFinish float64 `json:"earliest_finish"`
	LatestStart    float64 `json:"latest_start"`
	LatestFinish   float64 `json:"latest_finish"`
	Slack          float64 `json:"slack"`
	IsCritical     bool    `json:"is_critical"`

	// Layout coordinates: X is the dependency rank (lane), Y the slot
	// within the lane.
	X int `json:"x"`
	Y int `json:"y"`
}

// Edge is the ordered pair "From must complete before To starts".
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// EdgeHint carries routing information for one edge, for the renderer.
type EdgeHint struct {
	Edge     Edge `json:"edge"`
	LaneSpan int  `json:"lane_span"` // lanes crossed; >1 means the edge skips ranks
	Critical bool `json:"critical"`  // both endpoints on the critical path
}

// CycleReport is the outcome of cycle detection. When HasCycle is true the
// topological order is empty and no CPM metrics or layout were computed;
// CycleEdges holds every edge that lies on at least one directed cycle so
// the UI can highlight the full offending subset.
type CycleReport struct {
	HasCycle   bool   `json:"has_cycle"`
	CycleEdges []Edge `json:"cycle_edges,omitempty"`
}

// Graph is the render-ready result of a build. Nodes are kept in an id-keyed
// map with edges as plain id pairs; nodes never reference each other
// directly, so the structure stays cycle-safe to own and copy.
type Graph struct {
	Nodes            map[string]*Node `json:"nodes"`
	Edges            []Edge           `json:"edges"`
	TopologicalOrder []string         `json:"topological_order,omitempty"`
	Cycles           CycleReport      `json:"cycle_detection"`
	EdgeHints        []EdgeHint       `json:"edge_hints,omitempty"`

	// ProjectFinishHours is the maximum earliest finish across the graph,
	// i.e. the CPM project duration. Zero when empty or cyclic.
	ProjectFinishHours float64 `json:"project_finish_hours"`

	// adjacency, by insertion order of Edges
	out map[string][]string
	in  map[string][]string
}

// IssueInput is the collaborator-facing view of one issue: what the builder
// needs and nothing else.
type IssueInput struct {
	ID             string
	Title          string
	EstimatedHours *float64
	DependencyIDs  []string
	BlocksIDs      []string
}

// Build converts a flat issue list into a scheduled graph. Both relation
// directions contribute edges (A.blocks B and B.depends-on A describe the
// same fact); duplicates are deduplicated silently and edges referencing ids
// outside the set are dropped. An empty input yields an empty, acyclic graph.
func Build(issues []IssueInput, opts Options) *Graph {
	g := &Graph{
		Nodes: make(map[string]*Node, len(issues)),
		out:   make(map[string][]string),
		in:    make(map[string][]string),
	}

	for _, iss := range issues {
		if iss.ID == "" {
			continue
		}
		if _, dup := g.Nodes[iss.ID]; dup {
			continue
		}
		dur := opts.DefaultDurationHours
		if iss.EstimatedHours != nil && *iss.EstimatedHours > 0 {
			dur = *iss.EstimatedHours
		}
		g.Nodes[iss.ID] = &Node{
			ID:            iss.ID,
			Title:         iss.Title,
			DurationHours: dur,
		}
	}

	seen := make(map[Edge]struct{})
	addEdge := func(from, to string) {
		if _, ok := g.Nodes[from]; !ok {
			return
		}
		if _, ok := g.Nodes[to]; !ok {
			return
		}
		e := Edge{From: from, To: to}
		if _, dup := seen[e]; dup {
			return
		}
		seen[e] = struct{}{}
		g.Edges = append(g.Edges, e)
		g.out[from] = append(g.out[from], to)
		g.in[to] = append(g.in[to], from)
	}

	for _, iss := range issues {
		for _, dep := range iss.DependencyIDs {
			addEdge(dep, iss.ID)
		}
		for _, blocked := range iss.BlocksIDs {
			addEdge(iss.ID, blocked)
		}
	}

	g.Cycles = g.detectCycles()
	if g.Cycles.HasCycle {
		return g
	}

	order, ok := g.topoSort()
	if !ok {
		// Kahn produced fewer ids than nodes: an undetected cycle. Detection
		// above should make this unreachable; degrade to the cyclic contract
		// rather than expose a half-built order.
		g.Cycles.HasCycle = true
		return g
	}
	g.TopologicalOrder = order

	g.runCPM(opts.CriticalSlackEpsilon)
	g.assignLayout(opts.RowGap)
	return g
}

// BuildIssues adapts a tracker snapshot and builds its graph.
func BuildIssues(issues []model.Issue, opts Options) *Graph {
	in := make([]IssueInput, 0, len(issues))
	for _, iss := range issues {
		in = append(in, IssueInput{
			ID:             iss.ID,
			Title:          iss.Title,
			EstimatedHours: iss.EstimatedHours,
			DependencyIDs:  iss.DependencyIDs,
			BlocksIDs:      iss.BlocksIDs,
		})
	}
	return Build(in, opts)
}

// Predecessors returns the ids with an edge into id, in insertion order.
func (g *Graph) Predecessors(id string) []string {
	return append([]string(nil), g.in[id]...)
}

// Successors returns the ids id has an edge to, in insertion order.
func (g *Graph) Successors(id string) []string {
	return append([]string(nil), g.out[id]...)
}

// SortedIDs returns all node ids in ascending order. Used by views that need
// a stable id listing independent of the topological order.
func (g *Graph) SortedIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CriticalPath returns the critical node ids in topological order. Empty for
// cyclic or empty graphs.
func (g *Graph) CriticalPath() []string {
	var path []string
	for _, id := range g.TopologicalOrder {
		if g.Nodes[id].IsCritical {
			path = append(path, id)
		}
	}
	return path
}
