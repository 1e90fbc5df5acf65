package schedule_test

import (
	"reflect"
	"testing"

	"github.com/dvermeulen86/pertview/pkg/schedule"
)

func TestTwoNodeCycle(t *testing.T) {
	issues := []schedule.IssueInput{
		{ID: "A", Title: "a", BlocksIDs: []string{"B"}},
		{ID: "B", Title: "b", BlocksIDs: []string{"A"}},
	}
	g := schedule.Build(issues, schedule.DefaultOptions())

	if !g.Cycles.HasCycle {
		t.Fatal("expected cycle to be detected")
	}
	want := []schedule.Edge{{From: "A", To: "B"}, {From: "B", To: "A"}}
	if !reflect.DeepEqual(g.Cycles.CycleEdges, want) {
		t.Errorf("cycle edges = %v, want %v", g.Cycles.CycleEdges, want)
	}
	if len(g.TopologicalOrder) != 0 {
		t.Errorf("cyclic graph must leave topological order empty, got %v", g.TopologicalOrder)
	}
}

// CPM and layout must not run on a cyclic graph: timing fields stay zero and
// critical flags stay false.
func TestCyclicGraphSkipsMetrics(t *testing.T) {
	issues := []schedule.IssueInput{
		{ID: "A", Title: "a", BlocksIDs: []string{"B"}},
		{ID: "B", Title: "b", BlocksIDs: []string{"A"}},
	}
	g := schedule.Build(issues, schedule.DefaultOptions())

	for id, n := range g.Nodes {
		if n.IsCritical {
			t.Errorf("%s marked critical before CPM ran", id)
		}
		if n.EarliestFinish != 0 || n.LatestFinish != 0 {
			t.Errorf("%s has timing data on a cyclic graph", id)
		}
	}
	if len(g.EdgeHints) != 0 {
		t.Errorf("layout must not run on a cyclic graph, got hints %v", g.EdgeHints)
	}
}

// Only edges on some cycle belong to CycleEdges; an acyclic tail attached to
// a cycle stays out of the set.
func TestCycleEdgesExcludeAcyclicTail(t *testing.T) {
	issues := []schedule.IssueInput{
		{ID: "A", Title: "a", BlocksIDs: []string{"B"}},
		{ID: "B", Title: "b", BlocksIDs: []string{"C"}},
		{ID: "C", Title: "c", BlocksIDs: []string{"A", "D"}},
		{ID: "D", Title: "tail"},
	}
	g := schedule.Build(issues, schedule.DefaultOptions())

	if !g.Cycles.HasCycle {
		t.Fatal("expected cycle A->B->C->A")
	}
	want := []schedule.Edge{
		{From: "A", To: "B"},
		{From: "B", To: "C"},
		{From: "C", To: "A"},
	}
	if !reflect.DeepEqual(g.Cycles.CycleEdges, want) {
		t.Errorf("cycle edges = %v, want %v (C->D is not on any cycle)", g.Cycles.CycleEdges, want)
	}
}

func TestSelfLoopIsACycle(t *testing.T) {
	issues := []schedule.IssueInput{
		{ID: "A", Title: "a", BlocksIDs: []string{"A"}},
		{ID: "B", Title: "b"},
	}
	g := schedule.Build(issues, schedule.DefaultOptions())

	if !g.Cycles.HasCycle {
		t.Fatal("self-loop must count as a cycle")
	}
	want := []schedule.Edge{{From: "A", To: "A"}}
	if !reflect.DeepEqual(g.Cycles.CycleEdges, want) {
		t.Errorf("cycle edges = %v, want %v", g.Cycles.CycleEdges, want)
	}
}

func TestCycleDetectionIdempotent(t *testing.T) {
	issues := []schedule.IssueInput{
		{ID: "A", Title: "a", BlocksIDs: []string{"B"}},
		{ID: "B", Title: "b", BlocksIDs: []string{"C"}},
		{ID: "C", Title: "c", BlocksIDs: []string{"A"}},
	}

	first := schedule.Build(issues, schedule.DefaultOptions())
	for i := 0; i < 3; i++ {
		again := schedule.Build(issues, schedule.DefaultOptions())
		if again.Cycles.HasCycle != first.Cycles.HasCycle {
			t.Fatal("cycle detection is not idempotent")
		}
		if !reflect.DeepEqual(again.Cycles.CycleEdges, first.Cycles.CycleEdges) {
			t.Fatalf("cycle edge set changed between runs: %v vs %v",
				again.Cycles.CycleEdges, first.Cycles.CycleEdges)
		}
	}
}

// Two disjoint cycles must both contribute their edges.
func TestMultipleDisjointCycles(t *testing.T) {
	issues := []schedule.IssueInput{
		{ID: "A", Title: "a", BlocksIDs: []string{"B"}},
		{ID: "B", Title: "b", BlocksIDs: []string{"A"}},
		{ID: "X", Title: "x", BlocksIDs: []string{"Y"}},
		{ID: "Y", Title: "y", BlocksIDs: []string{"X"}},
	}
	g := schedule.Build(issues, schedule.DefaultOptions())

	if len(g.Cycles.CycleEdges) != 4 {
		t.Errorf("expected all 4 edges across both cycles, got %v", g.Cycles.CycleEdges)
	}
}
