package schedule_test

import (
	"testing"

	"github.com/dvermeulen86/pertview/pkg/schedule"
	"github.com/dvermeulen86/pertview/pkg/testutil"
)

func TestSourcesStartAtZero(t *testing.T) {
	issues := []schedule.IssueInput{
		{ID: "r1", Title: "root one", EstimatedHours: testutil.Hours(3)},
		{ID: "r2", Title: "root two", EstimatedHours: testutil.Hours(7)},
		{ID: "leaf", Title: "leaf", EstimatedHours: testutil.Hours(1), DependencyIDs: []string{"r1", "r2"}},
	}
	g := schedule.Build(issues, schedule.DefaultOptions())

	for _, id := range []string{"r1", "r2"} {
		if g.Nodes[id].EarliestStart != 0 {
			t.Errorf("source %s earliest start = %v, want 0", id, g.Nodes[id].EarliestStart)
		}
	}
}

func TestSinksFinishAtProjectFinish(t *testing.T) {
	gen := testutil.New(testutil.GeneratorConfig{Seed: 7, IncludeHours: true})
	g := schedule.BuildIssues(gen.RandomDAG(40, 0.1), schedule.DefaultOptions())

	if g.Cycles.HasCycle {
		t.Fatal("random DAG must be acyclic")
	}
	for id, n := range g.Nodes {
		if len(g.Successors(id)) == 0 && !hoursEqual(n.LatestFinish, g.ProjectFinishHours) {
			t.Errorf("sink %s latest finish = %v, want project finish %v",
				id, n.LatestFinish, g.ProjectFinishHours)
		}
	}
}

func TestSlackIsLatestMinusEarliestStart(t *testing.T) {
	gen := testutil.New(testutil.GeneratorConfig{Seed: 11, IncludeHours: true})
	g := schedule.BuildIssues(gen.RandomDAG(25, 0.15), schedule.DefaultOptions())

	for id, n := range g.Nodes {
		if !hoursEqual(n.Slack, n.LatestStart-n.EarliestStart) {
			t.Errorf("%s slack = %v, want LS-ES = %v", id, n.Slack, n.LatestStart-n.EarliestStart)
		}
		if n.Slack < -1e-9 {
			t.Errorf("%s has negative slack %v", id, n.Slack)
		}
	}
}

// Criticality is relative to the graph-wide minimum slack, not hardcoded
// zero: with an equal-length parallel pair, both chains are critical.
func TestCriticalRelativeToMinimumSlack(t *testing.T) {
	issues := []schedule.IssueInput{
		{ID: "A", Title: "a", EstimatedHours: testutil.Hours(4), BlocksIDs: []string{"Z"}},
		{ID: "B", Title: "b", EstimatedHours: testutil.Hours(4), BlocksIDs: []string{"Z"}},
		{ID: "Z", Title: "join", EstimatedHours: testutil.Hours(1)},
	}
	g := schedule.Build(issues, schedule.DefaultOptions())

	for _, id := range []string{"A", "B", "Z"} {
		if !g.Nodes[id].IsCritical {
			t.Errorf("%s must be critical when both chains are equal length", id)
		}
	}
}

func TestAtLeastOneNodeCritical(t *testing.T) {
	gen := testutil.New(testutil.GeneratorConfig{Seed: 13, IncludeHours: true})
	g := schedule.BuildIssues(gen.RandomDAG(30, 0.1), schedule.DefaultOptions())

	if len(g.Nodes) == 0 {
		t.Fatal("generator produced no issues")
	}
	if len(g.CriticalPath()) == 0 {
		t.Error("every acyclic non-empty graph must have at least one critical node")
	}
}

func TestEdgeIsCritical(t *testing.T) {
	issues := []schedule.IssueInput{
		{ID: "A", Title: "a", EstimatedHours: testutil.Hours(2), BlocksIDs: []string{"B", "C"}},
		{ID: "B", Title: "long", EstimatedHours: testutil.Hours(6), BlocksIDs: []string{"D"}},
		{ID: "C", Title: "short", EstimatedHours: testutil.Hours(1), BlocksIDs: []string{"D"}},
		{ID: "D", Title: "join", EstimatedHours: testutil.Hours(1)},
	}
	g := schedule.Build(issues, schedule.DefaultOptions())

	if !g.EdgeIsCritical(schedule.Edge{From: "A", To: "B"}) {
		t.Error("A->B joins two critical nodes and must be critical")
	}
	if g.EdgeIsCritical(schedule.Edge{From: "A", To: "C"}) {
		t.Error("A->C ends on a slack node and must not be critical")
	}
	if g.EdgeIsCritical(schedule.Edge{From: "nope", To: "D"}) {
		t.Error("edge with unknown endpoint must not be critical")
	}
}
