package ui

import (
	"strings"
	"testing"

	"github.com/dvermeulen86/pertview/pkg/model"
	"github.com/dvermeulen86/pertview/pkg/schedule"
	"github.com/dvermeulen86/pertview/pkg/testutil"
)

func buildPert(t *testing.T, issues []model.Issue) PertModel {
	t.Helper()
	g := schedule.BuildIssues(issues, schedule.DefaultOptions())
	p := NewPertModel(g, issues, TestTheme())
	p.SetSize(120, 40)
	return p
}

func TestPertEmptyState(t *testing.T) {
	p := buildPert(t, nil)
	if !strings.Contains(p.View(), "No issues to display") {
		t.Error("expected empty state message")
	}
}

func TestPertRendersAllVisibleIDs(t *testing.T) {
	gen := testutil.New(testutil.DefaultConfig())
	issues := gen.Chain(3)
	p := buildPert(t, issues)

	out := p.View()
	for _, iss := range issues {
		if !strings.Contains(out, iss.ID) {
			t.Errorf("expected %s in view", iss.ID)
		}
	}
}

func TestPertCycleBannerNamesEdges(t *testing.T) {
	issues := []model.Issue{
		{ID: "a", Title: "A", Status: model.StatusOpen, DependencyIDs: []string{"b"}},
		{ID: "b", Title: "B", Status: model.StatusOpen, DependencyIDs: []string{"a"}},
	}
	p := buildPert(t, issues)

	out := p.View()
	if !strings.Contains(out, "Dependency cycle") {
		t.Fatal("expected cycle banner")
	}
	if !strings.Contains(out, "a→b") && !strings.Contains(out, "b→a") {
		t.Error("expected the offending edges named in the banner")
	}
}

func TestPertSelectionNavigation(t *testing.T) {
	gen := testutil.New(testutil.DefaultConfig())
	p := buildPert(t, gen.Chain(3))

	first := p.SelectedID()
	p.MoveSelection(1)
	if p.SelectedID() == first {
		t.Error("expected selection to advance")
	}
	p.MoveSelection(-10)
	if p.SelectedID() != first {
		t.Errorf("expected clamp to first node, got %s", p.SelectedID())
	}
	p.MoveSelection(100)
	if p.SelectedID() == first {
		t.Error("expected clamp to last node")
	}
}

func TestPertFocusToggle(t *testing.T) {
	gen := testutil.New(testutil.DefaultConfig())
	p := buildPert(t, gen.Chain(5))

	if p.Focused() {
		t.Fatal("expected unfocused at start")
	}
	p.ToggleFocus()
	if !p.Focused() {
		t.Fatal("expected focus mode after toggle")
	}
	if len(p.visibleNodes()) == 0 {
		t.Error("expected a non-empty focus subgraph")
	}
	p.ToggleFocus()
	if p.Focused() {
		t.Error("expected focus cleared after second toggle")
	}
}

func TestPertFocusDepthClamped(t *testing.T) {
	gen := testutil.New(testutil.DefaultConfig())
	p := buildPert(t, gen.Chain(4))

	p.AdjustDepth(-100)
	if p.focusDeep != schedule.MinFocusDepth {
		t.Errorf("expected depth clamp to %d, got %d", schedule.MinFocusDepth, p.focusDeep)
	}
	p.AdjustDepth(100)
	if p.focusDeep != schedule.MaxFocusDepth {
		t.Errorf("expected depth clamp to %d, got %d", schedule.MaxFocusDepth, p.focusDeep)
	}
}

func TestPertFocusLimitsVisibleNodes(t *testing.T) {
	gen := testutil.New(testutil.DefaultConfig())
	issues := gen.Chain(6)
	p := buildPert(t, issues)

	// Select the first node, focus downstream at depth 1: the subgraph is
	// the root plus its direct successor.
	p.focusDir = schedule.Downstream
	p.focusDeep = 1
	p.ToggleFocus()
	if got := len(p.visibleNodes()); got != 2 {
		t.Errorf("expected 2 visible nodes, got %d", got)
	}
}

func TestPertSelectionSurvivesReload(t *testing.T) {
	gen := testutil.New(testutil.DefaultConfig())
	issues := gen.Chain(3)
	p := buildPert(t, issues)

	p.MoveSelection(1)
	want := p.SelectedID()

	g := schedule.BuildIssues(issues, schedule.DefaultOptions())
	p.SetGraph(g, issues)
	if p.SelectedID() != want {
		t.Errorf("expected selection %s preserved, got %s", want, p.SelectedID())
	}
}

func TestPertDetailShowsRelations(t *testing.T) {
	gen := testutil.New(testutil.DefaultConfig())
	issues := gen.Diamond()
	p := buildPert(t, issues)

	// Walk to a node with both blockers and dependents.
	found := false
	for range p.sortedIDs {
		id := p.SelectedID()
		if len(p.graph.Predecessors(id)) > 0 && len(p.graph.Successors(id)) > 0 {
			found = true
			break
		}
		p.MoveSelection(1)
	}
	if !found {
		t.Fatal("diamond should have a middle node")
	}
	out := p.View()
	if !strings.Contains(out, "blocked by:") || !strings.Contains(out, "blocks:") {
		t.Error("expected relation lines in the detail panel")
	}
}
