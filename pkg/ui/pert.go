package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dvermeulen86/pertview/pkg/model"
	"github.com/dvermeulen86/pertview/pkg/schedule"
)

// PertModel is the box-and-arrow schedule view. Nodes are laid out in columns
// by dependency depth using the coordinates computed by the scheduling engine.
type PertModel struct {
	graph    *schedule.Graph
	issueMap map[string]*model.Issue
	theme    Theme

	selectedIdx int
	sortedIDs   []string
	width       int
	height      int
	scrollCol   int

	// Focus drill-down state. When focused is non-nil the view renders only
	// the extracted subgraph.
	focused   *schedule.FocusResult
	focusDir  schedule.Direction
	focusDeep int
}

// NewPertModel creates the PERT view from a scheduled graph.
func NewPertModel(g *schedule.Graph, issues []model.Issue, theme Theme) PertModel {
	p := PertModel{
		theme:     theme,
		focusDir:  schedule.Both,
		focusDeep: 2,
	}
	p.SetGraph(g, issues)
	return p
}

// SetGraph replaces the underlying schedule, preserving the selection when
// the selected issue still exists.
func (p *PertModel) SetGraph(g *schedule.Graph, issues []model.Issue) {
	var selectedID string
	if len(p.sortedIDs) > 0 && p.selectedIdx < len(p.sortedIDs) {
		selectedID = p.sortedIDs[p.selectedIdx]
	}

	p.graph = g
	p.issueMap = make(map[string]*model.Issue, len(issues))
	for i := range issues {
		p.issueMap[issues[i].ID] = &issues[i]
	}
	p.sortedIDs = navigationOrder(g)
	p.focused = nil

	p.selectedIdx = 0
	for i, id := range p.sortedIDs {
		if id == selectedID {
			p.selectedIdx = i
			break
		}
	}
}

// navigationOrder walks nodes column by column, top to bottom, so j/k moves
// match the visual order. Cyclic graphs have no layout; fall back to id order.
func navigationOrder(g *schedule.Graph) []string {
	ids := g.SortedIDs()
	if g.Cycles.HasCycle {
		return ids
	}
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := g.Nodes[ids[i]], g.Nodes[ids[j]]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.ID < b.ID
	})
	return ids
}

// SetSize updates the render area.
func (p *PertModel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SelectedID returns the id of the currently selected issue, or "".
func (p *PertModel) SelectedID() string {
	if len(p.sortedIDs) == 0 || p.selectedIdx >= len(p.sortedIDs) {
		return ""
	}
	return p.sortedIDs[p.selectedIdx]
}

// MoveSelection advances the selection by delta, clamped to the node list.
func (p *PertModel) MoveSelection(delta int) {
	if len(p.sortedIDs) == 0 {
		return
	}
	p.selectedIdx += delta
	if p.selectedIdx < 0 {
		p.selectedIdx = 0
	}
	if p.selectedIdx >= len(p.sortedIDs) {
		p.selectedIdx = len(p.sortedIDs) - 1
	}
}

// ToggleFocus enters or leaves focus mode on the selected issue.
func (p *PertModel) ToggleFocus() {
	if p.focused != nil {
		p.focused = nil
		return
	}
	id := p.SelectedID()
	if id == "" {
		return
	}
	res := p.graph.Focus(id, p.focusDir, p.focusDeep)
	p.focused = &res
}

// CycleDirection rotates the focus direction and re-extracts when focused.
func (p *PertModel) CycleDirection() {
	switch p.focusDir {
	case schedule.Upstream:
		p.focusDir = schedule.Downstream
	case schedule.Downstream:
		p.focusDir = schedule.Both
	default:
		p.focusDir = schedule.Upstream
	}
	p.refocus()
}

// AdjustDepth changes the focus radius; the engine clamps the range.
func (p *PertModel) AdjustDepth(delta int) {
	p.focusDeep += delta
	if p.focusDeep < schedule.MinFocusDepth {
		p.focusDeep = schedule.MinFocusDepth
	}
	if p.focusDeep > schedule.MaxFocusDepth {
		p.focusDeep = schedule.MaxFocusDepth
	}
	p.refocus()
}

func (p *PertModel) refocus() {
	if p.focused == nil {
		return
	}
	res := p.graph.Focus(p.focused.Root, p.focusDir, p.focusDeep)
	p.focused = &res
}

// Focused reports whether the view is in focus mode.
func (p *PertModel) Focused() bool {
	return p.focused != nil
}

// ScrollColumns shifts the visible column window.
func (p *PertModel) ScrollColumns(delta int) {
	p.scrollCol += delta
	if p.scrollCol < 0 {
		p.scrollCol = 0
	}
}

// View renders the PERT chart.
func (p PertModel) View() string {
	if p.graph == nil || len(p.graph.Nodes) == 0 {
		return p.theme.MutedText.Render("No issues to display")
	}

	var b strings.Builder

	if p.graph.Cycles.HasCycle {
		b.WriteString(p.cycleBanner())
		b.WriteString("\n")
		if len(p.graph.TopologicalOrder) == 0 {
			b.WriteString(p.theme.MutedText.Render(
				"Schedule metrics are unavailable until the cycle is resolved."))
			return b.String()
		}
	}

	visible := p.visibleNodes()
	if len(visible) == 0 {
		return p.theme.MutedText.Render("No issues to display")
	}

	b.WriteString(p.renderColumns(visible))
	b.WriteString("\n")
	b.WriteString(p.renderDetail())
	return b.String()
}

func (p PertModel) cycleBanner() string {
	edges := p.graph.Cycles.CycleEdges
	parts := make([]string, 0, len(edges))
	for _, e := range edges {
		parts = append(parts, fmt.Sprintf("%s→%s", e.From, e.To))
	}
	msg := "Dependency cycle: " + strings.Join(parts, ", ")
	return p.theme.Banner.Render(truncate(msg, max(p.width, 20)))
}

// visibleNodes returns the node set to render, honoring focus mode.
func (p PertModel) visibleNodes() map[string]*schedule.Node {
	if p.focused != nil {
		return p.focused.Nodes
	}
	return p.graph.Nodes
}

func (p PertModel) renderColumns(nodes map[string]*schedule.Node) string {
	byCol := make(map[int][]*schedule.Node)
	maxCol := 0
	for _, n := range nodes {
		byCol[n.X] = append(byCol[n.X], n)
		if n.X > maxCol {
			maxCol = n.X
		}
	}
	for _, col := range byCol {
		sort.Slice(col, func(i, j int) bool {
			if col[i].Y != col[j].Y {
				return col[i].Y < col[j].Y
			}
			return col[i].ID < col[j].ID
		})
	}

	const boxWidth = 22
	colsPerScreen := 1
	if p.width > 0 {
		colsPerScreen = max(1, p.width/(boxWidth+4))
	}

	first := p.scrollCol
	if first > maxCol {
		first = maxCol
	}
	last := min(maxCol, first+colsPerScreen-1)

	var columns []string
	for c := first; c <= last; c++ {
		var boxes []string
		for _, n := range byCol[c] {
			boxes = append(boxes, p.renderNode(n, boxWidth))
		}
		col := lipgloss.JoinVertical(lipgloss.Left, boxes...)
		columns = append(columns, col)
		if c < last {
			columns = append(columns, p.theme.MutedText.Render(" ──▶ "))
		}
	}
	out := lipgloss.JoinHorizontal(lipgloss.Center, columns...)
	if last < maxCol || first > 0 {
		out += "\n" + p.theme.MutedText.Render(
			fmt.Sprintf("columns %d-%d of %d (h/l to scroll)", first, last, maxCol))
	}
	return out
}

func (p PertModel) renderNode(n *schedule.Node, boxWidth int) string {
	inner := boxWidth - 4

	title := ""
	status := ""
	if iss, ok := p.issueMap[n.ID]; ok {
		title = iss.Title
		status = string(iss.Status)
	}

	idLine := truncate(n.ID, inner)
	if status != "" {
		idLine = p.theme.Renderer.NewStyle().
			Foreground(p.theme.StatusColor(status)).Bold(true).Render(idLine)
	}
	lines := []string{
		idLine,
		truncate(title, inner),
	}
	if !p.graph.Cycles.HasCycle {
		lines = append(lines,
			fmt.Sprintf("ES %.1f EF %.1f", n.EarliestStart, n.EarliestFinish),
			fmt.Sprintf("slack %.1f", n.Slack),
		)
	}

	style := p.theme.NormalBox
	if n.IsCritical {
		style = p.theme.CriticalBox
	}
	if n.ID == p.SelectedID() {
		style = style.BorderForeground(p.theme.Primary)
	}

	return style.Width(boxWidth).Render(strings.Join(lines, "\n"))
}

// renderDetail shows blockers and dependents for the selected issue, the
// textual stand-in for arrow routing at terminal resolution.
func (p PertModel) renderDetail() string {
	id := p.SelectedID()
	if id == "" {
		return ""
	}
	n, ok := p.graph.Nodes[id]
	if !ok {
		return ""
	}

	var b strings.Builder
	title := ""
	if iss, ok := p.issueMap[id]; ok {
		title = iss.Title
	}
	b.WriteString(p.theme.Header.Render(fmt.Sprintf(" %s %s ", id, truncate(title, 48))))
	b.WriteString("\n")

	if !p.graph.Cycles.HasCycle {
		line := fmt.Sprintf("ES %.1f  EF %.1f  LS %.1f  LF %.1f  slack %.1f",
			n.EarliestStart, n.EarliestFinish, n.LatestStart, n.LatestFinish, n.Slack)
		if n.IsCritical {
			b.WriteString(p.theme.CriticalText.Render(line + "  [critical]"))
		} else {
			b.WriteString(p.theme.MutedText.Render(line))
		}
		b.WriteString("\n")
	}

	if preds := p.graph.Predecessors(id); len(preds) > 0 {
		b.WriteString(p.theme.MutedText.Render("blocked by: " + strings.Join(preds, ", ")))
		b.WriteString("\n")
	}
	if succs := p.graph.Successors(id); len(succs) > 0 {
		b.WriteString(p.theme.MutedText.Render("blocks: " + strings.Join(succs, ", ")))
		b.WriteString("\n")
	}
	if p.focused != nil {
		b.WriteString(p.theme.MutedText.Render(fmt.Sprintf(
			"focus: %s depth %d (%d nodes)", p.focusDir, p.focusDeep, len(p.focused.Nodes))))
		b.WriteString("\n")
	}
	return b.String()
}
