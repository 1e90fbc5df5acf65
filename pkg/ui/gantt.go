package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dvermeulen86/pertview/pkg/model"
	"github.com/dvermeulen86/pertview/pkg/schedule"
)

// GanttModel is the timeline view. Each issue renders as one row with a bar
// spanning its earliest start to earliest finish, followed by a slack tail.
type GanttModel struct {
	graph    *schedule.Graph
	issueMap map[string]*model.Issue
	theme    Theme

	rows        []string
	selectedIdx int
	scrollRow   int
	width       int
	height      int
}

// NewGanttModel creates the timeline view from a scheduled graph.
func NewGanttModel(g *schedule.Graph, issues []model.Issue, theme Theme) GanttModel {
	m := GanttModel{theme: theme}
	m.SetGraph(g, issues)
	return m
}

// SetGraph replaces the underlying schedule.
func (m *GanttModel) SetGraph(g *schedule.Graph, issues []model.Issue) {
	m.graph = g
	m.issueMap = make(map[string]*model.Issue, len(issues))
	for i := range issues {
		m.issueMap[issues[i].ID] = &issues[i]
	}

	// Rows ordered by start time; ties broken by id for a stable chart.
	ids := g.SortedIDs()
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := g.Nodes[ids[i]], g.Nodes[ids[j]]
		if a.EarliestStart != b.EarliestStart {
			return a.EarliestStart < b.EarliestStart
		}
		return a.ID < b.ID
	})
	m.rows = ids
	if m.selectedIdx >= len(ids) {
		m.selectedIdx = 0
	}
}

// SetSize updates the render area.
func (m *GanttModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// MoveSelection advances the selection by delta, clamped to the row list.
func (m *GanttModel) MoveSelection(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.selectedIdx += delta
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
	if m.selectedIdx >= len(m.rows) {
		m.selectedIdx = len(m.rows) - 1
	}
	m.ensureVisible()
}

func (m *GanttModel) ensureVisible() {
	visible := m.visibleRows()
	if visible <= 0 {
		return
	}
	if m.selectedIdx < m.scrollRow {
		m.scrollRow = m.selectedIdx
	}
	if m.selectedIdx >= m.scrollRow+visible {
		m.scrollRow = m.selectedIdx - visible + 1
	}
}

func (m *GanttModel) visibleRows() int {
	if m.height <= 4 {
		return len(m.rows)
	}
	return m.height - 4
}

// SelectedID returns the id of the currently selected row, or "".
func (m *GanttModel) SelectedID() string {
	if len(m.rows) == 0 || m.selectedIdx >= len(m.rows) {
		return ""
	}
	return m.rows[m.selectedIdx]
}

const (
	ganttLabelWidth = 26
	barFill         = "█"
	barSlack        = "░"
)

// View renders the timeline.
func (m GanttModel) View() string {
	if m.graph == nil || len(m.graph.Nodes) == 0 {
		return m.theme.MutedText.Render("No issues to display")
	}
	if m.graph.Cycles.HasCycle {
		return m.theme.Banner.Render("Dependency cycle detected") + "\n" +
			m.theme.MutedText.Render("Timeline is unavailable until the cycle is resolved.")
	}

	barArea := m.width - ganttLabelWidth - 2
	if barArea < 10 {
		barArea = 40
	}
	scale := 0.0
	if m.graph.ProjectFinishHours > 0 {
		scale = float64(barArea) / m.graph.ProjectFinishHours
	}

	var b strings.Builder
	b.WriteString(m.theme.Header.Render(fmt.Sprintf(
		" Timeline  %d issues  finish %.1fh ", len(m.rows), m.graph.ProjectFinishHours)))
	b.WriteString("\n")

	visible := m.visibleRows()
	end := m.scrollRow + visible
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.scrollRow; i < end; i++ {
		b.WriteString(m.renderRow(m.rows[i], i == m.selectedIdx, scale))
		b.WriteString("\n")
	}
	if end < len(m.rows) || m.scrollRow > 0 {
		b.WriteString(m.theme.MutedText.Render(fmt.Sprintf(
			"rows %d-%d of %d", m.scrollRow+1, end, len(m.rows))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m GanttModel) renderRow(id string, selected bool, scale float64) string {
	n := m.graph.Nodes[id]

	label := id
	if iss, ok := m.issueMap[id]; ok && iss.Title != "" {
		label = fmt.Sprintf("%s %s", id, iss.Title)
	}
	label = padRight(truncate(label, ganttLabelWidth), ganttLabelWidth)

	lead := int(n.EarliestStart * scale)
	barLen := int((n.EarliestFinish - n.EarliestStart) * scale)
	if barLen < 1 {
		barLen = 1
	}
	slackLen := int(n.Slack * scale)

	bar := strings.Repeat(" ", lead) + strings.Repeat(barFill, barLen)
	if slackLen > 0 {
		bar += strings.Repeat(barSlack, slackLen)
	}

	barStyle := m.theme.Renderer.NewStyle().Foreground(m.theme.SlackOK)
	if n.IsCritical {
		barStyle = m.theme.CriticalText
	}

	line := label + " " + barStyle.Render(bar)
	if selected {
		return m.theme.Selected.Render(line)
	}
	return line
}
