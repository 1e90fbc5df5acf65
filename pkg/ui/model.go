// Package ui implements the terminal interface: a PERT box-and-arrow view and
// a Gantt timeline over the computed schedule.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dvermeulen86/pertview/pkg/config"
	"github.com/dvermeulen86/pertview/pkg/debug"
	"github.com/dvermeulen86/pertview/pkg/model"
	"github.com/dvermeulen86/pertview/pkg/schedule"
)

// ViewMode selects the active view.
type ViewMode int

const (
	ViewPert ViewMode = iota
	ViewGantt
)

// IssuesReloadedMsg carries a fresh snapshot into the running program.
// The watcher and manual reload both produce it.
type IssuesReloadedMsg struct {
	Issues []model.Issue
	Err    error
}

// ReloadFunc loads a fresh issue snapshot. Injected so the UI stays
// independent of the data layer.
type ReloadFunc func() ([]model.Issue, error)

// Model is the root bubbletea model.
type Model struct {
	issues []model.Issue
	graph  *schedule.Graph
	opts   schedule.Options

	view  ViewMode
	pert  PertModel
	gantt GanttModel

	keys     KeyMap
	help     help.Model
	showHelp bool
	theme    Theme

	reload  ReloadFunc
	loadErr error

	width  int
	height int
}

// NewModel builds the root model from an initial snapshot.
func NewModel(issues []model.Issue, cfg *config.Config, reload ReloadFunc) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())

	opts := schedule.DefaultOptions()
	if cfg != nil {
		if cfg.Schedule.DefaultDurationHours > 0 {
			opts.DefaultDurationHours = cfg.Schedule.DefaultDurationHours
		}
		if cfg.Schedule.RowGap > 0 {
			opts.RowGap = cfg.Schedule.RowGap
		}
	}

	g := schedule.BuildIssues(issues, opts)

	m := Model{
		issues: issues,
		graph:  g,
		opts:   opts,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		theme:  theme,
		reload: reload,
		pert:   NewPertModel(g, issues, theme),
		gantt:  NewGanttModel(g, issues, theme),
	}
	if cfg != nil {
		if cfg.UI.DefaultView == "gantt" {
			m.view = ViewGantt
		}
		switch schedule.Direction(cfg.Focus.Direction) {
		case schedule.Upstream, schedule.Downstream, schedule.Both:
			m.pert.focusDir = schedule.Direction(cfg.Focus.Direction)
		}
		if cfg.Focus.Depth >= schedule.MinFocusDepth && cfg.Focus.Depth <= schedule.MaxFocusDepth {
			m.pert.focusDeep = cfg.Focus.Depth
		}
	}
	return m
}

// Graph exposes the current schedule, mainly for tests and export.
func (m Model) Graph() *schedule.Graph {
	return m.graph
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		contentHeight := msg.Height - 2
		m.pert.SetSize(msg.Width, contentHeight)
		m.gantt.SetSize(msg.Width, contentHeight)
		return m, nil

	case IssuesReloadedMsg:
		if msg.Err != nil {
			m.loadErr = msg.Err
			return m, nil
		}
		m.loadErr = nil
		m.issues = msg.Issues
		m.graph = schedule.BuildIssues(msg.Issues, m.opts)
		m.pert.SetGraph(m.graph, msg.Issues)
		m.gantt.SetGraph(m.graph, msg.Issues)
		debug.Log("reloaded %d issues", len(msg.Issues))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.SwitchView):
		if m.view == ViewPert {
			m.view = ViewGantt
		} else {
			m.view = ViewPert
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		if m.reload == nil {
			return m, nil
		}
		reload := m.reload
		return m, func() tea.Msg {
			issues, err := reload()
			return IssuesReloadedMsg{Issues: issues, Err: err}
		}

	case key.Matches(msg, m.keys.Up):
		if m.view == ViewPert {
			m.pert.MoveSelection(-1)
		} else {
			m.gantt.MoveSelection(-1)
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.view == ViewPert {
			m.pert.MoveSelection(1)
		} else {
			m.gantt.MoveSelection(1)
		}
		return m, nil

	case key.Matches(msg, m.keys.Left):
		if m.view == ViewPert {
			m.pert.ScrollColumns(-1)
		}
		return m, nil

	case key.Matches(msg, m.keys.Right):
		if m.view == ViewPert {
			m.pert.ScrollColumns(1)
		}
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		if m.view == ViewPert {
			m.pert.ToggleFocus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Direction):
		if m.view == ViewPert {
			m.pert.CycleDirection()
		}
		return m, nil

	case key.Matches(msg, m.keys.DepthUp):
		if m.view == ViewPert {
			m.pert.AdjustDepth(1)
		}
		return m, nil

	case key.Matches(msg, m.keys.DepthDown):
		if m.view == ViewPert {
			m.pert.AdjustDepth(-1)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	if m.loadErr != nil {
		b.WriteString(m.theme.Banner.Render("reload failed: " + m.loadErr.Error()))
		b.WriteString("\n")
	}

	switch m.view {
	case ViewGantt:
		b.WriteString(m.gantt.View())
	default:
		b.WriteString(m.pert.View())
	}
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.statusBar())
	}
	return b.String()
}

func (m Model) statusBar() string {
	name := "PERT"
	selected := m.pert.SelectedID()
	if m.view == ViewGantt {
		name = "Timeline"
		selected = m.gantt.SelectedID()
	}
	status := fmt.Sprintf("%s  %d issues", name, len(m.issues))
	if selected != "" {
		status += "  " + selected
	}
	status += "  " + m.help.ShortHelpView(m.keys.ShortHelp())
	return m.theme.StatusBar.Render(truncate(status, max(m.width, 40)))
}
