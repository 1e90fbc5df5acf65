package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so style helpers can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// Theme holds the color palette and precomputed styles for all views.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Status
	Open       lipgloss.AdaptiveColor
	InProgress lipgloss.AdaptiveColor
	Blocked    lipgloss.AdaptiveColor
	Deferred   lipgloss.AdaptiveColor
	Closed     lipgloss.AdaptiveColor

	// Schedule
	Critical lipgloss.AdaptiveColor
	SlackOK  lipgloss.AdaptiveColor

	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Precomputed styles; views render per frame and should not allocate
	// styles in the hot path.
	Base         lipgloss.Style
	Header       lipgloss.Style
	Selected     lipgloss.Style
	CriticalBox  lipgloss.Style
	NormalBox    lipgloss.Style
	MutedText    lipgloss.Style
	CriticalText lipgloss.Style
	StatusBar    lipgloss.Style
	Banner       lipgloss.Style
}

// DefaultTheme returns the standard adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},

		Open:       lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		InProgress: lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"},
		Blocked:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
		Deferred:   lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Closed:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},

		Critical: lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
		SlackOK:  lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		BorderForeground(t.Primary).
		Bold(true)

	t.CriticalBox = r.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(t.Critical).
		Padding(0, 1)

	t.NormalBox = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.CriticalText = r.NewStyle().Foreground(t.Critical).Bold(true)

	t.StatusBar = r.NewStyle().
		Background(t.Highlight).
		Foreground(t.Subtext).
		Padding(0, 1)

	t.Banner = r.NewStyle().
		Background(t.Critical).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	// Below TrueColor the solid backgrounds down-convert to approximations
	// that clash with custom palettes like Solarized; drop them and lean on
	// foreground accents instead.
	if TermProfile < colorprofile.TrueColor {
		t.Header = r.NewStyle().Foreground(t.Primary).Bold(true).Padding(0, 1)
		t.Selected = r.NewStyle().BorderForeground(t.Primary).Bold(true).Reverse(true)
		t.StatusBar = r.NewStyle().Foreground(t.Subtext).Padding(0, 1)
		t.Banner = r.NewStyle().Foreground(t.Critical).Bold(true).Padding(0, 1)
	}

	return t
}

// StatusColor maps an issue status string to its theme color.
func (t Theme) StatusColor(status string) lipgloss.AdaptiveColor {
	switch status {
	case "in_progress":
		return t.InProgress
	case "blocked":
		return t.Blocked
	case "deferred":
		return t.Deferred
	case "closed":
		return t.Closed
	default:
		return t.Open
	}
}

// TestTheme returns a theme for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
