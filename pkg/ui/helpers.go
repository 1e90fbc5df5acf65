package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateWidth truncates a string to max visual width (cells), adding suffix
// when truncation happens. Wide characters are accounted for.
func truncateWidth(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		return runewidth.Truncate(suffix, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth-suffixWidth, "") + suffix
}

func truncate(s string, maxWidth int) string {
	return truncateWidth(s, maxWidth, "…")
}

// padRight pads s with spaces to the given visual width.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
