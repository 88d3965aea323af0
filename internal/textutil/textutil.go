// Package textutil provides display-width aware string helpers for terminal
// output. All widths are measured in terminal cells, with ANSI escape
// sequences treated as zero width.
package textutil

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

// Width returns the display width of s in terminal cells, ignoring ANSI
// escape sequences.
func Width(s string) int {
	return ansi.StringWidth(s)
}

// RuneWidth returns the number of terminal cells r occupies.
func RuneWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// Strip removes all ANSI escape sequences from s.
func Strip(s string) string {
	return ansi.Strip(s)
}

// Truncate shortens s to at most width display cells, appending tail when
// truncation occurs. Escape sequences are preserved and not counted.
func Truncate(s string, width int, tail string) string {
	if Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, tail)
}

// PadRight pads s with spaces to exactly width display cells. Strings that
// are already wider are returned unchanged.
func PadRight(s string, width int) string {
	gap := width - Width(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// Wrap word-wraps s to the given width, keeping ANSI sequences intact.
// Non-positive widths disable wrapping.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}
