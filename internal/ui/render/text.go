// Package render provides text helpers for the terminal views. Titles and
// track languages come from container metadata and may hold anything.
package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Sanitize drops control characters and invalid UTF-8, and turns
// non-breaking spaces into plain ones.
func Sanitize(s string) string {
	if !needsSanitize(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size <= 1:
		case r != '\t' && unicode.IsControl(r):
		case r == '\u00a0':
			b.WriteByte(' ')
		default:
			b.WriteString(s[i : i+size])
		}
		i += max(size, 1)
	}
	return b.String()
}

func needsSanitize(s string) bool {
	for i := range len(s) {
		c := s[i]
		if c < 0x20 && c != '\t' {
			return true
		}
		if c >= 0x80 && c <= 0x9f {
			return true
		}
		if c == 0xc2 && i+1 < len(s) && s[i+1] == 0xa0 {
			return true
		}
	}
	return !utf8.ValidString(s)
}

// Truncate sanitizes s and shortens it to maxWidth cells with a single
// character ellipsis. Wide characters count for their display width.
func Truncate(s string, maxWidth int) string {
	return runewidth.Truncate(Sanitize(s), maxWidth, "…")
}

// Fit truncates s and pads it to exactly width cells.
func Fit(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

// Row places left and right at both ends of a line of width cells,
// keeping at least one space between them.
func Row(left, right string, width int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}
