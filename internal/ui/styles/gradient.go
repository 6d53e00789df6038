package styles

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Gradient renders text with a horizontal colour gradient running from
// from to to over span cells. Text shorter than span only covers the
// start of the gradient, so a growing bar keeps stable colours.
func Gradient(text string, span int, from, to lipgloss.Color) string {
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	if len(clusters) == 0 {
		return ""
	}

	colors := blend(max(span, len(clusters)), from, to)

	var b strings.Builder
	for i, cluster := range clusters {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(colors[i].Hex()))
		b.WriteString(style.Render(cluster))
	}
	return b.String()
}

// blend returns size colours between from and to, blended in HCL space.
func blend(size int, from, to lipgloss.Color) []colorful.Color {
	c1 := toColorful(from)
	if size < 2 {
		return []colorful.Color{c1}
	}
	c2 := toColorful(to)

	colors := make([]colorful.Color, size)
	for i := range size {
		colors[i] = c1.BlendHcl(c2, float64(i)/float64(size-1)).Clamped()
	}
	return colors
}

func toColorful(c lipgloss.Color) colorful.Color {
	if col, err := colorful.Hex(string(c)); err == nil {
		return col
	}
	// ANSI palette indexes have no RGB value here
	col, _ := colorful.MakeColor(color.Gray{Y: 128})
	return col
}
