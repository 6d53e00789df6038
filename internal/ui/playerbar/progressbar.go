package playerbar

import (
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/playbin/internal/ui/styles"
)

const (
	filledBlock = "━"
	emptyBlock  = "─"

	minBarWidth = 5
)

// RenderProgressBar renders the elapsed time, a gradient bar and the
// duration. Format: 1:23  ━━━━━─────  4:56
func RenderProgressBar(position, duration time.Duration, width int) string {
	posStr := FormatDuration(position)
	durStr := FormatDuration(duration)

	barWidth := width - ansi.StringWidth(posStr) - ansi.StringWidth(durStr) - 4
	if barWidth < minBarWidth {
		return posStr + " / " + durStr
	}

	filled := filledCells(position, duration, barWidth)

	t := styles.T()
	bar := styles.Gradient(strings.Repeat(filledBlock, filled), barWidth, t.Primary, t.Secondary) +
		t.S().Subtle.Render(strings.Repeat(emptyBlock, barWidth-filled))

	return posStr + "  " + bar + "  " + durStr
}

func filledCells(position, duration time.Duration, width int) int {
	if duration <= 0 || position <= 0 {
		return 0
	}
	ratio := float64(position) / float64(duration)
	return min(int(float64(width)*ratio), width)
}
