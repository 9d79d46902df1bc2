package selector

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// scrollbar renders a one-column bar exactly height rows tall. A full-height
// thumb means everything fits.
func scrollbar(total, height, offset int, thumb, track lipgloss.Style) string {
	if height <= 0 {
		return ""
	}
	top, size := 0, height
	if total > height {
		maxOffset := total - height
		offset = min(max(offset, 0), maxOffset)
		size = min(max(height*height/total, 1), height)
		if maxTop := height - size; maxTop > 0 {
			top = offset * maxTop / maxOffset
		}
	}
	var b strings.Builder
	for i := range height {
		if i >= top && i < top+size {
			// Non-breaking space keeps the background escape on plain cells.
			b.WriteString(thumb.Render("\u00a0"))
		} else {
			b.WriteString(track.Render("│"))
		}
		if i < height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
