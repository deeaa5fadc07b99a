package styles

import (
	"strings"

	"github.com/rivo/uniseg"
)

// TruncateString truncates a string to fit within maxWidth display columns,
// adding ellipsis if needed. Walks grapheme clusters so emoji and combining
// marks never get split.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}

	if uniseg.StringWidth(s) <= maxWidth {
		return s
	}

	// Need to truncate - leave room for ellipsis
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}

	var result strings.Builder
	currentWidth := 0
	state := -1
	for len(s) > 0 {
		cluster, rest, _, newState := uniseg.StepString(s, state)
		width := uniseg.StringWidth(cluster)
		if currentWidth+width > maxWidth-3 {
			break
		}
		result.WriteString(cluster)
		currentWidth += width
		s = rest
		state = newState
	}

	return result.String() + "..."
}

// PadRight pads s with spaces to exactly width display columns, truncating
// first if it is too long.
func PadRight(s string, width int) string {
	s = TruncateString(s, width)
	gap := width - uniseg.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}
