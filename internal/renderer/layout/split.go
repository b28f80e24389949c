// Package layout computes the pane rectangles for a split screen.
package layout

import (
	"fmt"
	"strings"

	"github.com/dshills/tuisplit/internal/renderer/core"
)

// Mode selects how the screen is divided.
type Mode int

const (
	// Vertical places the panes side by side.
	Vertical Mode = iota
	// Horizontal stacks the panes top and bottom.
	Horizontal
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "vertical" or "horizontal" (case-insensitive, "v" and "h" accepted).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical", "v":
		return Vertical, nil
	case "horizontal", "h":
		return Horizontal, nil
	default:
		return Vertical, fmt.Errorf("unknown layout %q (want vertical or horizontal)", s)
	}
}

// Split divides a rows x cols area anchored at the origin into two disjoint
// rectangles whose union is the whole area. The first pane gets half, the
// second gets the remainder.
func Split(mode Mode, rows, cols int) (first, second core.ScreenRect) {
	rows = max(rows, 0)
	cols = max(cols, 0)

	if mode == Horizontal {
		top := rows / 2
		first = core.RectFromSize(0, 0, top, cols)
		second = core.RectFromSize(top, 0, rows-top, cols)
		return first, second
	}

	left := cols / 2
	first = core.RectFromSize(0, 0, rows, left)
	second = core.RectFromSize(0, left, rows, cols-left)
	return first, second
}
