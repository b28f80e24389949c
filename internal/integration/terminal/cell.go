package terminal

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// cellWidth measures runes with ambiguous-width characters as narrow,
// independent of the user's locale.
var cellWidth = &runewidth.Condition{EastAsianWidth: false}

// Color is a terminal color. Index is the palette entry, or -1 for a
// direct RGB color; R, G and B always hold the displayed value.
type Color struct {
	R, G, B uint8
	Index   int
	Default bool
}

var (
	// DefaultForeground is the terminal's own foreground.
	DefaultForeground = Color{Default: true}
	// DefaultBackground is the terminal's own background.
	DefaultBackground = Color{Default: true}
)

// xterm's values for the 16 base colors.
var basePalette = [16][3]uint8{
	{0, 0, 0}, {205, 0, 0}, {0, 205, 0}, {205, 205, 0},
	{0, 0, 238}, {205, 0, 205}, {0, 205, 205}, {229, 229, 229},
	{127, 127, 127}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
	{92, 92, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
}

// Base colors by name.
var (
	ColorBlack         = ColorFromIndex(0)
	ColorRed           = ColorFromIndex(1)
	ColorGreen         = ColorFromIndex(2)
	ColorYellow        = ColorFromIndex(3)
	ColorBlue          = ColorFromIndex(4)
	ColorMagenta       = ColorFromIndex(5)
	ColorCyan          = ColorFromIndex(6)
	ColorWhite         = ColorFromIndex(7)
	ColorBrightBlack   = ColorFromIndex(8)
	ColorBrightRed     = ColorFromIndex(9)
	ColorBrightGreen   = ColorFromIndex(10)
	ColorBrightYellow  = ColorFromIndex(11)
	ColorBrightBlue    = ColorFromIndex(12)
	ColorBrightMagenta = ColorFromIndex(13)
	ColorBrightCyan    = ColorFromIndex(14)
	ColorBrightWhite   = ColorFromIndex(15)
)

// ColorFromIndex returns entry index of the 256-color palette: the 16
// base colors, a 6x6x6 cube, then a 24-step gray ramp. Out of range
// indexes yield the default color.
func ColorFromIndex(index int) Color {
	switch {
	case index < 0 || index > 255:
		return DefaultForeground
	case index < 16:
		rgb := basePalette[index]
		return Color{R: rgb[0], G: rgb[1], B: rgb[2], Index: index}
	case index < 232:
		i := index - 16
		level := func(n int) uint8 { return uint8(n * 51) }
		return Color{R: level(i / 36), G: level(i / 6 % 6), B: level(i % 6), Index: index}
	default:
		gray := uint8((index-232)*10 + 8)
		return Color{R: gray, G: gray, B: gray, Index: index}
	}
}

// ColorFromRGB returns a direct color.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, Index: -1}
}

// CellAttributes is a set of SGR rendition flags.
type CellAttributes uint16

const (
	AttrNone      CellAttributes = 0
	AttrBold      CellAttributes = 1 << 0
	AttrDim       CellAttributes = 1 << 1
	AttrItalic    CellAttributes = 1 << 2
	AttrUnderline CellAttributes = 1 << 3
	AttrBlink     CellAttributes = 1 << 4
	AttrReverse   CellAttributes = 1 << 5
	AttrHidden    CellAttributes = 1 << 6
	AttrStrike    CellAttributes = 1 << 7
)

// Has reports whether attr is set.
func (a CellAttributes) Has(attr CellAttributes) bool {
	return a&attr != 0
}

// Cell is one grid position. Width is 1 or 2 for a rune, and 0 for the
// trailing half of a wide rune.
type Cell struct {
	Rune       rune
	Width      int
	Foreground Color
	Background Color
	Attributes CellAttributes
}

// EmptyCell returns a blank with default colors.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1, Foreground: DefaultForeground, Background: DefaultBackground}
}

// IsContinuation reports whether the cell is the trailing half of a wide rune.
func (c Cell) IsContinuation() bool {
	return c.Width == 0
}

// Line is one grid row.
type Line struct {
	Cells []Cell
	// Wrapped is set when output continued onto the next row.
	Wrapped bool
}

// NewLine returns a blank row of width cells.
func NewLine(width int) *Line {
	l := &Line{Cells: make([]Cell, width)}
	l.ClearRange(0, width)
	return l
}

// Clear blanks the row.
func (l *Line) Clear() {
	l.ClearRange(0, len(l.Cells))
	l.Wrapped = false
}

// ClearRange blanks cells [start, end), clipped to the row.
func (l *Line) ClearRange(start, end int) {
	start, end = max(start, 0), min(end, len(l.Cells))
	for i := start; i < end; i++ {
		l.Cells[i] = EmptyCell()
	}
}

// Text returns the row's runes with trailing blanks removed.
func (l *Line) Text() string {
	var b strings.Builder
	for _, c := range l.Cells {
		if !c.IsContinuation() {
			b.WriteRune(c.Rune)
		}
	}
	return strings.TrimRight(b.String(), " ")
}
