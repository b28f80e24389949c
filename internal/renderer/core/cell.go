package core

import "github.com/mattn/go-runewidth"

// Attribute is a set of text attributes.
type Attribute uint16

// AttrNone is the empty set.
const AttrNone Attribute = 0

const (
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrStrikethrough
)

// Has reports whether every bit of attr is set.
func (a Attribute) Has(attr Attribute) bool {
	return attr != 0 && a&attr == attr
}

// Style is the look of a cell. The zero value draws with the terminal
// defaults.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the terminal default style.
func DefaultStyle() Style {
	return Style{}
}

func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

func (s Style) Bold() Style {
	s.Attributes |= AttrBold
	return s
}

func (s Style) Reverse() Style {
	s.Attributes |= AttrReverse
	return s
}

// Equals compares two styles.
func (s Style) Equals(other Style) bool {
	return s.Attributes == other.Attributes &&
		s.Foreground.Equals(other.Foreground) &&
		s.Background.Equals(other.Background)
}

// Cell is one screen position. A wide rune occupies its cell plus a
// continuation cell of width 0 to its right.
type Cell struct {
	Rune  rune
	Width int
	Style Style
}

// EmptyCell returns a blank in the default style.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1}
}

// NewStyledCell returns r in style, measured with RuneWidth.
func NewStyledCell(r rune, style Style) Cell {
	return Cell{Rune: r, Width: RuneWidth(r), Style: style}
}

// IsContinuation reports whether c is the trailing half of a wide rune.
func (c Cell) IsContinuation() bool {
	return c.Width == 0
}

// Equals compares two cells.
func (c Cell) Equals(other Cell) bool {
	return c.Rune == other.Rune && c.Width == other.Width && c.Style.Equals(other.Style)
}

// Ambiguous-width runes are narrow regardless of locale, matching the
// emulator's measurement.
var widthCond = &runewidth.Condition{EastAsianWidth: false}

// RuneWidth returns the number of columns r occupies.
func RuneWidth(r rune) int {
	return widthCond.RuneWidth(r)
}

// StringWidth returns the number of columns s occupies.
func StringWidth(s string) int {
	return widthCond.StringWidth(s)
}

// Truncate cuts s to at most width columns, ending with tail when cut.
func Truncate(s string, width int, tail string) string {
	if width <= 0 {
		return ""
	}
	return widthCond.Truncate(s, width, tail)
}

// CellsFromString lays s out as cells in style. Zero-width runes are
// dropped and wide runes get a continuation cell.
func CellsFromString(s string, style Style) []Cell {
	cells := make([]Cell, 0, len(s))
	for _, r := range s {
		switch w := RuneWidth(r); w {
		case 0:
		case 2:
			cells = append(cells, Cell{Rune: r, Width: 2, Style: style}, Cell{Style: style})
		default:
			cells = append(cells, Cell{Rune: r, Width: w, Style: style})
		}
	}
	return cells
}

// StringFromCells returns the runes of cells, skipping continuations.
func StringFromCells(cells []Cell) string {
	runes := make([]rune, 0, len(cells))
	for _, c := range cells {
		if c.IsContinuation() || c.Rune == 0 {
			continue
		}
		runes = append(runes, c.Rune)
	}
	return string(runes)
}
