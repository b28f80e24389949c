package core

import "fmt"

// ScreenRect is a half-open region of the screen: Top and Left are
// inclusive, Bottom and Right exclusive.
type ScreenRect struct {
	Top    int
	Left   int
	Bottom int
	Right  int
}

// RectFromSize returns the rect of height rows and width columns at
// (top, left).
func RectFromSize(top, left, height, width int) ScreenRect {
	return ScreenRect{Top: top, Left: left, Bottom: top + height, Right: left + width}
}

// Width returns the column count, 0 for an inverted rect.
func (r ScreenRect) Width() int {
	return max(r.Right-r.Left, 0)
}

// Height returns the row count, 0 for an inverted rect.
func (r ScreenRect) Height() int {
	return max(r.Bottom-r.Top, 0)
}

func (r ScreenRect) Area() int {
	return r.Width() * r.Height()
}

func (r ScreenRect) IsEmpty() bool {
	return r.Area() == 0
}

// Contains reports whether (row, col) lies inside r.
func (r ScreenRect) Contains(row, col int) bool {
	return row >= r.Top && row < r.Bottom && col >= r.Left && col < r.Right
}

// Intersects reports whether r and other share a cell.
func (r ScreenRect) Intersects(other ScreenRect) bool {
	return !r.Intersection(other).IsEmpty()
}

// Intersection returns the shared region, or the zero rect.
func (r ScreenRect) Intersection(other ScreenRect) ScreenRect {
	out := ScreenRect{
		Top:    max(r.Top, other.Top),
		Left:   max(r.Left, other.Left),
		Bottom: min(r.Bottom, other.Bottom),
		Right:  min(r.Right, other.Right),
	}
	if out.IsEmpty() {
		return ScreenRect{}
	}
	return out
}

// String formats r as "WxH@row,col".
func (r ScreenRect) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", r.Width(), r.Height(), r.Top, r.Left)
}
