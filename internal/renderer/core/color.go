// Package core holds the cell, style and geometry types shared by the
// session, the status line and the drawing backends.
package core

import "fmt"

// ColorMode says how a Color is interpreted.
type ColorMode uint8

const (
	// ColorModeDefault is the terminal's own foreground or background.
	ColorModeDefault ColorMode = iota
	// ColorModeIndexed is an entry of the 256-color palette.
	ColorModeIndexed
	// ColorModeRGB is a 24-bit color.
	ColorModeRGB
)

// Color is a cell color. The zero value is the terminal default.
// Colors built with the constructors compare with ==.
type Color struct {
	Mode    ColorMode
	Index   uint8
	R, G, B uint8
}

// ColorDefault is the terminal's default color.
var ColorDefault = Color{}

// ColorFromIndex returns palette color index.
func ColorFromIndex(index uint8) Color {
	return Color{Mode: ColorModeIndexed, Index: index}
}

// ColorFromRGB returns a 24-bit color.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{Mode: ColorModeRGB, R: r, G: g, B: b}
}

// IsDefault reports whether c is the terminal default.
func (c Color) IsDefault() bool {
	return c.Mode == ColorModeDefault
}

// Equals compares two colors, ignoring fields their mode does not use.
func (c Color) Equals(other Color) bool {
	if c.Mode != other.Mode {
		return false
	}
	switch c.Mode {
	case ColorModeIndexed:
		return c.Index == other.Index
	case ColorModeRGB:
		return c.R == other.R && c.G == other.G && c.B == other.B
	default:
		return true
	}
}

func (c Color) String() string {
	switch c.Mode {
	case ColorModeIndexed:
		return fmt.Sprintf("idx(%d)", c.Index)
	case ColorModeRGB:
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	default:
		return "default"
	}
}
