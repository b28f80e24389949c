package layout

import (
	"testing"

	"github.com/dshills/tuisplit/internal/renderer/core"
)

func TestSplitCoversArea(t *testing.T) {
	for _, mode := range []Mode{Vertical, Horizontal} {
		for rows := 0; rows <= 12; rows++ {
			for cols := 0; cols <= 12; cols++ {
				first, second := Split(mode, rows, cols)

				if first.Intersects(second) {
					t.Fatalf("%v %dx%d: %v and %v overlap", mode, rows, cols, first, second)
				}
				if first.Area()+second.Area() != rows*cols {
					t.Fatalf("%v %dx%d: areas %d+%d do not cover %d",
						mode, rows, cols, first.Area(), second.Area(), rows*cols)
				}

				area := core.RectFromSize(0, 0, rows, cols)
				for r := 0; r < rows; r++ {
					for c := 0; c < cols; c++ {
						in1, in2 := first.Contains(r, c), second.Contains(r, c)
						if in1 == in2 {
							t.Fatalf("%v %dx%d: cell (%d,%d) covered %v/%v", mode, rows, cols, r, c, in1, in2)
						}
					}
				}
				if first.Intersection(area) != first && !first.IsEmpty() {
					t.Fatalf("%v %dx%d: first %v outside area", mode, rows, cols, first)
				}
				if second.Intersection(area) != second && !second.IsEmpty() {
					t.Fatalf("%v %dx%d: second %v outside area", mode, rows, cols, second)
				}
			}
		}
	}
}

func TestSplitMidpoint(t *testing.T) {
	tests := []struct {
		mode          Mode
		rows, cols    int
		first, second core.ScreenRect
	}{
		{Vertical, 24, 80, core.RectFromSize(0, 0, 24, 40), core.RectFromSize(0, 40, 24, 40)},
		{Vertical, 10, 81, core.RectFromSize(0, 0, 10, 40), core.RectFromSize(0, 40, 10, 41)},
		{Horizontal, 23, 80, core.RectFromSize(0, 0, 11, 80), core.RectFromSize(11, 0, 12, 80)},
		{Horizontal, 1, 5, core.RectFromSize(0, 0, 0, 5), core.RectFromSize(0, 0, 1, 5)},
		{Vertical, -3, -4, core.RectFromSize(0, 0, 0, 0), core.RectFromSize(0, 0, 0, 0)},
	}

	for _, tt := range tests {
		first, second := Split(tt.mode, tt.rows, tt.cols)
		if first != tt.first || second != tt.second {
			t.Errorf("Split(%v, %d, %d) = %v, %v; want %v, %v",
				tt.mode, tt.rows, tt.cols, first, second, tt.first, tt.second)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"vertical", Vertical, false},
		{"Horizontal", Horizontal, false},
		{" h ", Horizontal, false},
		{"v", Vertical, false},
		{"diagonal", Vertical, true},
		{"", Vertical, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestModeString(t *testing.T) {
	if Vertical.String() != "vertical" || Horizontal.String() != "horizontal" {
		t.Errorf("unexpected names %q %q", Vertical, Horizontal)
	}
	if Mode(7).String() != "Mode(7)" {
		t.Errorf("unexpected unknown name %q", Mode(7))
	}
	for _, m := range []Mode{Vertical, Horizontal} {
		if back, err := ParseMode(m.String()); err != nil || back != m {
			t.Errorf("ParseMode(%q) = %v, %v", m, back, err)
		}
	}
}
