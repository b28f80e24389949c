package terminal

import (
	"strings"
	"testing"
)

func screenText(s *Screen) string {
	rows := make([]string, s.Height())
	for y, l := range s.lines {
		rows[y] = l.Text()
	}
	return strings.Join(rows, "\n")
}

func historyText(h *History) string {
	rows := make([]string, h.Len())
	for i := range rows {
		rows[i] = h.Line(i).Text()
	}
	return strings.Join(rows, "\n")
}

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 || s.Height() != 24 {
		t.Errorf("expected 80x24, got %dx%d", s.Width(), s.Height())
	}
	if x, y := s.CursorPos(); x != 0 || y != 0 {
		t.Errorf("expected cursor at origin, got (%d,%d)", x, y)
	}
	if !s.CursorVisible() {
		t.Error("expected cursor visible")
	}
	if c := s.Cell(79, 23); c != EmptyCell() {
		t.Errorf("expected empty cell, got %+v", c)
	}
}

func TestNewScreenInvalidSize(t *testing.T) {
	s := NewScreen(0, -1)
	if s.Width() != 80 || s.Height() != 24 {
		t.Errorf("expected default 80x24, got %dx%d", s.Width(), s.Height())
	}
}

func TestScreenCellOutOfBounds(t *testing.T) {
	s := NewScreen(10, 5)

	s.SetCell(-1, 0, Cell{Rune: 'X', Width: 1})
	s.SetCell(10, 0, Cell{Rune: 'X', Width: 1})

	if c := s.Cell(-1, 0); c != EmptyCell() {
		t.Error("expected empty cell for negative x")
	}
	if c := s.Cell(0, 5); c != EmptyCell() {
		t.Error("expected empty cell past last row")
	}
	if s.Line(5) != nil {
		t.Error("expected nil line past last row")
	}
}

func TestScreenLineIsCopy(t *testing.T) {
	s := NewScreen(10, 2)
	s.WriteRune('A')

	line := s.Line(0)
	line[0].Rune = 'Z'

	if s.Cell(0, 0).Rune != 'A' {
		t.Error("Line should return a copy")
	}
}

func TestScreenMoveCursorClamps(t *testing.T) {
	s := NewScreen(10, 5)

	s.MoveCursor(100, 100)
	if x, y := s.CursorPos(); x != 9 || y != 4 {
		t.Errorf("expected (9,4), got (%d,%d)", x, y)
	}

	s.MoveCursorRelative(-20, -20)
	if x, y := s.CursorPos(); x != 0 || y != 0 {
		t.Errorf("expected (0,0), got (%d,%d)", x, y)
	}
}

func TestScreenWrapAtEnd(t *testing.T) {
	s := NewScreen(3, 3)
	for _, r := range "ABCD" {
		s.WriteRune(r)
	}

	if got := screenText(s); got != "ABC\nD\n" {
		t.Errorf("expected wrap, got %q", got)
	}
	if !s.lines[0].Wrapped {
		t.Error("expected wrapped flag on first row")
	}
}

func TestScreenPendingWrapEndsOnLastColumn(t *testing.T) {
	s := NewScreen(3, 2)
	for _, r := range "ABC" {
		s.WriteRune(r)
	}
	// CR after filling a row must not produce an empty row.
	s.CarriageReturn()
	s.LineFeed()
	s.WriteRune('D')

	if got := screenText(s); got != "ABC\nD" {
		t.Errorf("expected %q, got %q", "ABC\nD", got)
	}
}

func TestScreenScrollPushesHistory(t *testing.T) {
	s := NewScreen(4, 2)
	h := NewHistory(10)
	s.SetHistory(h)

	for _, row := range []string{"one", "two", "six"} {
		for _, r := range row {
			s.WriteRune(r)
		}
		s.CarriageReturn()
		s.LineFeed()
	}

	if h.Len() != 2 {
		t.Fatalf("expected 2 history rows, got %d", h.Len())
	}
	if h.Line(0).Text() != "one" || h.Line(1).Text() != "two" {
		t.Errorf("unexpected history %q", historyText(h))
	}
	if got := screenText(s); got != "six\n" {
		t.Errorf("expected live screen %q, got %q", "six\n", got)
	}
}

func TestScreenScrollDownSkipsHistory(t *testing.T) {
	s := NewScreen(4, 2)
	h := NewHistory(10)
	s.SetHistory(h)

	s.WriteRune('A')
	s.ScrollDown(1)
	s.DeleteLines(1)

	if h.Len() != 0 {
		t.Errorf("expected no history, got %d", h.Len())
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(5, 3)
	for _, r := range "HELLO" {
		s.WriteRune(r)
	}
	s.MoveCursor(4, 1)

	s.Resize(3, 2)

	if s.Width() != 3 || s.Height() != 2 {
		t.Fatalf("expected 3x2, got %dx%d", s.Width(), s.Height())
	}
	if s.lines[0].Text() != "HEL" {
		t.Errorf("expected truncated row %q, got %q", "HEL", s.lines[0].Text())
	}
	if x, y := s.CursorPos(); x != 2 || y != 1 {
		t.Errorf("expected clamped cursor (2,1), got (%d,%d)", x, y)
	}

	s.Resize(6, 4)
	if s.Cell(5, 3) != EmptyCell() {
		t.Error("expected new cells to be blank")
	}
	if s.lines[0].Text() != "HEL" {
		t.Errorf("expected kept cells, got %q", s.lines[0].Text())
	}
	if top, bottom := s.ScrollRegion(); top != 0 || bottom != 3 {
		t.Errorf("expected scroll region reset, got %d-%d", top, bottom)
	}
}

func TestScreenResizeKeepsCursorRow(t *testing.T) {
	s := NewScreen(5, 4)
	h := NewHistory(10)
	s.SetHistory(h)
	for i, row := range []string{"r0", "r1", "r2", "$ "} {
		s.MoveCursor(0, i)
		for _, r := range row {
			s.WriteRune(r)
		}
	}

	s.Resize(5, 2)

	if got := screenText(s); got != "r2\n$" {
		t.Errorf("screen = %q, want %q", got, "r2\n$")
	}
	if x, y := s.CursorPos(); x != 2 || y != 1 {
		t.Errorf("cursor = (%d,%d), want (2,1)", x, y)
	}
	if got := historyText(h); got != "r0\nr1" {
		t.Errorf("history = %q, want %q", got, "r0\nr1")
	}
}

func TestScreenRegionScrollSkipsHistory(t *testing.T) {
	s := NewScreen(4, 5)
	h := NewHistory(10)
	s.SetHistory(h)

	s.SetScrollRegion(0, 3)
	s.MoveCursor(0, 3)
	for i := 0; i < 3; i++ {
		s.LineFeed()
	}
	if h.Len() != 0 {
		t.Errorf("region with a bottom margin pushed %d history rows", h.Len())
	}

	s.ResetScrollRegion()
	s.MoveCursor(0, 4)
	s.LineFeed()
	if h.Len() != 1 {
		t.Errorf("full-screen scroll pushed %d history rows, want 1", h.Len())
	}
}

func TestScreenResizeSplitsWideRune(t *testing.T) {
	s := NewScreen(4, 1)
	s.MoveCursor(2, 0)
	s.WriteRune('日')

	s.Resize(3, 1)

	if c := s.Cell(2, 0); c != EmptyCell() {
		t.Errorf("expected half wide rune blanked, got %+v", c)
	}
}

func TestScreenResizeMinimum(t *testing.T) {
	s := NewScreen(5, 5)
	s.Resize(0, 0)
	if s.Width() != 1 || s.Height() != 1 {
		t.Errorf("expected 1x1, got %dx%d", s.Width(), s.Height())
	}
}

func TestScreenOverwriteWideRune(t *testing.T) {
	s := NewScreen(5, 1)
	s.WriteRune('日')
	s.MoveCursor(1, 0)
	s.WriteRune('x')

	if c := s.Cell(0, 0); c != EmptyCell() {
		t.Errorf("expected leading half cleared, got %+v", c)
	}
	if c := s.Cell(1, 0); c.Rune != 'x' {
		t.Errorf("expected 'x', got %q", c.Rune)
	}
}

func TestScreenAttributes(t *testing.T) {
	s := NewScreen(10, 1)
	s.SetForeground(ColorRed)
	s.SetBackground(ColorBlue)
	s.AddAttribute(AttrBold | AttrUnderline)
	s.RemoveAttribute(AttrUnderline)
	s.WriteRune('A')

	c := s.Cell(0, 0)
	if c.Foreground != ColorRed || c.Background != ColorBlue {
		t.Errorf("unexpected colors %+v / %+v", c.Foreground, c.Background)
	}
	if c.Attributes != AttrBold {
		t.Errorf("expected bold only, got %b", c.Attributes)
	}

	s.ResetAttributes()
	s.WriteRune('B')
	if c := s.Cell(1, 0); c.Foreground != DefaultForeground || c.Attributes != AttrNone {
		t.Errorf("expected defaults after reset, got %+v", c)
	}
}

func TestScreenReset(t *testing.T) {
	s := NewScreen(5, 2)
	s.WriteRune('A')
	s.SetCursorVisible(false)
	s.SetAutoWrap(false)
	s.SetScrollRegion(0, 0)

	s.Reset()

	if screenText(s) != "\n" {
		t.Errorf("expected blank screen, got %q", screenText(s))
	}
	if !s.CursorVisible() || !s.autoWrap {
		t.Error("expected modes restored")
	}
	if x, y := s.CursorPos(); x != 0 || y != 0 {
		t.Errorf("expected cursor at origin, got (%d,%d)", x, y)
	}
}

func TestColorFromIndex(t *testing.T) {
	tests := []struct {
		index int
		want  Color
	}{
		{1, ColorRed},
		{15, ColorBrightWhite},
		{16, Color{Index: 16}},
		{231, Color{R: 255, G: 255, B: 255, Index: 231}},
		{232, Color{R: 8, G: 8, B: 8, Index: 232}},
		{255, Color{R: 238, G: 238, B: 238, Index: 255}},
		{-1, DefaultForeground},
		{256, DefaultForeground},
	}

	for _, tt := range tests {
		if got := ColorFromIndex(tt.index); got != tt.want {
			t.Errorf("ColorFromIndex(%d) = %+v, want %+v", tt.index, got, tt.want)
		}
	}
}

func TestLineText(t *testing.T) {
	l := NewLine(6)
	l.Cells[0] = Cell{Rune: '日', Width: 2}
	l.Cells[1] = Cell{Width: 0}
	l.Cells[2] = Cell{Rune: 'a', Width: 1}

	if got := l.Text(); got != "日a" {
		t.Errorf("expected %q, got %q", "日a", got)
	}

	l.ClearRange(-5, 100)
	if got := l.Text(); got != "" {
		t.Errorf("expected empty line, got %q", got)
	}
}

func TestCellAttributesHas(t *testing.T) {
	attrs := AttrBold | AttrItalic

	if !attrs.Has(AttrBold) || !attrs.Has(AttrItalic) {
		t.Error("expected bold and italic")
	}
	if attrs.Has(AttrUnderline) {
		t.Error("did not expect underline")
	}
}
