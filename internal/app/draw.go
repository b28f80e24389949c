package app

import (
	"github.com/dshills/tuisplit/internal/integration/terminal"
	"github.com/dshills/tuisplit/internal/pane"
	"github.com/dshills/tuisplit/internal/renderer/core"
	"github.com/dshills/tuisplit/internal/renderer/statusline"
)

// redraw paints both panes and the status bar, then flushes the frame.
func (s *Session) redraw() {
	for i, p := range s.panes {
		if p == nil {
			continue
		}
		s.drawPane(p, s.rects[i])
	}
	s.drawStatusBar()
	s.placeCursor()
	s.backend.Show()
}

func (s *Session) drawPane(p *pane.Pane, rect core.ScreenRect) {
	if rect.IsEmpty() {
		return
	}
	grid := p.Snapshot()
	blank := core.EmptyCell()

	for y := 0; y < rect.Height(); y++ {
		for x := 0; x < rect.Width(); x++ {
			cell := blank
			if y < grid.Rows && x < grid.Cols {
				cell = convertCell(grid.Cell(y, x))
				if (cell.Width == 2 && x == rect.Width()-1) || (cell.IsContinuation() && x == 0) {
					cell = core.NewStyledCell(' ', cell.Style)
				}
			}
			s.backend.SetCell(rect.Left+x, rect.Top+y, cell)
		}
	}

	if inline := p.Status().Inline(); inline != "" {
		style := core.DefaultStyle().Reverse()
		s.drawText(rect.Left, rect.Bottom-1, rect.Width(), inline, style)
	}
}

// drawStatusBar draws the bottom row when the layout left room for it.
func (s *Session) drawStatusBar() {
	if s.height < 2 || s.width <= 0 {
		return
	}
	infos := make([]statusline.PaneInfo, 0, len(s.panes))
	for _, p := range s.panes {
		if p == nil {
			continue
		}
		st := p.Status()
		infos = append(infos, statusline.PaneInfo{
			Number:  int(p.Slot()) + 1,
			Title:   p.Title(),
			State:   st.Short(),
			Offset:  st.ScrollOffset,
			Focused: p.Slot() == s.focus,
			Failed:  st.Phase == pane.PhaseErrored,
		})
	}
	s.status.SetLayout(s.mode.String())
	s.status.SetPanes(infos...)
	s.status.Resize(s.width)
	s.status.Render(s.backend, s.height-1)
}

// drawText writes text at (x, y) clipped to width.
func (s *Session) drawText(x, y, width int, text string, style core.Style) {
	if width <= 0 {
		return
	}
	text = core.Truncate(text, width, "")
	col := 0
	for _, c := range core.CellsFromString(text, style) {
		if col >= width {
			break
		}
		s.backend.SetCell(x+col, y, c)
		col++
	}
}

// placeCursor shows the cursor for a focused interactive pane viewing its
// live screen, and hides it otherwise.
func (s *Session) placeCursor() {
	p := s.focused()
	if p == nil || p.Kind() != pane.KindInteractive || p.ScrollOffset() > 0 {
		s.backend.HideCursor()
		return
	}
	grid := p.Snapshot()
	rect := s.rects[s.focus]
	if !grid.CursorVisible || grid.CursorRow >= rect.Height() || grid.CursorCol >= rect.Width() {
		s.backend.HideCursor()
		return
	}
	s.backend.ShowCursor(rect.Left+grid.CursorCol, rect.Top+grid.CursorRow)
}

// convertCell maps an emulator cell to a renderer cell.
func convertCell(c terminal.Cell) core.Cell {
	style := core.Style{
		Foreground: convertColor(c.Foreground),
		Background: convertColor(c.Background),
		Attributes: convertAttrs(c.Attributes),
	}
	r := c.Rune
	if r == 0 || c.Attributes.Has(terminal.AttrHidden) {
		r = ' '
	}
	if c.Width == 0 {
		return core.Cell{Width: 0, Style: style}
	}
	return core.Cell{Rune: r, Width: c.Width, Style: style}
}

func convertColor(c terminal.Color) core.Color {
	switch {
	case c.Default:
		return core.ColorDefault
	case c.Index >= 0 && c.Index <= 255:
		return core.ColorFromIndex(uint8(c.Index))
	default:
		return core.ColorFromRGB(c.R, c.G, c.B)
	}
}

var attrMap = []struct {
	from terminal.CellAttributes
	to   core.Attribute
}{
	{terminal.AttrBold, core.AttrBold},
	{terminal.AttrDim, core.AttrDim},
	{terminal.AttrItalic, core.AttrItalic},
	{terminal.AttrUnderline, core.AttrUnderline},
	{terminal.AttrBlink, core.AttrBlink},
	{terminal.AttrReverse, core.AttrReverse},
	{terminal.AttrStrike, core.AttrStrikethrough},
}

func convertAttrs(a terminal.CellAttributes) core.Attribute {
	var out core.Attribute
	for _, m := range attrMap {
		if a.Has(m.from) {
			out |= m.to
		}
	}
	return out
}
