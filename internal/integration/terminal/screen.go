package terminal

// pen is the rendition given to newly written cells.
type pen struct {
	fg, bg Color
	attrs  CellAttributes
}

var defaultPen = pen{fg: DefaultForeground, bg: DefaultBackground}

func (p pen) cell(r rune, width int) Cell {
	return Cell{Rune: r, Width: width, Foreground: p.fg, Background: p.bg, Attributes: p.attrs}
}

// cursorState is a cursor position and its pen, as saved by DECSC.
type cursorState struct {
	x, y int
	pen  pen
}

// Screen is the visible cell grid of a terminal.
//
// Screen is not safe for concurrent use; it is owned by the goroutine
// that feeds it.
type Screen struct {
	width, height int
	lines         []*Line

	cur           cursorState
	saved         cursorState
	cursorVisible bool
	autoWrap      bool

	// top and bottom bound the scroll region, inclusive.
	top, bottom int

	// history receives rows that scroll off the top of the full screen.
	history *History
}

// NewScreen creates a blank screen. Non-positive sizes select 80x24.
func NewScreen(width, height int) *Screen {
	if width < 1 {
		width = DefaultCols
	}
	if height < 1 {
		height = DefaultRows
	}
	s := &Screen{
		width:  width,
		height: height,
		lines:  make([]*Line, height),
	}
	for y := range s.lines {
		s.lines[y] = NewLine(width)
	}
	s.resetModes()
	return s
}

func (s *Screen) resetModes() {
	s.cur = cursorState{pen: defaultPen}
	s.saved = s.cur
	s.cursorVisible = true
	s.autoWrap = true
	s.top, s.bottom = 0, s.height-1
}

// SetHistory attaches a scrollback store. A nil history discards rows.
func (s *Screen) SetHistory(h *History) {
	s.history = h
}

// ClearHistory drops the attached scrollback.
func (s *Screen) ClearHistory() {
	if s.history != nil {
		s.history.Clear()
	}
}

func (s *Screen) Width() int  { return s.width }
func (s *Screen) Height() int { return s.height }

// CursorPos returns the cursor column and row. The column equals Width
// while a wrap is pending.
func (s *Screen) CursorPos() (x, y int) {
	return s.cur.x, s.cur.y
}

func (s *Screen) CursorVisible() bool {
	return s.cursorVisible
}

// ScrollRegion returns the inclusive scroll region rows.
func (s *Screen) ScrollRegion() (top, bottom int) {
	return s.top, s.bottom
}

// Cell returns the cell at (x, y), or a blank when out of bounds.
func (s *Screen) Cell(x, y int) Cell {
	if !s.inBounds(x, y) {
		return EmptyCell()
	}
	return s.lines[y].Cells[x]
}

// Line returns a copy of row y, or nil when out of bounds.
func (s *Screen) Line(y int) []Cell {
	if y < 0 || y >= s.height {
		return nil
	}
	return append([]Cell(nil), s.lines[y].Cells...)
}

// SetCell overwrites the cell at (x, y) when in bounds.
func (s *Screen) SetCell(x, y int, cell Cell) {
	if s.inBounds(x, y) {
		s.lines[y].Cells[x] = cell
	}
}

func (s *Screen) inBounds(x, y int) bool {
	return x >= 0 && x < s.width && y >= 0 && y < s.height
}

// WriteRune writes r at the cursor with the current pen and advances.
// Wide runes take two cells and zero-width runes are dropped.
func (s *Screen) WriteRune(r rune) {
	width := min(cellWidth.RuneWidth(r), 2)
	if width == 0 {
		return
	}
	if width == 2 && s.width < 2 {
		r, width = '�', 1
	}

	// A full row leaves the cursor past the last column until the next rune.
	if s.cur.x+width > s.width {
		if !s.autoWrap {
			s.cur.x = s.width - width
		} else {
			s.lines[s.cur.y].Wrapped = true
			s.cur.x = 0
			s.LineFeed()
		}
	}

	row := s.lines[s.cur.y]
	s.breakWide(row, s.cur.x)
	row.Cells[s.cur.x] = s.cur.pen.cell(r, width)
	if width == 2 {
		s.breakWide(row, s.cur.x+1)
		row.Cells[s.cur.x+1] = s.cur.pen.cell(0, 0)
	}
	s.cur.x += width
}

// breakWide blanks the other half of a wide rune overlapping column x.
func (s *Screen) breakWide(row *Line, x int) {
	if x < 0 || x >= len(row.Cells) {
		return
	}
	c := row.Cells[x]
	if c.IsContinuation() && x > 0 {
		row.Cells[x-1] = EmptyCell()
	} else if c.Width == 2 && x+1 < len(row.Cells) {
		row.Cells[x+1] = EmptyCell()
	}
}

// MoveCursor places the cursor at (x, y), clamped to the screen.
func (s *Screen) MoveCursor(x, y int) {
	s.cur.x = clamp(x, 0, s.width-1)
	s.cur.y = clamp(y, 0, s.height-1)
}

// MoveCursorRelative moves the cursor by (dx, dy). A pending wrap is
// cancelled first.
func (s *Screen) MoveCursorRelative(dx, dy int) {
	s.MoveCursor(min(s.cur.x, s.width-1)+dx, s.cur.y+dy)
}

func (s *Screen) CarriageReturn() {
	s.cur.x = 0
}

// LineFeed moves down a row, scrolling the region at its bottom margin.
func (s *Screen) LineFeed() {
	switch {
	case s.cur.y == s.bottom:
		s.ScrollUp(1)
	case s.cur.y < s.height-1:
		s.cur.y++
	}
}

// ReverseLineFeed moves up a row, scrolling the region at its top margin.
func (s *Screen) ReverseLineFeed() {
	switch {
	case s.cur.y == s.top:
		s.ScrollDown(1)
	case s.cur.y > 0:
		s.cur.y--
	}
}

// ScrollUp scrolls the region up n rows. Rows leaving the top go to
// history only when the region is the full screen.
func (s *Screen) ScrollUp(n int) {
	s.shiftUp(s.top, s.bottom, n, true)
}

// ScrollDown scrolls the region down n rows.
func (s *Screen) ScrollDown(n int) {
	s.shiftDown(s.top, s.bottom, n)
}

// shiftUp moves rows top..bottom up by n and blanks the rows uncovered at
// the bottom.
func (s *Screen) shiftUp(top, bottom, n int, record bool) {
	if n <= 0 || top > bottom {
		return
	}
	n = min(n, bottom-top+1)
	if record && top == 0 && bottom == s.height-1 && s.history != nil {
		for _, row := range s.lines[:n] {
			s.history.Add(row)
		}
	}
	copy(s.lines[top:bottom+1], s.lines[top+n:bottom+1])
	for y := bottom - n + 1; y <= bottom; y++ {
		s.lines[y] = NewLine(s.width)
	}
}

// shiftDown moves rows top..bottom down by n and blanks the rows
// uncovered at the top.
func (s *Screen) shiftDown(top, bottom, n int) {
	if n <= 0 || top > bottom {
		return
	}
	n = min(n, bottom-top+1)
	copy(s.lines[top+n:bottom+1], s.lines[top:bottom+1-n])
	for y := top; y < top+n; y++ {
		s.lines[y] = NewLine(s.width)
	}
}

// SetScrollRegion sets the inclusive region and homes the cursor. A
// region of fewer than two rows is ignored.
func (s *Screen) SetScrollRegion(top, bottom int) {
	top, bottom = max(top, 0), min(bottom, s.height-1)
	if top >= bottom {
		return
	}
	s.top, s.bottom = top, bottom
	s.cur.x, s.cur.y = 0, 0
}

// ResetScrollRegion makes the whole screen the scroll region.
func (s *Screen) ResetScrollRegion() {
	s.top, s.bottom = 0, s.height-1
}

func (s *Screen) clearRows(from, to int) {
	for y := max(from, 0); y < min(to, s.height); y++ {
		s.lines[y].Clear()
	}
}

// ClearScreen blanks every row.
func (s *Screen) ClearScreen() {
	s.clearRows(0, s.height)
}

// ClearScreenAbove blanks from the top of the screen through the cursor.
func (s *Screen) ClearScreenAbove() {
	s.clearRows(0, s.cur.y)
	s.ClearLineLeft()
}

// ClearScreenBelow blanks from the cursor to the end of the screen.
func (s *Screen) ClearScreenBelow() {
	s.ClearLineRight()
	s.clearRows(s.cur.y+1, s.height)
}

func (s *Screen) ClearLine() {
	s.lines[s.cur.y].Clear()
}

// ClearLineLeft blanks from the start of the row through the cursor.
func (s *Screen) ClearLineLeft() {
	s.lines[s.cur.y].ClearRange(0, s.cur.x+1)
}

// ClearLineRight blanks from the cursor to the end of the row.
func (s *Screen) ClearLineRight() {
	s.lines[s.cur.y].ClearRange(s.cur.x, s.width)
}

// InsertLines opens n blank rows at the cursor inside the scroll region.
func (s *Screen) InsertLines(n int) {
	if s.cur.y >= s.top && s.cur.y <= s.bottom {
		s.shiftDown(s.cur.y, s.bottom, n)
	}
}

// DeleteLines removes n rows at the cursor inside the scroll region.
// Deleted rows do not enter history.
func (s *Screen) DeleteLines(n int) {
	if s.cur.y >= s.top && s.cur.y <= s.bottom {
		s.shiftUp(s.cur.y, s.bottom, n, false)
	}
}

// InsertChars shifts the rest of the row right by n blanks.
func (s *Screen) InsertChars(n int) {
	x := s.cur.x
	if n <= 0 || x >= s.width {
		return
	}
	n = min(n, s.width-x)
	row := s.lines[s.cur.y]
	copy(row.Cells[x+n:], row.Cells[x:s.width-n])
	row.ClearRange(x, x+n)
}

// DeleteChars removes n cells at the cursor, shifting the row left.
func (s *Screen) DeleteChars(n int) {
	x := s.cur.x
	if n <= 0 || x >= s.width {
		return
	}
	n = min(n, s.width-x)
	row := s.lines[s.cur.y]
	copy(row.Cells[x:], row.Cells[x+n:])
	row.ClearRange(s.width-n, s.width)
}

// EraseChars blanks n cells from the cursor without shifting.
func (s *Screen) EraseChars(n int) {
	s.lines[s.cur.y].ClearRange(s.cur.x, s.cur.x+n)
}

func (s *Screen) SetForeground(fg Color) {
	s.cur.pen.fg = fg
}

func (s *Screen) SetBackground(bg Color) {
	s.cur.pen.bg = bg
}

func (s *Screen) AddAttribute(attr CellAttributes) {
	s.cur.pen.attrs |= attr
}

func (s *Screen) RemoveAttribute(attr CellAttributes) {
	s.cur.pen.attrs &^= attr
}

// ResetAttributes restores the default pen.
func (s *Screen) ResetAttributes() {
	s.cur.pen = defaultPen
}

// SaveCursor records the cursor position and pen.
func (s *Screen) SaveCursor() {
	s.saved = s.cur
}

// RestoreCursor returns to the saved position and pen.
func (s *Screen) RestoreCursor() {
	s.MoveCursor(s.saved.x, s.saved.y)
	s.cur.pen = s.saved.pen
}

func (s *Screen) SetCursorVisible(visible bool) {
	s.cursorVisible = visible
}

func (s *Screen) SetAutoWrap(enabled bool) {
	s.autoWrap = enabled
}

// Resize changes the grid size, keeping the top-left cells that still
// fit. When the cursor row would fall below the new height, rows are
// pushed off the top into history so the cursor row stays visible. The
// scroll region resets to the full screen.
func (s *Screen) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if width == s.width && height == s.height {
		return
	}

	drop := max(s.cur.y-height+1, 0)
	if s.history != nil {
		for _, row := range s.lines[:drop] {
			s.history.Add(row)
		}
	}
	kept := s.lines[drop:]

	lines := make([]*Line, height)
	for y := range lines {
		lines[y] = NewLine(width)
		if y >= len(kept) {
			continue
		}
		old := kept[y]
		n := copy(lines[y].Cells, old.Cells)
		// A wide rune cut in half at the new right edge becomes a blank.
		if n > 0 && n < len(old.Cells) && lines[y].Cells[n-1].Width == 2 {
			lines[y].Cells[n-1] = EmptyCell()
		}
		lines[y].Wrapped = old.Wrapped && n == len(old.Cells)
	}

	s.lines = lines
	s.width, s.height = width, height
	s.ResetScrollRegion()

	s.cur.x, s.cur.y = clamp(s.cur.x, 0, width-1), clamp(s.cur.y-drop, 0, height-1)
	s.saved.x, s.saved.y = clamp(s.saved.x, 0, width-1), clamp(s.saved.y-drop, 0, height-1)
}

// Reset blanks the screen and restores every mode to its default.
func (s *Screen) Reset() {
	s.ClearScreen()
	s.resetModes()
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
