package terminal

// Grid is a read-only copy of an emulator view.
type Grid struct {
	Rows  int
	Cols  int
	Cells [][]Cell

	CursorRow     int
	CursorCol     int
	CursorVisible bool
}

// Row returns the text of row y with trailing blanks removed.
func (g Grid) Row(y int) string {
	if y < 0 || y >= len(g.Cells) {
		return ""
	}
	l := Line{Cells: g.Cells[y]}
	return l.Text()
}

// Cell returns the cell at (row, col), or an empty cell when out of range.
func (g Grid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g.Cells) || col < 0 || col >= len(g.Cells[row]) {
		return EmptyCell()
	}
	return g.Cells[row][col]
}

// Emulator couples a Screen with its Parser and scrollback History.
type Emulator struct {
	screen  *Screen
	parser  *Parser
	history *History
	title   string
}

// NewEmulator creates an emulator with the given size and scrollback capacity.
func NewEmulator(rows, cols, scrollback int) *Emulator {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	e := &Emulator{
		screen:  NewScreen(cols, rows),
		history: NewHistory(scrollback),
	}
	e.screen.SetHistory(e.history)
	e.parser = NewParser(e.screen)
	e.parser.SetTitleCallback(func(t string) { e.title = t })
	return e
}

// Feed parses b and applies it to the grid.
func (e *Emulator) Feed(b []byte) {
	e.parser.Parse(b)
}

// Resize changes the grid size. Sizes below 1x1 are raised to 1x1.
func (e *Emulator) Resize(rows, cols int) {
	e.screen.Resize(cols, rows)
}

// Size returns the current grid size.
func (e *Emulator) Size() (rows, cols int) {
	return e.screen.Height(), e.screen.Width()
}

// HistoryLen returns the number of scrollback rows.
func (e *Emulator) HistoryLen() int {
	return e.history.Len()
}

// HistoryAdded returns the number of rows pushed into scrollback since it
// was last cleared.
func (e *Emulator) HistoryAdded() int {
	return e.history.Added()
}

// ClearHistory drops all scrollback rows.
func (e *Emulator) ClearHistory() {
	e.history.Clear()
}

// Reset clears the screen, the scrollback, the title and any partial sequence.
func (e *Emulator) Reset() {
	e.parser.Reset()
	e.screen.Reset()
	e.history.Clear()
	e.title = ""
}

// Title returns the last title set by OSC 0 or 2.
func (e *Emulator) Title() string {
	return e.title
}

// Anomalies returns the number of malformed sequences dropped so far.
func (e *Emulator) Anomalies() int {
	return e.parser.Anomalies()
}

// SetAnomalyHook installs fn to observe dropped sequences.
func (e *Emulator) SetAnomalyHook(fn func(seq string)) {
	e.parser.SetAnomalyCallback(fn)
}

// Screen exposes the live screen.
func (e *Emulator) Screen() *Screen {
	return e.screen
}

// ClampOffset bounds a scroll offset to [0, HistoryLen].
func (e *Emulator) ClampOffset(offset int) int {
	return clamp(offset, 0, e.history.Len())
}

// Snapshot copies the view that starts offset rows back in history.
// Offset 0 is the live screen.
func (e *Emulator) Snapshot(offset int) Grid {
	offset = e.ClampOffset(offset)
	rows, cols := e.screen.Height(), e.screen.Width()

	g := Grid{
		Rows:  rows,
		Cols:  cols,
		Cells: make([][]Cell, rows),
	}

	histLen := e.history.Len()
	for y := 0; y < rows; y++ {
		// Virtual row index over history followed by the live screen.
		v := histLen - offset + y
		if v < histLen {
			g.Cells[y] = fitRow(e.history.Line(v).Cells, cols)
			continue
		}
		g.Cells[y] = e.screen.Line(v - histLen)
	}

	if offset == 0 {
		g.CursorCol, g.CursorRow = e.screen.CursorPos()
		if g.CursorCol >= cols {
			g.CursorCol = cols - 1
		}
		g.CursorVisible = e.screen.CursorVisible()
	}
	return g
}

// fitRow pads or truncates a history row to width.
func fitRow(src []Cell, width int) []Cell {
	row := make([]Cell, width)
	n := copy(row, src)
	if n > 0 && n < len(src) && row[n-1].Width == 2 {
		row[n-1] = EmptyCell()
	}
	for i := n; i < width; i++ {
		row[i] = EmptyCell()
	}
	return row
}
