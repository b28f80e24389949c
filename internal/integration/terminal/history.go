package terminal

// DefaultScrollback is the number of rows kept when no capacity is given.
const DefaultScrollback = 1000

// History is a fixed-capacity ring of rows that scrolled off the screen.
// Index 0 is the oldest retained row.
type History struct {
	lines []*Line
	start int
	count int
	added int
}

// NewHistory creates a history ring holding up to maxLines rows.
func NewHistory(maxLines int) *History {
	if maxLines <= 0 {
		maxLines = DefaultScrollback
	}
	return &History{lines: make([]*Line, maxLines)}
}

// Add appends a copy of line, evicting the oldest row when full.
func (h *History) Add(line *Line) {
	cp := &Line{Cells: make([]Cell, len(line.Cells)), Wrapped: line.Wrapped}
	copy(cp.Cells, line.Cells)
	h.added++

	if h.count < len(h.lines) {
		h.lines[(h.start+h.count)%len(h.lines)] = cp
		h.count++
		return
	}
	h.lines[h.start] = cp
	h.start = (h.start + 1) % len(h.lines)
}

// Line returns the row at index, or nil when out of range.
func (h *History) Line(index int) *Line {
	if index < 0 || index >= h.count {
		return nil
	}
	return h.lines[(h.start+index)%len(h.lines)]
}

// Len returns the number of retained rows.
func (h *History) Len() int {
	return h.count
}

// Cap returns the ring capacity.
func (h *History) Cap() int {
	return len(h.lines)
}

// Clear drops every retained row.
func (h *History) Clear() {
	for i := range h.lines {
		h.lines[i] = nil
	}
	h.start = 0
	h.count = 0
	h.added = 0
}

// Added returns how many rows were pushed since the last Clear,
// including rows that have since been evicted.
func (h *History) Added() int {
	return h.added
}

