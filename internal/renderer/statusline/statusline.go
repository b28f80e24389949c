// Package statusline renders the bottom status bar: the layout indicator,
// one segment per pane and key help.
package statusline

import (
	"fmt"
	"strings"

	"github.com/dshills/tuisplit/internal/renderer/backend"
	"github.com/dshills/tuisplit/internal/renderer/core"
)

const (
	// maxTitleWidth bounds each pane title in columns.
	maxTitleWidth = 24

	separator = " │ "
)

// Key help, longest first. The widest form that fits is drawn.
var helpForms = []string{
	"q quit  v/h layout  tab focus  ↑↓ scroll  1-4 diag  ^N shell  F5 refresh",
	"q quit  v/h layout  tab focus  1-4 diag",
	"q quit  tab focus",
	"q quit",
}

// PaneInfo is one pane's segment.
type PaneInfo struct {
	// Number is the 1-based pane number.
	Number  int
	Title   string
	State   string
	Offset  int
	Focused bool
	// Failed marks the segment with the error style.
	Failed bool
}

// StatusLine holds the status bar contents between renders.
type StatusLine struct {
	layout string
	panes  []PaneInfo
	width  int

	barStyle    core.Style
	layoutStyle core.Style
	focusStyle  core.Style
	errorStyle  core.Style
}

// New creates a status line with the default styles.
func New() *StatusLine {
	bar := core.DefaultStyle().Reverse()
	return &StatusLine{
		barStyle:    bar,
		layoutStyle: bar.Bold(),
		focusStyle:  bar.Bold(),
		errorStyle:  bar.WithForeground(core.ColorFromIndex(1)),
	}
}

// SetLayout updates the layout indicator.
func (s *StatusLine) SetLayout(name string) {
	s.layout = name
}

// SetPanes replaces the pane segments.
func (s *StatusLine) SetPanes(panes ...PaneInfo) {
	s.panes = append(s.panes[:0], panes...)
}

// Resize updates the status line width.
func (s *StatusLine) Resize(width int) {
	s.width = width
}

// Text returns the status bar as plain text, clipped to the width.
func (s *StatusLine) Text() string {
	var sb strings.Builder
	for _, seg := range s.segments() {
		sb.WriteString(seg.text)
	}
	return core.Truncate(sb.String(), s.width, "")
}

// Render draws the status line on row.
func (s *StatusLine) Render(b backend.Backend, row int) {
	if s.width <= 0 {
		return
	}
	b.Fill(core.RectFromSize(row, 0, 1, s.width), core.NewStyledCell(' ', s.barStyle))

	col := 0
	for _, seg := range s.segments() {
		text := core.Truncate(seg.text, s.width-col, "")
		for _, c := range core.CellsFromString(text, seg.style) {
			b.SetCell(col, row, c)
			col++
		}
		if col >= s.width {
			return
		}
	}
}

type segment struct {
	text  string
	style core.Style
}

func (s *StatusLine) segments() []segment {
	segs := []segment{{" " + s.layout + " ", s.layoutStyle}}

	for _, p := range s.panes {
		marker := " "
		style := s.barStyle
		if p.Focused {
			marker = "*"
			style = s.focusStyle
		}
		if p.Failed {
			style = s.errorStyle
		}
		text := fmt.Sprintf("%s%s%d %s [%s]", separator, marker, p.Number, core.Truncate(p.Title, maxTitleWidth, "…"), p.State)
		if p.Offset > 0 {
			text += fmt.Sprintf(" ↑%d", p.Offset)
		}
		segs = append(segs, segment{text, style})
	}

	used := 0
	for _, seg := range segs {
		used += core.StringWidth(seg.text)
	}
	if help := s.help(s.width - used - core.StringWidth(separator)); help != "" {
		segs = append(segs, segment{separator + help, s.barStyle})
	}
	return segs
}

// help returns the widest help form that fits in room columns.
func (s *StatusLine) help(room int) string {
	for _, h := range helpForms {
		if core.StringWidth(h) <= room {
			return h
		}
	}
	return ""
}
