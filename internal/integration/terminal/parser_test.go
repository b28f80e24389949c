package terminal

import (
	"testing"
)

func newParsed(t *testing.T, cols, rows int, input string) (*Screen, *Parser) {
	t.Helper()
	s := NewScreen(cols, rows)
	p := NewParser(s)
	p.ParseString(input)
	return s, p
}

func TestParserPlainText(t *testing.T) {
	s, _ := newParsed(t, 80, 24, "Hello")

	if text := s.lines[0].Text(); text != "Hello" {
		t.Errorf("expected 'Hello', got '%s'", text)
	}
	if x, y := s.CursorPos(); x != 5 || y != 0 {
		t.Errorf("expected cursor at (5,0), got (%d,%d)", x, y)
	}
}

func TestParserControlCharacters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		x, y  int
		check func(*Screen) bool
	}{
		{"crlf", "A\r\nB", 1, 1, func(s *Screen) bool { return s.Cell(0, 1).Rune == 'B' }},
		{"lf keeps column", "AB\nC", 3, 1, func(s *Screen) bool { return s.Cell(2, 1).Rune == 'C' }},
		{"carriage return overwrites", "ABC\rX", 1, 0, func(s *Screen) bool { return s.Cell(0, 0).Rune == 'X' && s.Cell(1, 0).Rune == 'B' }},
		{"tab stops every 8", "A\tB", 9, 0, func(s *Screen) bool { return s.Cell(8, 0).Rune == 'B' }},
		{"backspace", "AB\bX", 2, 0, func(s *Screen) bool { return s.Cell(1, 0).Rune == 'X' }},
		{"bell ignored", "A\aB", 2, 0, func(s *Screen) bool { return s.Cell(1, 0).Rune == 'B' }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newParsed(t, 80, 24, tt.input)
			if x, y := s.CursorPos(); x != tt.x || y != tt.y {
				t.Errorf("expected cursor at (%d,%d), got (%d,%d)", tt.x, tt.y, x, y)
			}
			if !tt.check(s) {
				t.Errorf("unexpected screen:\n%s", screenText(s))
			}
		})
	}
}

func TestParserCursorMovement(t *testing.T) {
	tests := []struct {
		name  string
		input string
		x, y  int
	}{
		{"CUU", "\x1b[10;10H\x1b[3A", 9, 6},
		{"CUU default", "\x1b[10;10H\x1b[A", 9, 8},
		{"CUD", "\x1b[5B", 0, 5},
		{"CUF", "\x1b[7C", 7, 0},
		{"CUB", "\x1b[1;20H\x1b[4D", 15, 0},
		{"CUB clamps", "\x1b[99D", 0, 0},
		{"CUP", "\x1b[5;10H", 9, 4},
		{"CUP default", "\x1b[5;10H\x1b[H", 0, 0},
		{"HVP", "\x1b[3;4f", 3, 2},
		{"CUP clamps", "\x1b[999;999H", 79, 23},
		{"CNL", "\x1b[1;5H\x1b[2E", 0, 2},
		{"CPL", "\x1b[6;5H\x1b[2F", 0, 3},
		{"CHA", "\x1b[3;1H\x1b[12G", 11, 2},
		{"VPA", "\x1b[1;7H\x1b[9d", 6, 8},
		{"IND", "\x1bD", 0, 1},
		{"NEL", "AB\x1bE", 0, 1},
		{"RI", "\x1b[3;1H\x1bM", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newParsed(t, 80, 24, tt.input)
			if x, y := s.CursorPos(); x != tt.x || y != tt.y {
				t.Errorf("expected cursor at (%d,%d), got (%d,%d)", tt.x, tt.y, x, y)
			}
		})
	}
}

func TestParserEraseDisplay(t *testing.T) {
	fill := "AAAAA\r\nBBBBB\r\nCCCCC\x1b[2;3H"
	tests := []struct {
		name string
		seq  string
		want string
	}{
		{"below", "\x1b[J", "AAAAA\nBB\n"},
		{"above", "\x1b[1J", "\n   BB\nCCCCC"},
		{"all", "\x1b[2J", "\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newParsed(t, 5, 3, fill+tt.seq)
			if got := screenText(s); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParserEraseDisplayScrollback(t *testing.T) {
	s := NewScreen(5, 2)
	h := NewHistory(10)
	s.SetHistory(h)
	p := NewParser(s)

	p.ParseString("1\r\n2\r\n3\r\n")
	if h.Len() == 0 {
		t.Fatal("expected rows in history")
	}

	p.ParseString("\x1b[2J")
	if h.Len() == 0 {
		t.Error("ED 2 should keep history")
	}

	p.ParseString("\x1b[3J")
	if h.Len() != 0 {
		t.Errorf("ED 3 should clear history, got %d rows", h.Len())
	}
}

func TestParserEraseLine(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want string
	}{
		{"right", "\x1b[K", "HEL"},
		{"left", "\x1b[1K", "    O"},
		{"all", "\x1b[2K", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newParsed(t, 10, 2, "HELLO\x1b[1;4H"+tt.seq)
			if got := s.lines[0].Text(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParserSGRAttributes(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want CellAttributes
	}{
		{"bold", "\x1b[1m", AttrBold},
		{"dim", "\x1b[2m", AttrDim},
		{"italic", "\x1b[3m", AttrItalic},
		{"underline", "\x1b[4m", AttrUnderline},
		{"blink", "\x1b[5m", AttrBlink},
		{"reverse", "\x1b[7m", AttrReverse},
		{"hidden", "\x1b[8m", AttrHidden},
		{"strike", "\x1b[9m", AttrStrike},
		{"combined", "\x1b[1;4;7m", AttrBold | AttrUnderline | AttrReverse},
		{"reset", "\x1b[1;4m\x1b[0m", AttrNone},
		{"empty reset", "\x1b[1m\x1b[m", AttrNone},
		{"normal intensity", "\x1b[1;2;4m\x1b[22m", AttrUnderline},
		{"underline off", "\x1b[1;4m\x1b[24m", AttrBold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newParsed(t, 10, 2, tt.seq+"X")
			if got := s.Cell(0, 0).Attributes; got != tt.want {
				t.Errorf("expected attributes %b, got %b", tt.want, got)
			}
		})
	}
}

func TestParserSGRColors(t *testing.T) {
	tests := []struct {
		name   string
		seq    string
		fg, bg Color
	}{
		{"fg red", "\x1b[31m", ColorRed, DefaultBackground},
		{"fg white", "\x1b[37m", ColorWhite, DefaultBackground},
		{"bg blue", "\x1b[44m", DefaultForeground, ColorBlue},
		{"both", "\x1b[32;43m", ColorGreen, ColorYellow},
		{"bright fg", "\x1b[91m", ColorBrightRed, DefaultBackground},
		{"bright bg", "\x1b[104m", DefaultForeground, ColorBrightBlue},
		{"default fg", "\x1b[31m\x1b[39m", DefaultForeground, DefaultBackground},
		{"default bg", "\x1b[41m\x1b[49m", DefaultForeground, DefaultBackground},
		{"256 fg", "\x1b[38;5;196m", ColorFromIndex(196), DefaultBackground},
		{"256 bg", "\x1b[48;5;21m", DefaultForeground, ColorFromIndex(21)},
		{"rgb fg", "\x1b[38;2;10;20;30m", ColorFromRGB(10, 20, 30), DefaultBackground},
		{"rgb bg clamps", "\x1b[48;2;300;0;0m", DefaultForeground, ColorFromRGB(255, 0, 0)},
		{"reset", "\x1b[31;42m\x1b[0m", DefaultForeground, DefaultBackground},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newParsed(t, 10, 2, tt.seq+"X")
			c := s.Cell(0, 0)
			if c.Foreground != tt.fg {
				t.Errorf("expected fg %+v, got %+v", tt.fg, c.Foreground)
			}
			if c.Background != tt.bg {
				t.Errorf("expected bg %+v, got %+v", tt.bg, c.Background)
			}
		})
	}
}

func TestParserSGRColorThenAttribute(t *testing.T) {
	s, _ := newParsed(t, 10, 2, "\x1b[38;5;10;1mX")
	c := s.Cell(0, 0)
	if c.Foreground != ColorFromIndex(10) {
		t.Errorf("expected indexed fg, got %+v", c.Foreground)
	}
	if !c.Attributes.Has(AttrBold) {
		t.Error("expected bold after extended color")
	}
}

func TestParserOSCTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bel", "\x1b]0;My Title\x07"},
		{"st", "\x1b]2;My Title\x1b\\"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScreen(80, 24)
			p := NewParser(s)
			var title string
			p.SetTitleCallback(func(v string) { title = v })

			p.ParseString(tt.input + "Z")

			if title != "My Title" {
				t.Errorf("expected title 'My Title', got '%s'", title)
			}
			if s.Cell(0, 0).Rune != 'Z' {
				t.Errorf("expected text after OSC at column 0, got %q", s.Cell(0, 0).Rune)
			}
		})
	}
}

func TestParserStringsSwallowed(t *testing.T) {
	for _, input := range []string{
		"\x1bPq#0;2;0;0;0~-\x1b\\Z", // DCS
		"\x1b_payload\x1b\\Z",       // APC
		"\x1b^privacy\x07Z",         // PM
		"\x1b]8;;http://x\x1b\\Z",   // hyperlink
	} {
		s, p := newParsed(t, 20, 2, input)
		if got := s.lines[0].Text(); got != "Z" {
			t.Errorf("%q: expected 'Z', got %q", input, got)
		}
		if !p.InGround() {
			t.Errorf("%q: parser not in ground state", input)
		}
	}
}

func TestParserScrollAndEditing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"SU", "A\r\nB\r\nC\x1b[S", "B\nC\n"},
		{"SD", "A\r\nB\r\nC\x1b[T", "\nA\nB"},
		{"IL", "A\r\nB\r\nC\x1b[2;1H\x1b[L", "A\n\nB"},
		{"DL", "A\r\nB\r\nC\x1b[1;1H\x1b[M", "B\nC\n"},
		{"ICH", "ABCDE\x1b[1;2H\x1b[2@", "A  BC\n\n"},
		{"DCH", "ABCDE\x1b[1;2H\x1b[2P", "ADE\n\n"},
		{"ECH", "ABCDE\x1b[1;2H\x1b[2X", "A  DE\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newParsed(t, 5, 3, tt.input)
			if got := screenText(s); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParserScrollRegion(t *testing.T) {
	s := NewScreen(5, 5)
	h := NewHistory(10)
	s.SetHistory(h)
	p := NewParser(s)

	p.ParseString("\x1b[2;4r")
	if top, bottom := s.ScrollRegion(); top != 1 || bottom != 3 {
		t.Fatalf("expected region 1-3, got %d-%d", top, bottom)
	}

	p.ParseString("\x1b[1;1HTOP\x1b[2;1HA\r\nB\r\nC\r\nD")
	if got := s.lines[0].Text(); got != "TOP" {
		t.Errorf("row outside region changed: %q", got)
	}
	if got := s.lines[3].Text(); got != "D" {
		t.Errorf("expected 'D' at region bottom, got %q", got)
	}
	if h.Len() != 0 {
		t.Errorf("partial region scroll must not feed history, got %d", h.Len())
	}
}

func TestParserPrivateModes(t *testing.T) {
	s, p := newParsed(t, 10, 2, "\x1b[?25l")
	if s.CursorVisible() {
		t.Error("expected cursor hidden")
	}
	p.ParseString("\x1b[?25h")
	if !s.CursorVisible() {
		t.Error("expected cursor visible")
	}

	p.ParseString("\x1b[?7l\x1b[1;9HABCD")
	if text := s.lines[0].Text(); text != "        AD" {
		t.Errorf("expected overwrite at last column without wrap, got %q", text)
	}
	if s.lines[1].Text() != "" {
		t.Error("expected no wrap with ?7l")
	}

	before := screenText(s)
	p.ParseString("\x1b[?1049h\x1b[?2004h\x1b[?1h")
	if screenText(s) != before {
		t.Error("unsupported private modes should have no effect")
	}
}

func TestParserSaveRestoreCursor(t *testing.T) {
	for _, seq := range [][2]string{{"\x1b7", "\x1b8"}, {"\x1b[s", "\x1b[u"}} {
		s, _ := newParsed(t, 80, 24, "\x1b[5;10H\x1b[31m"+seq[0]+"\x1b[1;1H\x1b[0m"+seq[1]+"X")
		if s.Cell(9, 4).Rune != 'X' {
			t.Errorf("%q: expected X at restored position", seq)
		}
		if s.Cell(9, 4).Foreground != ColorRed {
			t.Errorf("%q: expected restored red foreground", seq)
		}
	}
}

func TestParserRIS(t *testing.T) {
	s, _ := newParsed(t, 10, 3, "\x1b[1mHELLO\x1b[?25l\x1bc")
	if screenText(s) != "\n\n" {
		t.Errorf("expected cleared screen, got %q", screenText(s))
	}
	if !s.CursorVisible() {
		t.Error("expected cursor visible after reset")
	}
	s.WriteRune('A')
	if s.Cell(0, 0).Attributes != AttrNone {
		t.Error("expected attributes cleared after reset")
	}
}

func TestParserUTF8(t *testing.T) {
	s, _ := newParsed(t, 10, 2, "héllo")
	if got := s.lines[0].Text(); got != "héllo" {
		t.Errorf("expected 'héllo', got %q", got)
	}
}

func TestParserUTF8SplitAcrossCalls(t *testing.T) {
	s := NewScreen(10, 2)
	p := NewParser(s)
	data := []byte("€x")

	for _, b := range data {
		p.Parse([]byte{b})
	}

	if got := s.lines[0].Text(); got != "€x" {
		t.Errorf("expected '€x', got %q", got)
	}
}

func TestParserInvalidUTF8(t *testing.T) {
	s, _ := newParsed(t, 10, 2, "a\xffb\xc3(")
	want := "a�b�("
	if got := s.lines[0].Text(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParserWideRunes(t *testing.T) {
	s, _ := newParsed(t, 10, 2, "日本x")

	if c := s.Cell(0, 0); c.Rune != '日' || c.Width != 2 {
		t.Errorf("expected wide 日 at 0, got %q width %d", c.Rune, c.Width)
	}
	if c := s.Cell(1, 0); !c.IsContinuation() {
		t.Error("expected continuation cell at 1")
	}
	if c := s.Cell(4, 0); c.Rune != 'x' {
		t.Errorf("expected x at 4, got %q", c.Rune)
	}
	if x, _ := s.CursorPos(); x != 5 {
		t.Errorf("expected cursor at 5, got %d", x)
	}
}

func TestParserWideRuneWrapsAtEdge(t *testing.T) {
	s, _ := newParsed(t, 5, 2, "abcd日")

	if c := s.Cell(0, 1); c.Rune != '日' {
		t.Errorf("expected wide rune wrapped to next row, got %q", c.Rune)
	}
	if !s.lines[0].Wrapped {
		t.Error("expected first row marked wrapped")
	}
}

func TestParserMalformedReturnsToGround(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"control inside csi", "\x1b[12\x01AB", "AB"},
		{"esc restarts", "\x1b[12\x1b[31mAB", "AB"},
		{"control inside escape", "\x1b\x02AB", "AB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := newParsed(t, 10, 2, tt.input)
			if got := s.lines[0].Text(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if !p.InGround() {
				t.Error("parser should be in ground state")
			}
		})
	}
}

func TestParserMalformedCountsAnomaly(t *testing.T) {
	s := NewScreen(10, 2)
	p := NewParser(s)
	var seen []string
	p.SetAnomalyCallback(func(seq string) { seen = append(seen, seq) })

	p.ParseString("\x1b[5\x02X")

	if p.Anomalies() != 1 || len(seen) != 1 {
		t.Errorf("expected 1 anomaly, got %d (%d callbacks)", p.Anomalies(), len(seen))
	}
	if s.Cell(0, 0).Rune != 'X' {
		t.Error("expected text after the anomaly to render")
	}
	if x, y := s.CursorPos(); x != 1 || y != 0 {
		t.Errorf("malformed sequence moved cursor to (%d,%d)", x, y)
	}
}

func TestParserParameterLimits(t *testing.T) {
	s, p := newParsed(t, 80, 24, "\x1b[99999999;5H")
	if x, y := s.CursorPos(); x != 4 || y != 23 {
		t.Errorf("expected clamped cursor (4,23), got (%d,%d)", x, y)
	}

	var seq string
	for i := 0; i < 40; i++ {
		seq += "1;"
	}
	p.ParseString("\x1b[" + seq + "mA")
	if len(p.params) != 0 {
		t.Error("params should be cleared after dispatch")
	}
	if s.Cell(4, 23).Rune != 'A' {
		t.Error("expected text after long parameter list")
	}
}

func TestParserUnknownSequenceConsumed(t *testing.T) {
	s, p := newParsed(t, 10, 2, "\x1b[>0c\x1b[6n\x1b[2 q\x1b(BA\x1b=B")
	if got := s.lines[0].Text(); got != "AB" {
		t.Errorf("expected 'AB', got %q", got)
	}
	if p.Anomalies() != 0 {
		t.Errorf("well-formed sequences are not anomalies, got %d", p.Anomalies())
	}
}

func TestParserSplitCUPMatchesSingleFeed(t *testing.T) {
	input := []byte("ab\x1b[12;34Hcd\x1b[1;31mX\x1b[0m")

	ref := NewScreen(80, 24)
	NewParser(ref).Parse(input)

	for i := 0; i <= len(input); i++ {
		s := NewScreen(80, 24)
		p := NewParser(s)
		p.Parse(input[:i])
		p.Parse(input[i:])

		if screenText(s) != screenText(ref) {
			t.Fatalf("split at %d: text differs", i)
		}
		rx, ry := ref.CursorPos()
		if x, y := s.CursorPos(); x != rx || y != ry {
			t.Fatalf("split at %d: cursor (%d,%d), want (%d,%d)", i, x, y, rx, ry)
		}
		if s.Cell(35, 11) != ref.Cell(35, 11) {
			t.Fatalf("split at %d: attributes differ", i)
		}
	}
}

func TestParserReset(t *testing.T) {
	s := NewScreen(10, 2)
	p := NewParser(s)
	p.ParseString("\x1b[12")
	if p.InGround() {
		t.Fatal("expected parser mid-sequence")
	}
	p.Reset()
	p.ParseString("A")
	if s.Cell(0, 0).Rune != 'A' {
		t.Error("expected plain text after reset")
	}
}

func TestParserStateString(t *testing.T) {
	tests := []struct {
		state parserState
		want  string
	}{
		{stateGround, "ground"},
		{stateEscape, "escape"},
		{stateCSIParam, "csi-param"},
		{stateString, "string"},
		{parserState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("state %d: expected %q, got %q", tt.state, tt.want, got)
		}
	}
}
