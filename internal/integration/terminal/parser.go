package terminal

import (
	"strconv"
	"strings"
)

const (
	maxParams     = 16
	maxParamValue = 65535
	maxStringLen  = 4096
)

// Parser parses ANSI escape sequences and updates the screen.
// Its state persists across Parse calls, so a sequence split between two
// reads is applied exactly once.
type Parser struct {
	screen *Screen

	state    parserState
	params   []int
	hasParam bool   // a digit was seen for the current parameter
	inter    []byte // intermediate and private-marker bytes
	str      []byte // OSC payload
	strKind  byte   // ']' for OSC, 'P' for DCS/PM/APC
	strEsc   bool   // ESC seen inside a string, ST pending

	// UTF-8 decoding state
	utf8Buf   [4]byte
	utf8Len   int
	utf8Count int

	anomalies int

	onTitle   func(string)
	onAnomaly func(seq string)
}

type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeInter
	stateCSIParam
	stateCSIInter
	stateString
)

func (s parserState) String() string {
	switch s {
	case stateGround:
		return "ground"
	case stateEscape:
		return "escape"
	case stateEscapeInter:
		return "escape-intermediate"
	case stateCSIParam:
		return "csi-param"
	case stateCSIInter:
		return "csi-intermediate"
	case stateString:
		return "string"
	default:
		return "unknown"
	}
}

// NewParser creates a new ANSI parser for the given screen.
func NewParser(screen *Screen) *Parser {
	return &Parser{
		screen: screen,
		state:  stateGround,
		params: make([]int, 0, maxParams),
		inter:  make([]byte, 0, 4),
		str:    make([]byte, 0, 256),
	}
}

// SetTitleCallback sets the callback for OSC 0/2 title changes.
func (p *Parser) SetTitleCallback(fn func(string)) {
	p.onTitle = fn
}

// SetAnomalyCallback sets the callback invoked when a malformed sequence
// is abandoned.
func (p *Parser) SetAnomalyCallback(fn func(seq string)) {
	p.onAnomaly = fn
}

// Anomalies returns how many malformed sequences were abandoned.
func (p *Parser) Anomalies() int {
	return p.anomalies
}

// InGround reports whether the parser is between sequences.
func (p *Parser) InGround() bool {
	return p.state == stateGround && p.utf8Len == 0
}

// Parse parses the given data and updates the screen.
func (p *Parser) Parse(data []byte) {
	for _, b := range data {
		p.processByte(b)
	}
}

// ParseString parses the given string and updates the screen.
func (p *Parser) ParseString(s string) {
	p.Parse([]byte(s))
}

// Reset returns the parser to Ground and drops any partial sequence.
func (p *Parser) Reset() {
	p.state = stateGround
	p.clearSequence()
	p.utf8Len = 0
	p.utf8Count = 0
	p.strEsc = false
}

func (p *Parser) processByte(b byte) {
	switch p.state {
	case stateGround:
		p.processGround(b)
	case stateEscape:
		p.processEscape(b)
	case stateEscapeInter:
		p.processEscapeInter(b)
	case stateCSIParam:
		p.processCSIParam(b)
	case stateCSIInter:
		p.processCSIInter(b)
	case stateString:
		p.processString(b)
	}
}

func (p *Parser) clearSequence() {
	p.params = p.params[:0]
	p.hasParam = false
	p.inter = p.inter[:0]
}

func (p *Parser) enterEscape() {
	p.state = stateEscape
	p.clearSequence()
}

// abandon drops a malformed sequence and returns to Ground.
func (p *Parser) abandon(b byte) {
	p.anomalies++
	if p.onAnomaly != nil {
		p.onAnomaly(p.state.String() + " " + string(p.inter) + formatParams(p.params) + strconv.QuoteRune(rune(b)))
	}
	p.state = stateGround
	p.clearSequence()
}

func (p *Parser) processGround(b byte) {
	if p.utf8Len > 0 {
		p.processUTF8Continuation(b)
		return
	}

	switch {
	case b == 0x1B: // ESC
		p.enterEscape()
	case b == 0x07: // BEL
	case b == 0x08: // BS
		p.screen.MoveCursorRelative(-1, 0)
	case b == 0x09: // HT
		p.handleTab()
	case b == 0x0A, b == 0x0B, b == 0x0C: // LF, VT, FF
		p.screen.LineFeed()
	case b == 0x0D: // CR
		p.screen.CarriageReturn()
	case b >= 0x20 && b < 0x7F:
		p.screen.WriteRune(rune(b))
	case b >= 0xC2 && b < 0xE0:
		p.startUTF8(b, 2)
	case b >= 0xE0 && b < 0xF0:
		p.startUTF8(b, 3)
	case b >= 0xF0 && b < 0xF5:
		p.startUTF8(b, 4)
	case b >= 0x80:
		p.screen.WriteRune('�')
	}
}

func (p *Parser) startUTF8(b byte, n int) {
	p.utf8Buf[0] = b
	p.utf8Len = n
	p.utf8Count = 1
}

func (p *Parser) processUTF8Continuation(b byte) {
	if b < 0x80 || b >= 0xC0 {
		p.utf8Len = 0
		p.utf8Count = 0
		p.screen.WriteRune('�')
		p.processGround(b)
		return
	}

	p.utf8Buf[p.utf8Count] = b
	p.utf8Count++

	if p.utf8Count == p.utf8Len {
		r := p.decodeUTF8()
		p.utf8Len = 0
		p.utf8Count = 0
		p.screen.WriteRune(r)
	}
}

func (p *Parser) decodeUTF8() rune {
	switch p.utf8Len {
	case 2:
		return rune(p.utf8Buf[0]&0x1F)<<6 | rune(p.utf8Buf[1]&0x3F)
	case 3:
		r := rune(p.utf8Buf[0]&0x0F)<<12 |
			rune(p.utf8Buf[1]&0x3F)<<6 |
			rune(p.utf8Buf[2]&0x3F)
		if r < 0x800 || (r >= 0xD800 && r <= 0xDFFF) {
			return '�'
		}
		return r
	case 4:
		r := rune(p.utf8Buf[0]&0x07)<<18 |
			rune(p.utf8Buf[1]&0x3F)<<12 |
			rune(p.utf8Buf[2]&0x3F)<<6 |
			rune(p.utf8Buf[3]&0x3F)
		if r < 0x10000 || r > 0x10FFFF {
			return '�'
		}
		return r
	default:
		return '�'
	}
}

func (p *Parser) processEscape(b byte) {
	switch {
	case b == 0x1B:
		p.enterEscape()
	case b == '[':
		p.state = stateCSIParam
	case b == ']':
		p.enterString(b)
	case b == 'P', b == '^', b == '_', b == 'X': // DCS, PM, APC, SOS
		p.enterString(b)
	case b == '7': // DECSC
		p.screen.SaveCursor()
		p.state = stateGround
	case b == '8': // DECRC
		p.screen.RestoreCursor()
		p.state = stateGround
	case b == 'D': // IND
		p.screen.LineFeed()
		p.state = stateGround
	case b == 'E': // NEL
		p.screen.CarriageReturn()
		p.screen.LineFeed()
		p.state = stateGround
	case b == 'M': // RI
		p.screen.ReverseLineFeed()
		p.state = stateGround
	case b == 'c': // RIS
		p.screen.Reset()
		p.state = stateGround
	case b >= 0x20 && b <= 0x2F:
		p.inter = append(p.inter, b)
		p.state = stateEscapeInter
	case b >= 0x30 && b <= 0x7E:
		// Charset selection and keypad modes have no effect here.
		p.state = stateGround
	default:
		p.abandon(b)
	}
}

func (p *Parser) processEscapeInter(b byte) {
	switch {
	case b == 0x1B:
		p.enterEscape()
	case b >= 0x20 && b <= 0x2F:
		if len(p.inter) < cap(p.inter) {
			p.inter = append(p.inter, b)
		}
	case b >= 0x30 && b <= 0x7E:
		p.state = stateGround
	default:
		p.abandon(b)
	}
}

func (p *Parser) processCSIParam(b byte) {
	switch {
	case b == 0x1B:
		p.enterEscape()
	case b >= '0' && b <= '9':
		if len(p.params) == 0 {
			p.params = append(p.params, 0)
		}
		last := len(p.params) - 1
		if v := p.params[last]*10 + int(b-'0'); v <= maxParamValue {
			p.params[last] = v
		} else {
			p.params[last] = maxParamValue
		}
		p.hasParam = true
	case b == ';', b == ':':
		if len(p.params) == 0 {
			p.params = append(p.params, 0)
		}
		if len(p.params) < maxParams {
			p.params = append(p.params, 0)
		}
		p.hasParam = false
	case b >= 0x3C && b <= 0x3F: // private markers < = > ?
		if len(p.params) > 0 || p.hasParam {
			p.abandon(b)
			return
		}
		p.inter = append(p.inter, b)
	case b >= 0x20 && b <= 0x2F:
		p.inter = append(p.inter, b)
		p.state = stateCSIInter
	case b >= 0x40 && b <= 0x7E:
		p.handleCSI(b)
		p.state = stateGround
		p.clearSequence()
	default:
		p.abandon(b)
	}
}

func (p *Parser) processCSIInter(b byte) {
	switch {
	case b == 0x1B:
		p.enterEscape()
	case b >= 0x20 && b <= 0x2F:
		if len(p.inter) < cap(p.inter) {
			p.inter = append(p.inter, b)
		}
	case b >= 0x40 && b <= 0x7E:
		p.handleCSI(b)
		p.state = stateGround
		p.clearSequence()
	default:
		p.abandon(b)
	}
}

func (p *Parser) enterString(kind byte) {
	p.state = stateString
	p.strKind = kind
	p.strEsc = false
	p.str = p.str[:0]
}

// processString consumes OSC, DCS, PM and APC payloads up to BEL or ST.
func (p *Parser) processString(b byte) {
	if p.strEsc {
		p.strEsc = false
		if b == '\\' {
			p.finishString()
			p.state = stateGround
			return
		}
		// ESC followed by anything else starts a new sequence.
		p.finishString()
		p.enterEscape()
		p.processEscape(b)
		return
	}

	switch b {
	case 0x07:
		p.finishString()
		p.state = stateGround
	case 0x1B:
		p.strEsc = true
	case 0x18, 0x1A: // CAN, SUB
		p.state = stateGround
	default:
		if p.strKind == ']' && len(p.str) < maxStringLen {
			p.str = append(p.str, b)
		}
	}
}

func (p *Parser) finishString() {
	if p.strKind == ']' {
		p.handleOSC()
	}
	p.str = p.str[:0]
}

func (p *Parser) handleTab() {
	x, y := p.screen.CursorPos()
	nextTab := ((x / 8) + 1) * 8
	if nextTab >= p.screen.Width() {
		nextTab = p.screen.Width() - 1
	}
	p.screen.MoveCursor(nextTab, y)
}

func (p *Parser) handleCSI(final byte) {
	private := len(p.inter) > 0 && p.inter[0] == '?'
	if len(p.inter) > 0 && !private {
		// Secondary DA, DECSCUSR and similar are consumed.
		return
	}

	switch final {
	case 'A': // CUU
		p.screen.MoveCursorRelative(0, -p.param(0, 1))
	case 'B', 'e': // CUD, VPR
		p.screen.MoveCursorRelative(0, p.param(0, 1))
	case 'C', 'a': // CUF, HPR
		p.screen.MoveCursorRelative(p.param(0, 1), 0)
	case 'D': // CUB
		p.screen.MoveCursorRelative(-p.param(0, 1), 0)
	case 'E': // CNL
		_, y := p.screen.CursorPos()
		p.screen.MoveCursor(0, y+p.param(0, 1))
	case 'F': // CPL
		_, y := p.screen.CursorPos()
		p.screen.MoveCursor(0, y-p.param(0, 1))
	case 'G', '`': // CHA, HPA
		_, y := p.screen.CursorPos()
		p.screen.MoveCursor(p.param(0, 1)-1, y)
	case 'H', 'f': // CUP, HVP
		p.screen.MoveCursor(p.param(1, 1)-1, p.param(0, 1)-1)
	case 'd': // VPA
		x, _ := p.screen.CursorPos()
		p.screen.MoveCursor(x, p.param(0, 1)-1)

	case 'J': // ED
		switch p.param(0, 0) {
		case 0:
			p.screen.ClearScreenBelow()
		case 1:
			p.screen.ClearScreenAbove()
		case 2:
			p.screen.ClearScreen()
		case 3:
			p.screen.ClearScreen()
			p.screen.ClearHistory()
		}
	case 'K': // EL
		switch p.param(0, 0) {
		case 0:
			p.screen.ClearLineRight()
		case 1:
			p.screen.ClearLineLeft()
		case 2:
			p.screen.ClearLine()
		}

	case 'L': // IL
		p.screen.InsertLines(p.param(0, 1))
	case 'M': // DL
		p.screen.DeleteLines(p.param(0, 1))
	case 'P': // DCH
		p.screen.DeleteChars(p.param(0, 1))
	case '@': // ICH
		p.screen.InsertChars(p.param(0, 1))
	case 'X': // ECH
		p.screen.EraseChars(p.param(0, 1))
	case 'S': // SU
		p.screen.ScrollUp(p.param(0, 1))
	case 'T': // SD
		p.screen.ScrollDown(p.param(0, 1))

	case 'h': // SM
		if private {
			p.handlePrivateMode(true)
		}
	case 'l': // RM
		if private {
			p.handlePrivateMode(false)
		}
	case 'm': // SGR
		if !private {
			p.handleSGR()
		}
	case 'r': // DECSTBM
		if !private {
			p.screen.SetScrollRegion(p.param(0, 1)-1, p.param(1, p.screen.Height())-1)
		}
	case 's': // SCP
		p.screen.SaveCursor()
	case 'u': // RCP
		p.screen.RestoreCursor()
	}
}

func (p *Parser) handlePrivateMode(set bool) {
	for _, mode := range p.params {
		switch mode {
		case 7: // DECAWM
			p.screen.SetAutoWrap(set)
		case 25: // DECTCEM
			p.screen.SetCursorVisible(set)
		}
	}
}

func (p *Parser) handleSGR() {
	if len(p.params) == 0 {
		p.screen.ResetAttributes()
		return
	}

	for i := 0; i < len(p.params); i++ {
		param := p.params[i]
		switch {
		case param == 0:
			p.screen.ResetAttributes()
		case param == 1:
			p.screen.AddAttribute(AttrBold)
		case param == 2:
			p.screen.AddAttribute(AttrDim)
		case param == 3:
			p.screen.AddAttribute(AttrItalic)
		case param == 4, param == 21:
			p.screen.AddAttribute(AttrUnderline)
		case param == 5:
			p.screen.AddAttribute(AttrBlink)
		case param == 7:
			p.screen.AddAttribute(AttrReverse)
		case param == 8:
			p.screen.AddAttribute(AttrHidden)
		case param == 9:
			p.screen.AddAttribute(AttrStrike)
		case param == 22:
			p.screen.RemoveAttribute(AttrBold | AttrDim)
		case param == 23:
			p.screen.RemoveAttribute(AttrItalic)
		case param == 24:
			p.screen.RemoveAttribute(AttrUnderline)
		case param == 25:
			p.screen.RemoveAttribute(AttrBlink)
		case param == 27:
			p.screen.RemoveAttribute(AttrReverse)
		case param == 28:
			p.screen.RemoveAttribute(AttrHidden)
		case param == 29:
			p.screen.RemoveAttribute(AttrStrike)
		case param >= 30 && param <= 37:
			p.screen.SetForeground(ColorFromIndex(param - 30))
		case param == 38:
			i = p.parseExtendedColor(i, true)
		case param == 39:
			p.screen.SetForeground(DefaultForeground)
		case param >= 40 && param <= 47:
			p.screen.SetBackground(ColorFromIndex(param - 40))
		case param == 48:
			i = p.parseExtendedColor(i, false)
		case param == 49:
			p.screen.SetBackground(DefaultBackground)
		case param >= 90 && param <= 97:
			p.screen.SetForeground(ColorFromIndex(param - 90 + 8))
		case param >= 100 && param <= 107:
			p.screen.SetBackground(ColorFromIndex(param - 100 + 8))
		}
	}
}

func (p *Parser) parseExtendedColor(i int, foreground bool) int {
	if i+1 >= len(p.params) {
		return i
	}

	var color Color
	switch p.params[i+1] {
	case 5:
		if i+2 >= len(p.params) {
			return len(p.params)
		}
		color = ColorFromIndex(int(clampColorValue(p.params[i+2])))
		i += 2
	case 2:
		if i+4 >= len(p.params) {
			return len(p.params)
		}
		color = ColorFromRGB(
			clampColorValue(p.params[i+2]),
			clampColorValue(p.params[i+3]),
			clampColorValue(p.params[i+4]),
		)
		i += 4
	default:
		return i + 1
	}

	if foreground {
		p.screen.SetForeground(color)
	} else {
		p.screen.SetBackground(color)
	}
	return i
}

func clampColorValue(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func (p *Parser) handleOSC() {
	cmd, value, _ := strings.Cut(string(p.str), ";")
	switch cmd {
	case "0", "2":
		if p.onTitle != nil {
			p.onTitle(value)
		}
	}
}

func (p *Parser) param(index, defaultValue int) int {
	if index < len(p.params) && p.params[index] > 0 {
		return p.params[index]
	}
	return defaultValue
}

func formatParams(params []int) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, v := range params {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ";")
}
