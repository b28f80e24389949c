package app

import (
	"unicode/utf8"

	"github.com/dshills/tuisplit/internal/pane"
	"github.com/dshills/tuisplit/internal/renderer/backend"
	"github.com/dshills/tuisplit/internal/renderer/layout"
)

// HandleEvent applies one backend event. It returns ErrQuit when the
// session should stop.
func (s *Session) HandleEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventKey:
		return s.handleKey(ev)

	case backend.EventResize:
		s.handleResize(ev.Width, ev.Height)

	case backend.EventClosed:
		return ErrQuit

	case backend.EventInterrupt, backend.EventNone:
		// Wakes the loop for a redraw.
	}
	return nil
}

func (s *Session) handleResize(width, height int) {
	if width <= 0 || height <= 0 {
		width, height = s.backend.Size()
	}
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.computeLayout()
	s.backend.Clear()
	s.logger.Debug("resized", "width", width, "height", height)
}

func (s *Session) handleKey(ev backend.Event) error {
	if ev.Key == backend.KeyRune && !hasCommandMod(ev.Mod) {
		if handled, err := s.handleRune(ev.Rune); handled {
			return err
		}
	}

	p := s.focused()
	switch ev.Key {
	case backend.KeyTab:
		s.toggleFocus()
		return nil

	case backend.KeyUp:
		p.Scroll(1)
		return nil

	case backend.KeyDown:
		p.Scroll(-1)
		return nil

	case backend.KeyPageUp:
		p.Scroll(s.pageSize(p))
		return nil

	case backend.KeyPageDown:
		p.Scroll(-s.pageSize(p))
		return nil

	case backend.KeyEnd:
		if p.ScrollOffset() > 0 {
			p.ScrollToBottom()
			return nil
		}

	case backend.KeyCtrlN:
		s.replaceCommand(p, s.shellCommand(), pane.KindInteractive)
		return nil

	case backend.KeyF5:
		if err := p.RefreshNow(); err != nil {
			s.logger.Warn("refresh failed", "slot", p.Slot().String(), "error", err)
		}
		return nil
	}

	s.forward(p, ev)
	return nil
}

// handleRune handles the single-character shortcuts.
func (s *Session) handleRune(r rune) (bool, error) {
	switch r {
	case 'q':
		s.logger.Info("quit requested")
		return true, ErrQuit

	case 'v':
		s.setLayout(layout.Vertical)
		return true, nil

	case 'h':
		s.setLayout(layout.Horizontal)
		return true, nil

	case '1', '2', '3', '4':
		d := Diagnostic(r - '0')
		if command, ok := DiagnosticCommand(d); ok {
			s.replaceCommand(s.focused(), command, pane.KindRefreshing)
		}
		return true, nil
	}
	return false, nil
}

// replaceCommand swaps the pane's command. A failure is reported inline on
// the pane and never stops the session.
func (s *Session) replaceCommand(p *pane.Pane, command string, kind pane.Kind) {
	if err := p.SetCommand(command, kind); err != nil {
		s.logger.Warn("command failed",
			"slot", p.Slot().String(),
			"command", command,
			"error", err,
		)
		return
	}
	s.logger.Info("command replaced",
		"slot", p.Slot().String(),
		"command", command,
		"kind", kind.String(),
	)
}

// forward writes the key to an interactive pane. Refreshing panes take no
// input.
func (s *Session) forward(p *pane.Pane, ev backend.Event) {
	if p.Kind() != pane.KindInteractive {
		return
	}
	b := encodeKey(ev)
	if len(b) == 0 {
		return
	}
	if p.ScrollOffset() > 0 {
		p.ScrollToBottom()
	}
	if err := p.Write(b); err != nil {
		s.logger.Debug("input dropped", "slot", p.Slot().String(), "error", err)
	}
}

func (s *Session) pageSize(p *pane.Pane) int {
	rows, _ := p.Size()
	return max(rows-1, 1)
}

func hasCommandMod(m backend.ModMask) bool {
	return m.Has(backend.ModCtrl) || m.Has(backend.ModAlt) || m.Has(backend.ModMeta)
}

var keySequences = map[backend.Key]string{
	backend.KeyEnter:     "\r",
	backend.KeyTab:       "\t",
	backend.KeyBacktab:   "\x1b[Z",
	backend.KeyBackspace: "\x7f",
	backend.KeyEscape:    "\x1b",
	backend.KeyUp:        "\x1b[A",
	backend.KeyDown:      "\x1b[B",
	backend.KeyRight:     "\x1b[C",
	backend.KeyLeft:      "\x1b[D",
	backend.KeyHome:      "\x1b[H",
	backend.KeyEnd:       "\x1b[F",
	backend.KeyInsert:    "\x1b[2~",
	backend.KeyDelete:    "\x1b[3~",
	backend.KeyPageUp:    "\x1b[5~",
	backend.KeyPageDown:  "\x1b[6~",
	backend.KeyF1:        "\x1bOP",
	backend.KeyF2:        "\x1bOQ",
	backend.KeyF3:        "\x1bOR",
	backend.KeyF4:        "\x1bOS",
	backend.KeyF5:        "\x1b[15~",
	backend.KeyF6:        "\x1b[17~",
	backend.KeyF7:        "\x1b[18~",
	backend.KeyF8:        "\x1b[19~",
	backend.KeyF9:        "\x1b[20~",
	backend.KeyF10:       "\x1b[21~",
	backend.KeyF11:       "\x1b[23~",
	backend.KeyF12:       "\x1b[24~",
	backend.KeyCtrlSpace: "\x00",
}

// encodeKey returns the bytes a terminal sends for ev, or nil when the key
// has no encoding.
func encodeKey(ev backend.Event) []byte {
	var b []byte
	switch {
	case ev.Key == backend.KeyRune:
		if ev.Rune == 0 || !utf8.ValidRune(ev.Rune) {
			return nil
		}
		b = utf8.AppendRune(nil, ev.Rune)

	case ev.Key >= backend.KeyCtrlA && ev.Key <= backend.KeyCtrlZ:
		b = []byte{byte(ev.Key-backend.KeyCtrlA) + 1}

	default:
		seq, ok := keySequences[ev.Key]
		if !ok {
			return nil
		}
		b = []byte(seq)
	}

	if ev.Mod.Has(backend.ModAlt) {
		b = append([]byte{0x1b}, b...)
	}
	return b
}
