// Package app runs the split-screen session: it owns both panes, the
// layout and focus, and drives the event loop that feeds keyboard input,
// PTY output and refresh ticks into a redraw.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/dshills/tuisplit/internal/pane"
	"github.com/dshills/tuisplit/internal/renderer/backend"
	"github.com/dshills/tuisplit/internal/renderer/core"
	"github.com/dshills/tuisplit/internal/renderer/layout"
	"github.com/dshills/tuisplit/internal/renderer/statusline"
)

const (
	// DefaultTickInterval is the loop tick, which is also the redraw rate.
	DefaultTickInterval = 50 * time.Millisecond

	eventBufferSize = 64
)

// State is the session lifecycle state.
type State int

const (
	StateRunning State = iota
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting down"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a Session.
type Options struct {
	// Backend draws the screen and delivers input. Required.
	Backend backend.Backend

	FirstCommand  string
	SecondCommand string

	// Shell runs compound commands and is launched by Ctrl+N.
	// Defaults to $SHELL, then /bin/sh.
	Shell string

	Layout          layout.Mode
	RefreshInterval time.Duration
	TickInterval    time.Duration
	Scrollback      int

	Logger *slog.Logger
}

// Session coordinates the two panes. All state is owned by the goroutine
// that calls Run; only the input pump runs concurrently, and it touches
// nothing but the backend and the event channel.
type Session struct {
	opts    Options
	backend backend.Backend
	logger  *slog.Logger

	mode  layout.Mode
	panes [2]*pane.Pane
	rects [2]core.ScreenRect
	focus pane.Slot

	status *statusline.StatusLine

	width, height int

	state   State
	started bool
	ran     bool

	events <-chan backend.Event
	done   chan struct{}
}

// New creates a session. Panes are spawned when Run starts.
func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.Shell == "" {
		opts.Shell = defaultShell()
	}
	return &Session{
		opts:    opts,
		backend: opts.Backend,
		logger:  opts.Logger.With("component", "session"),
		mode:    opts.Layout,
		focus:   pane.SlotFirst,
		status:  statusline.New(),
		state:   StateRunning,
		done:    make(chan struct{}),
	}
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// start initializes the backend and spawns both panes. Any failure is
// fatal and leaves the session stopped.
func (s *Session) start() error {
	if s.backend == nil {
		s.state = StateStopped
		return &InitError{Component: "backend", Err: fmt.Errorf("no backend configured")}
	}
	if err := s.backend.Init(); err != nil {
		s.state = StateStopped
		return &InitError{Component: "backend", Err: err}
	}
	s.started = true
	s.backend.HideCursor()

	s.width, s.height = s.backend.Size()
	s.computeLayout()

	commands := [2]string{s.opts.FirstCommand, s.opts.SecondCommand}
	for i, command := range commands {
		slot := pane.Slot(i)
		rect := s.rects[i]
		p, err := pane.New(pane.Options{
			Slot:            slot,
			Command:         command,
			Kind:            pane.KindRefreshing,
			Rows:            rect.Height(),
			Cols:            rect.Width(),
			Shell:           s.opts.Shell,
			Scrollback:      s.opts.Scrollback,
			RefreshInterval: s.opts.RefreshInterval,
			Logger:          s.opts.Logger,
		})
		if err != nil {
			s.Shutdown()
			return &InitError{Component: slot.String() + " pane", Err: err}
		}
		s.panes[i] = p
	}
	s.panes[s.focus].SetFocused(true)

	s.logger.Info("session started",
		"width", s.width,
		"height", s.height,
		"layout", s.mode.String(),
	)
	return nil
}

// Shutdown terminates both panes and releases the backend. It is safe to
// call more than once.
func (s *Session) Shutdown() {
	if s.state == StateStopped {
		return
	}
	s.state = StateShuttingDown
	close(s.done)

	for _, p := range s.panes {
		if p != nil {
			p.Close()
		}
	}
	if s.started {
		s.backend.Shutdown()
	}

	s.state = StateStopped
	s.logger.Info("session stopped")
}

// computeLayout derives the pane rectangles from the screen size and
// resizes the panes to match. The bottom row is reserved for the status
// bar when there is room.
func (s *Session) computeLayout() {
	rows := s.height
	if rows >= 2 {
		rows--
	}
	first, second := layout.Split(s.mode, rows, s.width)
	s.rects = [2]core.ScreenRect{first, second}

	for i, p := range s.panes {
		if p != nil {
			p.Resize(s.rects[i].Height(), s.rects[i].Width())
		}
	}
}

// setLayout switches the layout mode and resizes the panes.
func (s *Session) setLayout(mode layout.Mode) {
	if mode == s.mode {
		return
	}
	s.mode = mode
	s.computeLayout()
	s.logger.Debug("layout changed", "layout", mode.String())
}

// toggleFocus moves focus to the other pane.
func (s *Session) toggleFocus() {
	s.panes[s.focus].SetFocused(false)
	s.focus = s.focus.Other()
	s.panes[s.focus].SetFocused(true)
}

func (s *Session) focused() *pane.Pane {
	return s.panes[s.focus]
}

// shellCommand returns the command line that starts an interactive shell.
func (s *Session) shellCommand() string {
	return shellquote.Join(s.opts.Shell)
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Panes returns the first and second panes. They are nil before Run.
func (s *Session) Panes() []*pane.Pane {
	return []*pane.Pane{s.panes[0], s.panes[1]}
}

// Layout returns the current layout mode.
func (s *Session) Layout() layout.Mode {
	return s.mode
}

// Focus returns the focused slot.
func (s *Session) Focus() pane.Slot {
	return s.focus
}

// Rects returns the last computed pane rectangles.
func (s *Session) Rects() (first, second core.ScreenRect) {
	return s.rects[0], s.rects[1]
}
