// Package pane pairs a PTY process with a terminal emulator and tracks the
// per-pane state the session needs: slot, command kind, scroll offset,
// focus and status.
//
// A Pane is owned by the session goroutine and is not safe for
// concurrent use.
package pane

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/dshills/tuisplit/internal/integration/terminal"
)

const (
	// DefaultRefreshInterval is how often refreshing commands rerun.
	DefaultRefreshInterval = 2 * time.Second

	noticeTTL     = 2 * time.Second
	maxDrainReads = 4
)

// Options configures a new Pane.
type Options struct {
	Slot    Slot
	Command string
	Kind    Kind

	// Rows and Cols are the initial pane size.
	Rows int
	Cols int

	// Shell runs commands that need shell interpretation.
	Shell string

	// Scrollback is the history capacity in rows.
	Scrollback int

	// RefreshInterval applies to KindRefreshing panes. Zero disables refresh.
	RefreshInterval time.Duration

	Logger *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Pane is one half of the split screen.
type Pane struct {
	slot     Slot
	command  string
	kind     Kind
	shell    string
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	proc *terminal.Process
	emu  *terminal.Emulator

	rows, cols int
	offset     int
	focused    bool

	lastSpawn    time.Time
	pendingReset bool
	exited       bool
	exitCode     int

	spawnErr error

	notice      string
	noticeUntil time.Time

	closed bool
}

// New creates a pane and spawns its initial command. The spawn error is
// returned as is so callers can treat startup failures as fatal.
func New(opts Options) (*Pane, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	rows, cols := max(opts.Rows, 1), max(opts.Cols, 1)

	p := &Pane{
		slot:     opts.Slot,
		command:  opts.Command,
		kind:     opts.Kind,
		shell:    opts.Shell,
		interval: opts.RefreshInterval,
		logger:   opts.Logger.With("component", "pane", "slot", opts.Slot.String()),
		now:      opts.Now,
		emu:      terminal.NewEmulator(rows, cols, opts.Scrollback),
		rows:     rows,
		cols:     cols,
	}
	p.emu.SetAnomalyHook(func(seq string) {
		p.logger.Debug("dropped malformed sequence", "seq", seq)
	})

	proc, err := p.spawn(opts.Command)
	if err != nil {
		return nil, err
	}
	p.proc = proc
	p.lastSpawn = p.now()
	return p, nil
}

func (p *Pane) spawn(command string) (*terminal.Process, error) {
	proc, err := terminal.Spawn(terminal.SpawnOptions{
		Command: command,
		Rows:    p.rows,
		Cols:    p.cols,
		Shell:   p.shell,
	})
	if err != nil {
		p.logger.Warn("spawn failed", "command", command, "error", err)
		return nil, err
	}
	p.logger.Info("spawned",
		"command", command,
		"kind", p.kind.String(),
		"pid", proc.PID(),
		"process_id", proc.ID(),
	)
	return proc, nil
}

// SetCommand replaces the running command. On failure the pane keeps its
// last grid, enters the errored phase and returns the spawn error.
func (p *Pane) SetCommand(command string, kind Kind) error {
	if p.closed {
		return ErrClosed
	}
	p.stop()
	p.command = command
	p.kind = kind

	proc, err := p.spawn(command)
	if err != nil {
		p.spawnErr = err
		return err
	}

	p.proc = proc
	p.spawnErr = nil
	p.lastSpawn = p.now()
	p.exited = false
	p.exitCode = 0
	p.pendingReset = false
	p.notice = ""
	p.emu.Reset()
	p.offset = 0
	return nil
}

// RefreshNow reruns a refreshing command immediately, or retries an errored
// one. It is a no-op for interactive panes that are healthy.
func (p *Pane) RefreshNow() error {
	if p.closed {
		return ErrClosed
	}
	if p.spawnErr != nil {
		return p.SetCommand(p.command, p.kind)
	}
	if p.kind != KindRefreshing {
		return nil
	}
	p.respawn(p.now())
	return p.spawnErr
}

// stop terminates the current process, if any.
func (p *Pane) stop() {
	if p.proc == nil {
		return
	}
	if err := p.proc.Terminate(); err != nil {
		p.logger.Debug("terminate", "pid", p.proc.PID(), "error", err)
	}
	if !p.exited {
		p.markExited()
	}
	p.proc = nil
}

// respawn replaces the process with a fresh run of the same command. The
// grid is reset only once the new run produces output or ends.
func (p *Pane) respawn(now time.Time) {
	p.stop()

	proc, err := p.spawn(p.command)
	if err != nil {
		p.spawnErr = err
		return
	}
	p.proc = proc
	p.lastSpawn = now
	p.exited = false
	p.exitCode = 0
	p.pendingReset = true
	p.offset = 0
}

// TickRefresh expires notices and reruns a refreshing command whose
// interval has elapsed and whose previous run has finished. It reports
// whether anything visible changed.
func (p *Pane) TickRefresh(now time.Time) bool {
	changed := false
	if p.notice != "" && !now.Before(p.noticeUntil) {
		p.notice = ""
		changed = true
	}

	if p.closed || p.kind != KindRefreshing || p.interval <= 0 || p.spawnErr != nil || p.proc == nil {
		return changed
	}
	if now.Sub(p.lastSpawn) < p.interval || !p.finished() {
		return changed
	}

	p.respawn(now)
	return true
}

// finished reports whether the current run is over, draining any output it
// left in the PTY first.
func (p *Pane) finished() bool {
	if p.exited {
		return true
	}
	if p.proc.Poll() == terminal.StateRunning {
		return false
	}
	p.Drain()
	p.markExited()
	return true
}

// Drain feeds all immediately available output to the emulator and reaps
// the process at end of output. It reports whether anything visible changed.
func (p *Pane) Drain() bool {
	if p.closed || p.proc == nil {
		return false
	}

	changed := false
	for i := 0; i < maxDrainReads; i++ {
		b, err := p.proc.ReadNonblocking()
		if len(b) > 0 {
			p.feed(b)
			changed = true
		}
		if errors.Is(err, io.EOF) {
			return p.reap() || changed
		}
		if err != nil {
			p.logger.Debug("read", "pid", p.proc.PID(), "error", err)
			break
		}
		if len(b) == 0 {
			break
		}
	}
	return changed
}

func (p *Pane) feed(b []byte) {
	if p.pendingReset {
		p.emu.Reset()
		p.pendingReset = false
	}

	before := p.emu.HistoryAdded()
	p.emu.Feed(b)
	if p.offset > 0 {
		// Hold the viewed rows in place while new output scrolls in.
		p.offset += p.emu.HistoryAdded() - before
	}
	p.offset = p.emu.ClampOffset(p.offset)
}

func (p *Pane) reap() bool {
	if p.exited || p.proc.Poll() == terminal.StateRunning {
		return false
	}
	p.markExited()
	return true
}

func (p *Pane) markExited() {
	if p.exited {
		return
	}
	p.exited = true
	p.exitCode = p.proc.ExitCode()
	if p.pendingReset {
		p.emu.Reset()
		p.pendingReset = false
	}
	p.logger.Info("process exited",
		"command", p.command,
		"pid", p.proc.PID(),
		"exit_code", p.exitCode,
	)
}

// Resize resizes the emulator and then the PTY. PTY resize failures are
// logged and otherwise ignored.
func (p *Pane) Resize(rows, cols int) {
	rows, cols = max(rows, 1), max(cols, 1)
	if rows == p.rows && cols == p.cols {
		return
	}
	p.rows, p.cols = rows, cols
	before := p.emu.HistoryAdded()
	p.emu.Resize(rows, cols)
	if p.offset > 0 {
		p.offset += p.emu.HistoryAdded() - before
	}
	p.offset = p.emu.ClampOffset(p.offset)

	if p.proc == nil {
		return
	}
	if err := p.proc.Resize(rows, cols); err != nil {
		p.logger.Debug("resize", "rows", rows, "cols", cols, "error", err)
	}
}

// Write forwards input to the process. A failed write leaves a transient
// notice on the pane.
func (p *Pane) Write(b []byte) error {
	if p.closed {
		return ErrClosed
	}
	if p.proc == nil {
		p.setNotice("input dropped")
		return ErrNoProcess
	}
	if err := p.proc.Write(b); err != nil {
		p.setNotice("input dropped")
		p.logger.Debug("write", "pid", p.proc.PID(), "error", err)
		return err
	}
	return nil
}

func (p *Pane) setNotice(msg string) {
	p.notice = msg
	p.noticeUntil = p.now().Add(noticeTTL)
}

// Close terminates the process. It is safe to call more than once.
func (p *Pane) Close() {
	if p.closed {
		return
	}
	p.stop()
	p.closed = true
	p.logger.Debug("closed")
}

// Scroll moves the view delta rows back into history (negative moves
// toward the live screen) and returns the new offset.
func (p *Pane) Scroll(delta int) int {
	p.offset = p.emu.ClampOffset(p.offset + delta)
	return p.offset
}

// ScrollToBottom returns the view to the live screen.
func (p *Pane) ScrollToBottom() {
	p.offset = 0
}

// Snapshot returns the grid at the current scroll offset.
func (p *Pane) Snapshot() terminal.Grid {
	return p.emu.Snapshot(p.offset)
}

// Status returns the pane's current status.
func (p *Pane) Status() Status {
	s := Status{
		Kind:         p.kind,
		Command:      p.command,
		ExitCode:     p.exitCode,
		Err:          p.spawnErr,
		Notice:       p.notice,
		ScrollOffset: p.offset,
	}
	if p.proc != nil {
		s.PID = p.proc.PID()
	}

	switch {
	case p.closed:
		s.Phase = PhaseClosed
	case p.spawnErr != nil:
		s.Phase = PhaseErrored
	case p.exited:
		s.Phase = PhaseExited
	default:
		s.Phase = PhaseRunning
	}
	return s
}

// Title returns the title set by the program, falling back to the command.
func (p *Pane) Title() string {
	if t := p.emu.Title(); t != "" {
		return t
	}
	return p.command
}

func (p *Pane) Slot() Slot { return p.slot }
func (p *Pane) Kind() Kind { return p.kind }
func (p *Pane) Command() string { return p.command }
func (p *Pane) ScrollOffset() int { return p.offset }
func (p *Pane) Focused() bool { return p.focused }
func (p *Pane) SetFocused(f bool) { p.focused = f }
func (p *Pane) Size() (rows, cols int) { return p.rows, p.cols }

// HistoryLen returns the number of scrollback rows available.
func (p *Pane) HistoryLen() int {
	return p.emu.HistoryLen()
}
