//go:build linux || darwin

package terminal

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

const (
	terminateGrace = 250 * time.Millisecond
	terminatePoll  = 5 * time.Millisecond
	writeRetries   = 20
	writeBackoff   = time.Millisecond
)

// Spawn starts opts.Command attached to a new pseudo-terminal.
// Every failure is a *SpawnError and leaves nothing allocated.
func Spawn(opts SpawnOptions) (*Process, error) {
	fail := func(err error) (*Process, error) {
		return nil, &SpawnError{Command: opts.Command, Err: err}
	}

	argv, err := BuildArgv(opts.Command, opts.Shell)
	if err != nil {
		return fail(err)
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fail(fmt.Errorf("%w: %s", ErrCommandNotFound, argv[0]))
		}
		return fail(err)
	}

	rows, cols := normalizeSize(opts.Rows, opts.Cols)

	cmd := exec.Command(path, argv[1:]...)
	cmd.Args[0] = argv[0]
	cmd.Env = childEnv(opts.Env)
	cmd.Dir = opts.Dir

	// StartWithSize gives the child its own session with the PTY as the
	// controlling terminal and closes the slave in this process.
	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return fail(fmt.Errorf("start pty: %w", err))
	}

	// Fd switches the file to blocking mode, so it is taken once, before
	// the descriptor is made non-blocking, and never again.
	fd := int(master.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		_, _ = cmd.Process.Wait()
		_ = master.Close()
		return fail(fmt.Errorf("set nonblock: %w", err))
	}

	return &Process{
		id:       uuid.NewString(),
		command:  opts.Command,
		argv:     argv,
		cmd:      cmd,
		master:   master,
		fd:       fd,
		pid:      cmd.Process.Pid,
		rows:     rows,
		cols:     cols,
		state:    StateRunning,
		exitCode: -1,
	}, nil
}

// ReadNonblocking returns whatever output is immediately available.
// It returns an empty slice when there is none and io.EOF once the child
// has closed its side and all output has been delivered.
func (p *Process) ReadNonblocking() ([]byte, error) {
	if p.eof {
		return nil, io.EOF
	}
	if p.closed {
		return nil, ErrProcessClosed
	}

	var (
		out []byte
		buf [readChunkSize]byte
	)
	for i := 0; i < maxReadsPerCall; i++ {
		n, err := unix.Read(p.fd, buf[:])
		if n > 0 {
			out = append(out, buf[:n]...)
		}

		switch {
		case err == nil && n == 0:
			p.eof = true
		case err == nil:
			continue
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK):
			return out, nil
		case errors.Is(err, unix.EIO):
			// Linux reports a hung-up slave as EIO.
			p.eof = true
		default:
			p.eof = true
			if len(out) > 0 {
				return out, nil
			}
			return nil, fmt.Errorf("read pty: %w", err)
		}
		break
	}

	if p.eof && len(out) == 0 {
		return nil, io.EOF
	}
	return out, nil
}

// Write forwards b to the child, retrying briefly while the PTY is full.
func (p *Process) Write(b []byte) error {
	if p.closed {
		return &WriteError{ID: p.id, Err: ErrProcessClosed}
	}
	if p.eof || p.Poll() != StateRunning {
		return &WriteError{ID: p.id, Err: ErrProcessExited}
	}

	retries := 0
	for len(b) > 0 {
		n, err := unix.Write(p.fd, b)
		if n > 0 {
			b = b[n:]
		}
		switch {
		case err == nil, errors.Is(err, unix.EINTR):
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK):
			retries++
			if retries > writeRetries {
				return &WriteError{ID: p.id, Err: err}
			}
			time.Sleep(writeBackoff)
		default:
			return &WriteError{ID: p.id, Err: err}
		}
	}
	return nil
}

// Resize applies a new window size; the kernel signals SIGWINCH to the child.
// An unchanged size is a no-op.
func (p *Process) Resize(rows, cols int) error {
	if rows < 1 || cols < 1 || rows > 0xFFFF || cols > 0xFFFF {
		return &ResizeError{ID: p.id, Rows: rows, Cols: cols, Err: ErrInvalidSize}
	}
	if rows == p.rows && cols == p.cols {
		return nil
	}
	if p.closed {
		return &ResizeError{ID: p.id, Rows: rows, Cols: cols, Err: ErrProcessClosed}
	}

	ws := &unix.Winsize{Row: uint16(rows), Col: uint16(cols)}
	if err := unix.IoctlSetWinsize(p.fd, unix.TIOCSWINSZ, ws); err != nil {
		return &ResizeError{ID: p.id, Rows: rows, Cols: cols, Err: err}
	}
	p.rows, p.cols = rows, cols
	return nil
}

// Poll reaps the child if it has exited, without blocking.
func (p *Process) Poll() State {
	if p.state != StateRunning {
		return p.state
	}
	p.wait(unix.WNOHANG)
	return p.state
}

// Terminate ends the child and releases the PTY. It is safe to call
// more than once.
func (p *Process) Terminate() error {
	if p.closed {
		return nil
	}
	defer p.release()

	if p.Poll() != StateRunning {
		return nil
	}

	p.signal(unix.SIGHUP)
	p.signal(unix.SIGTERM)

	deadline := time.Now().Add(terminateGrace)
	for time.Now().Before(deadline) {
		if p.Poll() != StateRunning {
			return nil
		}
		time.Sleep(terminatePoll)
	}

	p.signal(unix.SIGKILL)
	return p.wait(0)
}

// signal delivers sig to the child's process group, falling back to the
// child alone.
func (p *Process) signal(sig unix.Signal) {
	if err := unix.Kill(-p.pid, sig); err != nil {
		_ = unix.Kill(p.pid, sig)
	}
}

func (p *Process) wait(options int) error {
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(p.pid, &ws, options, nil)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ECHILD):
			// Reaped elsewhere; the status is gone.
			p.state = StateExited
			return nil
		case err != nil:
			return fmt.Errorf("wait %d: %w", p.pid, err)
		case pid == p.pid:
			p.recordExit(ws)
		}
		return nil
	}
}

func (p *Process) recordExit(ws unix.WaitStatus) {
	switch {
	case ws.Signaled():
		p.state = StateKilled
		p.exitCode = 128 + int(ws.Signal())
	case ws.Exited():
		p.state = StateExited
		p.exitCode = ws.ExitStatus()
	}
}

func (p *Process) release() {
	_ = p.master.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Release()
	}
	p.closed = true
	p.state = StateClosed
}
