package terminal

import (
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
)

// State represents the lifecycle state of a PTY child.
type State int

const (
	// StateRunning indicates the child has not been reaped.
	StateRunning State = iota
	// StateExited indicates the child exited on its own.
	StateExited
	// StateKilled indicates the child was ended by a signal.
	StateKilled
	// StateClosed indicates Terminate has released every resource.
	StateClosed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the child is no longer running.
func (s State) IsTerminal() bool {
	return s != StateRunning
}

const (
	// DefaultRows is the row count used when none is given.
	DefaultRows = 24
	// DefaultCols is the column count used when none is given.
	DefaultCols = 80

	readChunkSize   = 32 * 1024
	maxReadsPerCall = 256
)

// shellMeta lists characters that need a shell to interpret.
const shellMeta = "|&;<>()$`*?~{}\n"

// SpawnOptions configures Spawn.
type SpawnOptions struct {
	// Command is the command line to run.
	Command string

	// Rows and Cols are the initial window size.
	Rows int
	Cols int

	// Shell runs commands that contain shell metacharacters
	// (defaults to $SHELL, then /bin/sh).
	Shell string

	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string

	// Dir is the working directory for the child.
	Dir string
}

// Process is a child program attached to a pseudo-terminal.
//
// A Process is owned by a single goroutine; its methods are not safe
// for concurrent use.
type Process struct {
	id      string
	command string
	argv    []string

	cmd    *exec.Cmd
	master *os.File
	fd     int
	pid    int

	rows, cols int

	state    State
	exitCode int
	eof      bool
	closed   bool
}

// ID returns the unique process instance ID.
func (p *Process) ID() string {
	return p.id
}

// PID returns the child's process ID.
func (p *Process) PID() int {
	return p.pid
}

// Command returns the command line the process was spawned with.
func (p *Process) Command() string {
	return p.command
}

// Size returns the last applied window size.
func (p *Process) Size() (rows, cols int) {
	return p.rows, p.cols
}

// State returns the process state as of the last Poll or Terminate.
func (p *Process) State() State {
	return p.state
}

// Running reports whether the child has not yet been reaped.
func (p *Process) Running() bool {
	return p.state == StateRunning
}

// ExitCode returns the exit status, or -1 while running.
// A child ended by signal N reports 128+N.
func (p *Process) ExitCode() int {
	return p.exitCode
}

// BuildArgv turns a command line into an argument vector.
// Commands containing shell metacharacters are wrapped as shell -c.
func BuildArgv(command, shell string) ([]string, error) {
	line := strings.TrimSpace(command)
	if line == "" {
		return nil, ErrEmptyCommand
	}

	if strings.ContainsAny(line, shellMeta) {
		return []string{resolveShell(shell), "-c", line}, nil
	}

	words, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmptyCommand
	}
	return words, nil
}

func resolveShell(shell string) string {
	if shell != "" {
		return shell
	}
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	return "/bin/sh"
}

func childEnv(extra []string) []string {
	env := os.Environ()
	out := make([]string, 0, len(env)+len(extra)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, "TERM=") {
			continue
		}
		out = append(out, kv)
	}
	out = append(out, extra...)
	return append(out, "TERM=xterm-256color")
}

func normalizeSize(rows, cols int) (int, int) {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	if rows > 0xFFFF {
		rows = 0xFFFF
	}
	if cols > 0xFFFF {
		cols = 0xFFFF
	}
	return rows, cols
}
