package pane

import "fmt"

// Phase is the lifecycle phase of a pane's current command.
type Phase int

const (
	PhaseRunning Phase = iota
	PhaseExited
	PhaseErrored
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseExited:
		return "exited"
	case PhaseErrored:
		return "errored"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Status summarizes a pane for the status bar and inline status line.
type Status struct {
	Phase   Phase
	Kind    Kind
	Command string
	PID     int

	// ExitCode is valid in PhaseExited. Signal deaths report 128+signal.
	ExitCode int

	// Err is the spawn failure in PhaseErrored.
	Err error

	// Notice is a transient message such as "input dropped".
	Notice string

	ScrollOffset int
}

// Inline returns the text shown on the pane's last row, or "" when the
// pane needs no inline status.
//
// A refreshing command that exits cleanly is the normal case and shows
// nothing; a non-zero exit is reported.
func (s Status) Inline() string {
	switch {
	case s.Phase == PhaseErrored:
		return fmt.Sprintf(" failed: %s: %v ", s.Command, s.Err)
	case s.Notice != "":
		return " " + s.Notice + " "
	case s.Phase == PhaseExited && (s.Kind == KindInteractive || s.ExitCode != 0):
		return fmt.Sprintf(" exited with status %d ", s.ExitCode)
	case s.Phase == PhaseClosed:
		return " closed "
	default:
		return ""
	}
}

// Short returns a compact label for the status bar.
func (s Status) Short() string {
	switch s.Phase {
	case PhaseRunning:
		return "run"
	case PhaseExited:
		if s.ExitCode != 0 {
			return fmt.Sprintf("exit %d", s.ExitCode)
		}
		return "done"
	case PhaseErrored:
		return "error"
	case PhaseClosed:
		return "closed"
	default:
		return "?"
	}
}
