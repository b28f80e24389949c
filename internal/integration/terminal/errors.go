package terminal

import (
	"errors"
	"fmt"
)

// Sentinel errors for the terminal package.
var (
	// ErrProcessClosed is returned when operations are attempted on a terminated process.
	ErrProcessClosed = errors.New("process is closed")

	// ErrProcessExited is returned when writing to a child that has already exited.
	ErrProcessExited = errors.New("process has exited")

	// ErrInvalidSize is returned when terminal size is invalid.
	ErrInvalidSize = errors.New("invalid terminal size")

	// ErrPTYNotSupported is returned when PTY is not supported on this platform.
	ErrPTYNotSupported = errors.New("PTY not supported on this platform")

	// ErrCommandNotFound is returned when the executable cannot be located.
	ErrCommandNotFound = errors.New("command not found")

	// ErrEmptyCommand is returned when the command string has no words.
	ErrEmptyCommand = errors.New("empty command")
)

// SpawnError reports a failure to launch a command on a new PTY.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// WriteError reports input that could not be delivered to the child.
type WriteError struct {
	ID  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write to process %s: %v", e.ID, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ResizeError reports a window-size change that could not be applied.
type ResizeError struct {
	ID         string
	Rows, Cols int
	Err        error
}

func (e *ResizeError) Error() string {
	return fmt.Sprintf("resize process %s to %dx%d: %v", e.ID, e.Cols, e.Rows, e.Err)
}

func (e *ResizeError) Unwrap() error {
	return e.Err
}
