package pane

import "errors"

var (
	// ErrClosed is returned when operating on a closed pane.
	ErrClosed = errors.New("pane is closed")

	// ErrNoProcess is returned when the pane has no live process, usually
	// after a failed spawn.
	ErrNoProcess = errors.New("pane has no process")
)
