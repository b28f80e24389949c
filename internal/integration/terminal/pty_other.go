//go:build !linux && !darwin

package terminal

// Spawn is not supported on this platform.
func Spawn(opts SpawnOptions) (*Process, error) {
	return nil, &SpawnError{Command: opts.Command, Err: ErrPTYNotSupported}
}

// ReadNonblocking is not supported on this platform.
func (p *Process) ReadNonblocking() ([]byte, error) {
	return nil, ErrPTYNotSupported
}

// Write is not supported on this platform.
func (p *Process) Write(b []byte) error {
	return &WriteError{ID: p.id, Err: ErrPTYNotSupported}
}

// Resize is not supported on this platform.
func (p *Process) Resize(rows, cols int) error {
	return &ResizeError{ID: p.id, Rows: rows, Cols: cols, Err: ErrPTYNotSupported}
}

// Poll is not supported on this platform.
func (p *Process) Poll() State {
	return p.state
}

// Terminate is not supported on this platform.
func (p *Process) Terminate() error {
	p.closed = true
	p.state = StateClosed
	return nil
}
