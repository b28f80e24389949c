package app

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/tuisplit/internal/renderer/backend"
)

// Run starts the panes and runs the event loop until q is pressed, the
// backend closes, or ctx is cancelled. Every pane process is terminated
// before Run returns. A normal exit returns nil; startup failures return
// an *InitError.
func (s *Session) Run(ctx context.Context) error {
	if s.ran {
		return ErrAlreadyRunning
	}
	if s.state != StateRunning {
		return ErrStopped
	}
	s.ran = true

	if err := s.start(); err != nil {
		return err
	}
	defer s.Shutdown()

	s.events = s.startInputPump()
	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	if err := s.Step(time.Now()); err != nil {
		return quitErr(err)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("context done", "reason", ctx.Err())
			return nil

		case ev, ok := <-s.events:
			if !ok {
				s.logger.Info("backend closed")
				return nil
			}
			if err := s.HandleEvent(ev); err != nil {
				return quitErr(err)
			}

		case <-ticker.C:
		}

		if err := s.Step(time.Now()); err != nil {
			return quitErr(err)
		}
	}
}

// quitErr maps ErrQuit to a clean exit.
func quitErr(err error) error {
	if errors.Is(err, ErrQuit) {
		return nil
	}
	return err
}

// Step runs one loop pass: queued input, pane output, refresh timers and
// a redraw. It returns ErrQuit when a quit key was handled.
func (s *Session) Step(now time.Time) error {
	if s.state != StateRunning {
		return ErrQuit
	}

	if err := s.drainEvents(); err != nil {
		return err
	}

	for _, p := range s.panes {
		p.Drain()
	}
	for _, p := range s.panes {
		p.TickRefresh(now)
	}

	s.redraw()
	return nil
}

// drainEvents handles every input event already queued, without blocking.
func (s *Session) drainEvents() error {
	if s.events == nil {
		return nil
	}
	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				return ErrQuit
			}
			if err := s.HandleEvent(ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// startInputPump starts the goroutine that turns blocking PollEvent calls
// into channel sends. It exits when the backend shuts down or the session
// is done.
func (s *Session) startInputPump() <-chan backend.Event {
	events := make(chan backend.Event, eventBufferSize)

	go func() {
		defer close(events)

		for {
			ev := s.backend.PollEvent()
			if ev.Type == backend.EventClosed {
				return
			}
			if ev.Type == backend.EventNone {
				continue
			}

			select {
			case events <- ev:
			case <-s.done:
				return
			}
		}
	}()

	return events
}
