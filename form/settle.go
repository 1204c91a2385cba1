package form

import (
	"context"
	"time"
)

// Settler debounces re-validation after form mutations: callers Touch it
// on every mutation and Wait returns once the form has been quiet for
// the window. It replaces timer-scattered revalidation with one explicit
// settle step in front of Engine.Apply.
type Settler struct {
	window  time.Duration
	touches chan struct{}
}

// NewSettler creates a Settler with the given quiet window.
func NewSettler(window time.Duration) *Settler {
	return &Settler{
		window:  window,
		touches: make(chan struct{}, 1),
	}
}

// Touch restarts the quiet window. Safe to call from any goroutine; a
// Touch with no Wait pending is remembered for the next Wait.
func (s *Settler) Touch() {
	select {
	case s.touches <- struct{}{}:
	default:
	}
}

// Wait blocks until the window elapses without a Touch, or the context
// is done.
func (s *Settler) Wait(ctx context.Context) error {
	timer := time.NewTimer(s.window)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.touches:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(s.window)
		case <-timer.C:
			return nil
		}
	}
}
