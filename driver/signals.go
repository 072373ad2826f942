package driver

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Signals carries asynchronous resize and stop requests to a Loop
// Notify methods only set a flag and post a wake token, so they are safe
// from signal watchers, event pollers and network goroutines alike
type Signals struct {
	resized atomic.Bool
	stopped atomic.Bool
	wake    chan struct{}
}

func NewSignals() *Signals {
	return &Signals{wake: make(chan struct{}, 1)}
}

// NotifyResize requests a grid rebuild before the next frame
func (s *Signals) NotifyResize() {
	s.resized.Store(true)
	s.post()
}

// NotifyStop requests loop exit before the next frame
func (s *Signals) NotifyStop() {
	s.stopped.Store(true)
	s.post()
}

// Stopped reports whether stop was requested
func (s *Signals) Stopped() bool {
	return s.stopped.Load()
}

// Wake is readable while a notification is pending
func (s *Signals) Wake() <-chan struct{} {
	return s.wake
}

// takeResize clears and returns the resize flag
func (s *Signals) takeResize() bool {
	return s.resized.Swap(false)
}

// post leaves a single wake token; an unconsumed token already covers it
func (s *Signals) post() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// WatchOS turns SIGINT, SIGQUIT and SIGTERM into stop requests until ctx ends
func WatchOS(ctx context.Context, s *Signals) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigCh:
				s.NotifyStop()
			}
		}
	}()
}
