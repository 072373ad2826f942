//go:build unix

package terminal

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
)

// resizeHandler forwards SIGWINCH to a callback
// The callback runs on the watcher goroutine and must not block
type resizeHandler struct {
	notify func()
	sigCh  chan os.Signal
	stopCh chan struct{}
	doneCh chan struct{}
}

func newResizeHandler(notify func()) *resizeHandler {
	return &resizeHandler{
		notify: notify,
		sigCh:  make(chan os.Signal, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// start begins listening for SIGWINCH
func (r *resizeHandler) start() {
	signal.Notify(r.sigCh, syscall.SIGWINCH)
	go r.watchLoop()
}

// stop unsubscribes and waits for the watcher to exit
func (r *resizeHandler) stop() {
	signal.Stop(r.sigCh)
	close(r.stopCh)
	<-r.doneCh
}

func (r *resizeHandler) watchLoop() {
	defer close(r.doneCh)

	defer func() {
		if r := recover(); r != nil {
			EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\n\x1b[31mRESIZE HANDLER CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	for {
		select {
		case <-r.stopCh:
			return
		case <-r.sigCh:
			r.notify()
		}
	}
}
