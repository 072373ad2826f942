package server

import (
	"io"
	"sync"

	"github.com/gliderlabs/ssh"
)

// sessionBackend is a terminal.Backend over an SSH channel
// Size follows the client's window-change requests
type sessionBackend struct {
	w io.Writer

	mu       sync.Mutex
	width    int
	height   int
	onResize func()
}

func newSessionBackend(w io.Writer, win ssh.Window) *sessionBackend {
	return &sessionBackend{w: w, width: win.Width, height: win.Height}
}

// Init has nothing to set up; the client's pty is already raw
func (b *sessionBackend) Init() error { return nil }
func (b *sessionBackend) Fini()       {}

func (b *sessionBackend) Size() (int, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height, nil
}

func (b *sessionBackend) Write(p []byte) error {
	_, err := b.w.Write(p)
	return err
}

func (b *sessionBackend) SetResizeHandler(handler func()) {
	b.mu.Lock()
	b.onResize = handler
	b.mu.Unlock()
}

// watchWindow applies window changes until winCh closes
func (b *sessionBackend) watchWindow(winCh <-chan ssh.Window) {
	for win := range winCh {
		b.mu.Lock()
		b.width, b.height = win.Width, win.Height
		handler := b.onResize
		b.mu.Unlock()

		if handler != nil {
			handler()
		}
	}
}

// quitRequested reports whether an input chunk asks to leave
// q, Ctrl-C and Ctrl-D anywhere in the chunk, or a lone Esc
func quitRequested(buf []byte) bool {
	if len(buf) == 1 && buf[0] == 0x1b {
		return true
	}
	for _, c := range buf {
		switch c {
		case 'q', 'Q', 0x03, 0x04:
			return true
		}
	}
	return false
}
