package terminal

import (
	"io"
	"os"
	"sync"
)

// Options control the screen setup applied by Init
type Options struct {
	// Background paints the whole screen black instead of keeping the terminal default
	Background bool
}

// Terminal provides low-level terminal access
type Terminal interface {
	// Init saves terminal state, enters the alternate screen, hides cursor
	Init(opts Options) error

	// Fini restores terminal state. Safe to call multiple times
	Fini()

	// Size returns current terminal dimensions
	Size() (width, height int, err error)

	// Writer returns the raw output stream; frames are written through it
	Writer() io.Writer

	// SetResizeHandler registers a callback invoked on SIGWINCH
	SetResizeHandler(handler func())
}

// termImpl implements Terminal using the Backend interface
type termImpl struct {
	backend Backend

	mu          sync.Mutex
	initialized bool
	finalized   bool
}

// New creates a Terminal bound to the process stdin/stdout
func New() Terminal {
	return NewWithBackend(newBackend())
}

// NewWithBackend creates a Terminal over an explicit backend
func NewWithBackend(b Backend) Terminal {
	return &termImpl{backend: b}
}

// Init enters alternate screen and sets up the frame style
func (t *termImpl) Init(opts Options) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}

	if err := t.backend.Init(); err != nil {
		return err
	}

	t.writeRaw(csiAltScreenEnter)
	t.writeRaw(csiCursorHide)
	t.writeRaw(csiAttrBold)
	if opts.Background {
		t.writeRaw(AppendBg256(nil, 0))
	}
	t.writeRaw(csiClear)
	t.writeRaw(csiHome)

	t.initialized = true
	return nil
}

// Fini restores terminal state
func (t *termImpl) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}

	t.writeRaw(csiSGR0)
	t.writeRaw(csiCursorShow)
	t.writeRaw(csiClear)
	t.writeRaw(csiHome)
	t.writeRaw(csiAltScreenExit)

	t.backend.Fini()

	t.finalized = true
}

// Size returns current terminal dimensions
func (t *termImpl) Size() (int, int, error) {
	return t.backend.Size()
}

// Writer returns an io.Writer over the backend
func (t *termImpl) Writer() io.Writer {
	return backendWriter{t.backend}
}

// SetResizeHandler delegates to the backend
func (t *termImpl) SetResizeHandler(handler func()) {
	t.backend.SetResizeHandler(handler)
}

// writeRaw writes raw bytes to output
func (t *termImpl) writeRaw(data []byte) {
	t.backend.Write(data)
}

type backendWriter struct {
	b Backend
}

func (w backendWriter) Write(p []byte) (int, error) {
	if err := w.b.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if Fini() cannot be called normally
func EmergencyReset(w io.Writer) {
	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	w.Write(csiSGR0)
	w.Write(csiRIS)

	// Flush if it's a file
	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
