package terminal

// Backend abstracts platform-specific terminal operations
type Backend interface {
	// Init saves terminal state and disables input echo
	Init() error
	// Fini restores the state saved by Init
	Fini()

	// Size returns the window size in cells
	Size() (width, height int, err error)

	// Write writes raw bytes to the terminal output
	Write(p []byte) error

	// SetResizeHandler registers a callback for terminal resize events
	SetResizeHandler(handler func())
}
