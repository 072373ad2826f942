//go:build !unix

package terminal

import "errors"

var ErrNotTerminal = errors.New("terminal: unsupported platform")

// otherBackend reports the platform as unsupported; the ANSI path needs termios and SIGWINCH
type otherBackend struct{}

func newBackend() Backend { return otherBackend{} }

func (otherBackend) Init() error             { return ErrNotTerminal }
func (otherBackend) Fini()                   {}
func (otherBackend) Size() (int, int, error) { return 0, 0, ErrNotTerminal }
func (otherBackend) Write(p []byte) error    { return ErrNotTerminal }
func (otherBackend) SetResizeHandler(func()) {}

func resetTerminalMode() {}
