//go:build unix

package terminal

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("terminal: output is not a terminal")

type unixBackend struct {
	in      *os.File
	out     *os.File
	inFd    int
	outFd   int
	oldTerm *term.State

	resize *resizeHandler
}

func newBackend() Backend {
	return &unixBackend{
		in:    os.Stdin,
		out:   os.Stdout,
		inFd:  int(os.Stdin.Fd()),
		outFd: int(os.Stdout.Fd()),
	}
}

func (b *unixBackend) Init() error {
	if !term.IsTerminal(b.outFd) {
		return ErrNotTerminal
	}

	// Input may be redirected; echo control is best-effort then
	if !term.IsTerminal(b.inFd) {
		return nil
	}

	old, err := term.GetState(b.inFd)
	if err != nil {
		return fmt.Errorf("save terminal state: %w", err)
	}
	b.oldTerm = old

	termios, err := unix.IoctlGetTermios(b.inFd, ioctlReadTermios)
	if err != nil {
		return fmt.Errorf("read termios: %w", err)
	}
	// Echo off only; ISIG stays so ^C still raises SIGINT
	termios.Lflag &^= unix.ECHO
	if err := unix.IoctlSetTermios(b.inFd, ioctlWriteTermios, termios); err != nil {
		return fmt.Errorf("disable echo: %w", err)
	}
	return nil
}

func (b *unixBackend) Fini() {
	if b.resize != nil {
		b.resize.stop()
		b.resize = nil
	}
	if b.oldTerm != nil {
		term.Restore(b.inFd, b.oldTerm)
		b.oldTerm = nil
	}
}

func (b *unixBackend) Size() (int, int, error) {
	ws, err := unix.IoctlGetWinsize(b.outFd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("query window size: %w", err)
	}
	return int(ws.Col), int(ws.Row), nil
}

func (b *unixBackend) Write(p []byte) error {
	_, err := b.out.Write(p)
	return err
}

// SetResizeHandler forwards SIGWINCH to handler; only the first call registers
func (b *unixBackend) SetResizeHandler(handler func()) {
	if b.resize != nil {
		return
	}
	b.resize = newResizeHandler(handler)
	b.resize.start()
}

// resetTerminalMode attempts to restore terminal to cooked mode
// Best-effort for crash recovery; errors ignored
func resetTerminalMode() {
	// Try to restore via /dev/tty (works even if stdin redirected)
	if tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
		defer tty.Close()
		fd := int(tty.Fd())
		if termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios); err == nil {
			termios.Lflag |= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
			termios.Iflag |= unix.ICRNL
			unix.IoctlSetTermios(fd, ioctlWriteTermios, termios)
		}
	}
}
