// Package server serves rain to SSH clients, one simulation per session
package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync/atomic"

	"github.com/gliderlabs/ssh"

	"github.com/lixenwraith/matrix-rain/config"
	"github.com/lixenwraith/matrix-rain/driver"
	"github.com/lixenwraith/matrix-rain/rain"
	"github.com/lixenwraith/matrix-rain/render"
	"github.com/lixenwraith/matrix-rain/terminal"
)

// Options configure the server and every session it starts
type Options struct {
	Addr    string
	HostKey string // PEM file; empty generates a key per run
	Palette render.Palette
	Color   string // config color name; auto inspects the client's environment
	Rain    config.Derived
	Logger  *log.Logger
}

// Server wraps the SSH listener
type Server struct {
	opts     Options
	srv      *ssh.Server
	log      *log.Logger
	sessions atomic.Uint64
	active   atomic.Int64
}

func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{opts: opts, log: logger}
	s.srv = &ssh.Server{
		Addr:    opts.Addr,
		Handler: s.handleSession,
	}

	if opts.HostKey != "" {
		if err := s.srv.SetOption(ssh.HostKeyFile(opts.HostKey)); err != nil {
			return nil, fmt.Errorf("set host key: %w", err)
		}
	}
	return s, nil
}

// ListenAndServe blocks until Close; a closed server returns nil
func (s *Server) ListenAndServe() error {
	s.log.Printf("SSH server listening on %s", s.opts.Addr)
	return s.serveResult(s.srv.ListenAndServe())
}

// Serve accepts sessions on an existing listener
func (s *Server) Serve(l net.Listener) error {
	s.log.Printf("SSH server listening on %s", l.Addr())
	return s.serveResult(s.srv.Serve(l))
}

func (s *Server) serveResult(err error) error {
	if errors.Is(err, ssh.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops the listener and drops open sessions
func (s *Server) Close() error {
	return s.srv.Close()
}

// Active is the number of sessions currently raining
func (s *Server) Active() int64 { return s.active.Load() }

func (s *Server) handleSession(sess ssh.Session) {
	ptyReq, winCh, ok := sess.Pty()
	if !ok {
		fmt.Fprintln(sess, "Error: PTY required. Use: ssh -t ...")
		sess.Exit(1)
		return
	}

	id := s.sessions.Add(1)
	user := sess.User()
	if user == "" {
		user = "anonymous"
	}
	s.active.Add(1)
	s.log.Printf("session %d: %s connected from %s (%dx%d %s)", id, user, sess.RemoteAddr(), ptyReq.Window.Width, ptyReq.Window.Height, ptyReq.Term)
	defer func() {
		s.active.Add(-1)
		s.log.Printf("session %d: %s disconnected", id, user)
	}()

	backend := newSessionBackend(sess, ptyReq.Window)
	term := terminal.NewWithBackend(backend)
	if err := term.Init(terminal.Options{Background: s.opts.Rain.Background}); err != nil {
		s.log.Printf("session %d: init: %v", id, err)
		sess.Exit(1)
		return
	}
	defer term.Fini()

	sig := driver.NewSignals()
	term.SetResizeHandler(sig.NotifyResize)
	go backend.watchWindow(winCh)
	go readInput(sess, sig)

	mode := ColorModeFor(s.opts.Color, ptyReq.Term, sess.Environ())
	display := driver.NewTerminalDisplay(term, s.opts.Palette, mode)
	engine := rain.NewEngine(s.opts.Rain.Seed+id, s.opts.Palette.Len())

	loop := driver.NewLoop(display, engine, sig, driver.Options{
		Interval:       s.opts.Rain.Interval,
		DropRatio:      s.opts.Rain.DropRatio,
		GlitchFraction: s.opts.Rain.GlitchFraction,
		Logger:         s.log,
	})

	if err := loop.Run(sess.Context()); err != nil {
		s.log.Printf("session %d: %v", id, err)
		term.Fini()
		sess.Exit(1)
		return
	}

	term.Fini()
	sess.Exit(0)
}

// readInput stops the session on a quit key or a closed channel
func readInput(r io.Reader, sig *driver.Signals) {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if err != nil || quitRequested(buf[:n]) {
			sig.NotifyStop()
			return
		}
	}
}

// ColorModeFor picks the color mode for a client
// An explicit setting wins; auto looks for COLORTERM in the forwarded
// environment and a direct-color terminal type
func ColorModeFor(setting, termType string, environ []string) terminal.ColorMode {
	switch setting {
	case config.Color256:
		return terminal.ColorMode256
	case config.ColorTrueColor:
		return terminal.ColorModeTrueColor
	}

	for _, kv := range environ {
		if v, ok := strings.CutPrefix(kv, "COLORTERM="); ok && (v == "truecolor" || v == "24bit") {
			return terminal.ColorModeTrueColor
		}
	}
	if strings.HasSuffix(termType, "-direct") {
		return terminal.ColorModeTrueColor
	}
	return terminal.ColorMode256
}
