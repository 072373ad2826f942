// @focus: #sys { term }
// Package terminal provides direct ANSI terminal control for frame-based rendering.
//
// Features:
//   - 256-color palette and true color (24-bit) foreground sequences
//   - Alternate screen, hidden cursor, echo suppression with ISIG kept
//   - SIGWINCH resize notification
//   - Clean terminal restoration on exit/panic
//
// This package bypasses terminfo/termcap entirely, emitting direct ANSI sequences.
// Target environments: Linux, macOS, BSDs with xterm-compatible terminals.
package terminal
