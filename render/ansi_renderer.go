package render

import (
	"bufio"
	"io"

	"github.com/lixenwraith/matrix-rain/rain"
	"github.com/lixenwraith/matrix-rain/terminal"
)

// outputBufferSize covers a full frame of a large terminal with colors
const outputBufferSize = 131072

// ANSIRenderer streams a grid as characters interleaved with color sequences
// Color sequences are built once; a frame is one pass with no per-cell allocation
type ANSIRenderer struct {
	writer *bufio.Writer
	colors [][]byte // foreground sequence per color index
	last   int      // color index last emitted, -1 when unknown
}

// NewANSIRenderer creates a renderer writing to w
func NewANSIRenderer(w io.Writer, p Palette, mode terminal.ColorMode) *ANSIRenderer {
	colors := make([][]byte, p.Len())
	for i := range colors {
		colors[i] = terminal.AppendFg(nil, p.Index(i), mode)
	}
	return &ANSIRenderer{
		writer: bufio.NewWriterSize(w, outputBufferSize),
		colors: colors,
		last:   -1,
	}
}

// Render homes the cursor and prints the grid
func (r *ANSIRenderer) Render(g *rain.Grid) error {
	r.writer.Write(terminal.Home())
	return r.Print(g)
}

// Print writes every cell in row-major order and flushes once
// None cells are spaces; only color changes emit a sequence
func (r *ANSIRenderer) Print(g *rain.Grid) error {
	w := r.writer
	r.last = -1

	for _, c := range g.Cells() {
		switch c.State {
		case rain.StateNone:
			w.WriteByte(' ')
		case rain.StateDrop:
			r.setColor(0)
			w.WriteByte(c.Char)
		case rain.StateTail:
			r.setColor(int(c.Size))
			w.WriteByte(c.Char)
		}
	}

	return w.Flush()
}

// setColor emits the sequence for color index i unless it is already active
func (r *ANSIRenderer) setColor(i int) {
	if i >= len(r.colors) {
		i = len(r.colors) - 1
	}
	if i == r.last {
		return
	}
	r.writer.Write(r.colors[i])
	r.last = i
}
