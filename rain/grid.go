package rain

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MaxCells caps a single grid allocation
const MaxCells = 1 << 24

var (
	ErrOutOfMemory = errors.New("grid: out of memory")
	ErrInvalidSize = errors.New("grid: invalid size")
)

// Grid is a row-major buffer of cells plus drop bookkeeping
// Cells are indexed as row*cols + col
type Grid struct {
	rows  int
	cols  int
	cells []Cell

	drops int     // live DROP cells
	ratio float64 // target fraction of DROP cells
}

// NewGrid returns an empty 0x0 grid; call Resize before use
func NewGrid() *Grid {
	return &Grid{}
}

// Resize reallocates the buffer for rows x cols cells
// Prior content is discarded, the drop count is reset and ratio is stored
// On error the grid is left unchanged
func (g *Grid) Resize(rows, cols int, ratio float64) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, rows, cols)
	}
	if rows > MaxCells/cols {
		return fmt.Errorf("%w: %dx%d exceeds %d cells", ErrOutOfMemory, rows, cols, MaxCells)
	}

	cells, err := allocCells(rows * cols)
	if err != nil {
		return err
	}

	g.cells = cells
	g.rows = rows
	g.cols = cols
	g.drops = 0
	g.ratio = ratio
	return nil
}

// allocCells converts an allocation panic into ErrOutOfMemory
func allocCells(n int) (cells []Cell, err error) {
	defer func() {
		if r := recover(); r != nil {
			cells = nil
			err = fmt.Errorf("%w: %v", ErrOutOfMemory, r)
		}
	}()
	return make([]Cell, n), nil
}

// Reset releases the buffer, leaving an empty grid
func (g *Grid) Reset() {
	g.cells = nil
	g.rows = 0
	g.cols = 0
	g.drops = 0
}

func (g *Grid) Rows() int          { return g.rows }
func (g *Grid) Cols() int          { return g.cols }
func (g *Grid) Len() int           { return len(g.cells) }
func (g *Grid) DropCount() int     { return g.drops }
func (g *Grid) DropRatio() float64 { return g.ratio }

// SetDropRatio changes the replenishment target without touching cells
func (g *Grid) SetDropRatio(r float64) { g.ratio = r }

// Cells exposes the backing buffer for renderers; callers must not modify it
func (g *Grid) Cells() []Cell {
	return g.cells
}

// inBounds reports whether row, col address a stored cell
func (g *Grid) inBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// Get returns the cell at row, col or the zero cell when out of bounds
func (g *Grid) Get(row, col int) Cell {
	if !g.inBounds(row, col) {
		return Cell{}
	}
	return g.cells[row*g.cols+col]
}

// Set overwrites the cell at row, col; out of bounds is a no-op
func (g *Grid) Set(row, col int, c Cell) {
	if !g.inBounds(row, col) {
		return
	}
	g.cells[row*g.cols+col] = c
}

func (g *Grid) Char(row, col int) byte   { return g.Get(row, col).Char }
func (g *Grid) State(row, col int) State { return g.Get(row, col).State }
func (g *Grid) Size(row, col int) uint8  { return g.Get(row, col).Size }

// SetChar replaces the character, keeping state and size
func (g *Grid) SetChar(row, col int, char byte) {
	g.Set(row, col, g.Get(row, col).WithChar(char))
}

// SetState replaces the state; none clears size
func (g *Grid) SetState(row, col int, state State) {
	g.Set(row, col, g.Get(row, col).WithState(state))
}

// SetSize replaces size, keeping state; ignored for none cells
func (g *Grid) SetSize(row, col int, size uint8) {
	g.Set(row, col, g.Get(row, col).WithSize(size))
}

// CountState scans the grid for cells in the given state
func (g *Grid) CountState(state State) int {
	n := 0
	for _, c := range g.cells {
		if c.State == state {
			n++
		}
	}
	return n
}

// snapshotHeader is rows and cols as big-endian uint16
const snapshotHeader = 4

// MarshalBinary encodes dimensions and packed cells
func (g *Grid) MarshalBinary() ([]byte, error) {
	if g.rows > 0xFFFF || g.cols > 0xFFFF {
		return nil, fmt.Errorf("%w: %dx%d does not fit snapshot header", ErrInvalidSize, g.rows, g.cols)
	}
	buf := make([]byte, snapshotHeader+2*len(g.cells))
	binary.BigEndian.PutUint16(buf[0:], uint16(g.rows))
	binary.BigEndian.PutUint16(buf[2:], uint16(g.cols))
	for i, c := range g.cells {
		binary.BigEndian.PutUint16(buf[snapshotHeader+2*i:], c.Pack())
	}
	return buf, nil
}

// UnmarshalBinary restores a snapshot, recounting drops; the ratio is kept
func (g *Grid) UnmarshalBinary(data []byte) error {
	if len(data) < snapshotHeader {
		return fmt.Errorf("%w: snapshot too short", ErrInvalidSize)
	}
	rows := int(binary.BigEndian.Uint16(data[0:]))
	cols := int(binary.BigEndian.Uint16(data[2:]))
	if len(data) != snapshotHeader+2*rows*cols {
		return fmt.Errorf("%w: snapshot length %d for %dx%d", ErrInvalidSize, len(data), rows, cols)
	}
	if err := g.Resize(rows, cols, g.ratio); err != nil {
		return err
	}
	for i := range g.cells {
		c := Unpack(binary.BigEndian.Uint16(data[snapshotHeader+2*i:]))
		g.cells[i] = NewCell(c.Char, c.State, c.Size)
		if c.State == StateDrop {
			g.drops++
		}
	}
	return nil
}
