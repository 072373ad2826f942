package rain

import (
	"math"
	"math/rand/v2"
)

// Color count bounds; index 0 is the drop head, 1..n-1 grade the tail
const (
	NumColors = 6
	MinColors = 2
	MaxColors = SizeMax + 1
)

// Engine advances grids one tick at a time
// It holds no per-grid state; every drop is reconstructed from cell contents
type Engine struct {
	rng    *rand.Rand
	colors int
}

// NewEngine creates an engine with a deterministic generator
// colors is clamped to [MinColors, MaxColors]
func NewEngine(seed uint64, colors int) *Engine {
	return &Engine{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
		colors: min(max(colors, MinColors), MaxColors),
	}
}

// Colors returns the palette size the engine grades tails against
func (e *Engine) Colors() int {
	return e.colors
}

// randChar returns a printable character, biased toward space
func (e *Engine) randChar() byte {
	n := e.rng.IntN(CharMax)
	if n < CharMin {
		n = CharMin
	}
	return byte(n)
}

// randTail returns a tail length in [TailMin, TailMax]
func (e *Engine) randTail() int {
	return TailMin + e.rng.IntN(TailMax-TailMin+1)
}

// tailColor maps the i-th tail cell of a size-long tail to a color index
// Intensity grows away from the head: ceil((colors-1) * i / size)
func (e *Engine) tailColor(i, size int) uint8 {
	return uint8(math.Ceil(float64(e.colors-1) * float64(i) / float64(size)))
}

// Fill turns every cell into a none cell with a random character
func (e *Engine) Fill(g *Grid) {
	for i := range g.cells {
		g.cells[i] = NewCell(e.randChar(), StateNone, 0)
	}
	g.drops = 0
}

// Glitch rewrites the character of fraction*rows*cols random cells
// Positions are drawn with replacement; state and size are untouched
func (e *Engine) Glitch(g *Grid, fraction float64) {
	if len(g.cells) == 0 {
		return
	}
	n := int(fraction * float64(len(g.cells)))
	for i := 0; i < n; i++ {
		row := e.rng.IntN(g.rows)
		col := e.rng.IntN(g.cols)
		g.SetChar(row, col, e.randChar())
	}
}

// AddDrop writes a drop head at row, col and up to size tail cells above it
// Rows below the grid are skipped, the walk stops at the top edge
// An overwritten drop head is uncounted so DropCount stays exact
func (e *Engine) AddDrop(g *Grid, row, col, size int) {
	if col < 0 || col >= g.cols {
		return
	}
	size = min(max(size, 0), SizeMax)

	for i := 0; i <= size; i, row = i+1, row-1 {
		if row < 0 {
			break
		}
		if row >= g.rows {
			continue
		}

		idx := row*g.cols + col
		prev := g.cells[idx]
		if prev.State == StateDrop {
			g.drops--
		}

		if i == 0 {
			g.cells[idx] = NewCell(prev.Char, StateDrop, uint8(size))
			g.drops++
		} else {
			g.cells[idx] = NewCell(prev.Char, StateTail, e.tailColor(i, size))
		}
	}
}

// Rain seeds rows*cols*ratio drops at random positions
func (e *Engine) Rain(g *Grid) {
	if len(g.cells) == 0 {
		return
	}
	n := int(float64(len(g.cells)) * g.ratio)
	for i := 0; i < n; i++ {
		col := e.rng.IntN(g.cols)
		row := e.rng.IntN(g.rows)
		e.AddDrop(g, row, col, e.randTail())
	}
}

// AdvanceColumn moves every drop and tail cell of col one row down
// Characters stay in place; only state and size travel
// A tail cell is grown at the top while the last drop seen still has tail
// to materialize. Returns true when a drop left the bottom row.
func (e *Engine) AdvanceColumn(g *Grid, col int) bool {
	if col < 0 || col >= g.cols || g.rows == 0 {
		return false
	}

	bottom := g.rows - 1
	dropped := g.cells[bottom*g.cols+col].State == StateDrop

	tailSize, tailSeen := 0, 0
	top := StateNone

	for row := bottom; row >= 0; row-- {
		idx := row*g.cols + col
		c := g.cells[idx]
		if row == 0 {
			top = c.State
		}
		if c.State == StateNone {
			continue
		}

		// Cell below was already moved or empty, so nothing live is overwritten
		if row < bottom {
			below := &g.cells[idx+g.cols]
			below.State = c.State
			below.Size = c.Size
		}
		g.cells[idx].State = StateNone
		g.cells[idx].Size = 0

		switch c.State {
		case StateDrop:
			tailSize = int(c.Size)
			tailSeen = 0
		case StateTail:
			if tailSize > 0 {
				tailSeen++
			}
		}
	}

	if top != StateNone && tailSeen < tailSize {
		g.cells[col] = NewCell(g.cells[col].Char, StateTail, e.tailColor(tailSeen+1, tailSize))
	}

	return dropped
}

// Update advances all columns one row, then spawns drops at the top row
// to pull the drop count toward rows*cols*ratio
func (e *Engine) Update(g *Grid) {
	if len(g.cells) == 0 {
		return
	}

	for col := 0; col < g.cols; col++ {
		if e.AdvanceColumn(g, col) {
			g.drops--
		}
	}

	desired := int(float64(len(g.cells)) * g.ratio)
	missing := desired - g.drops
	add := int(math.Ceil(float64(missing) / float64(g.rows)))

	for i := 0; i < add; i++ {
		e.AddDrop(g, 0, e.rng.IntN(g.cols), e.randTail())
	}
}
