package rain

import (
	"errors"
	"testing"
)

func newTestGrid(t *testing.T, rows, cols int, ratio float64) *Grid {
	t.Helper()
	g := NewGrid()
	if err := g.Resize(rows, cols, ratio); err != nil {
		t.Fatalf("Resize(%d, %d): %v", rows, cols, err)
	}
	return g
}

func TestGridResize(t *testing.T) {
	g := newTestGrid(t, 4, 7, 0.25)

	if g.Rows() != 4 || g.Cols() != 7 || g.Len() != 28 {
		t.Errorf("Expected 4x7 (28 cells), got %dx%d (%d)", g.Rows(), g.Cols(), g.Len())
	}
	if g.DropRatio() != 0.25 {
		t.Errorf("Expected ratio 0.25, got %f", g.DropRatio())
	}
	if g.DropCount() != 0 {
		t.Errorf("Expected drop count 0, got %d", g.DropCount())
	}
}

func TestGridResizeErrorsLeaveGridUnchanged(t *testing.T) {
	g := newTestGrid(t, 3, 3, 0.1)
	g.Set(1, 1, NewCell('q', StateDrop, 9))

	tests := []struct {
		name       string
		rows, cols int
		want       error
	}{
		{"zero rows", 0, 5, ErrInvalidSize},
		{"negative cols", 5, -1, ErrInvalidSize},
		{"too many cells", MaxCells, 2, ErrOutOfMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Resize(tt.rows, tt.cols, 0.5)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			if g.Rows() != 3 || g.Cols() != 3 || g.DropRatio() != 0.1 {
				t.Errorf("Grid changed after failed resize: %dx%d ratio %f", g.Rows(), g.Cols(), g.DropRatio())
			}
			if g.Get(1, 1).Char != 'q' {
				t.Error("Cell content lost after failed resize")
			}
		})
	}
}

func TestGridBoundsSafety(t *testing.T) {
	g := newTestGrid(t, 3, 4, 0)
	for i := range g.cells {
		g.cells[i] = NewCell('#', StateTail, 2)
	}
	before := append([]Cell(nil), g.Cells()...)

	outside := [][2]int{{3, 0}, {0, 4}, {-1, 0}, {0, -1}, {100, 100}}
	for _, p := range outside {
		if c := g.Get(p[0], p[1]); c != (Cell{}) {
			t.Errorf("Get(%d,%d) expected zero cell, got %+v", p[0], p[1], c)
		}
		g.Set(p[0], p[1], NewCell('!', StateDrop, 8))
		g.SetChar(p[0], p[1], '!')
		g.SetState(p[0], p[1], StateDrop)
		g.SetSize(p[0], p[1], 1)
	}

	for i, c := range g.Cells() {
		if c != before[i] {
			t.Fatalf("Cell %d changed by out-of-bounds write: %+v -> %+v", i, before[i], c)
		}
	}
}

func TestGridRowMajorIndex(t *testing.T) {
	g := newTestGrid(t, 3, 5, 0)
	g.Set(2, 1, NewCell('Z', StateNone, 0))
	if g.Cells()[2*5+1].Char != 'Z' {
		t.Error("Expected cell (2,1) at index 11")
	}
}

func TestGridMutatorsKeepInvariant(t *testing.T) {
	g := newTestGrid(t, 2, 2, 0)

	g.SetState(0, 0, StateDrop)
	g.SetSize(0, 0, 30)
	g.SetChar(0, 0, 'k')
	if c := g.Get(0, 0); c.State != StateDrop || c.Size != 30 || c.Char != 'k' {
		t.Fatalf("Expected drop/30/k, got %+v", c)
	}

	g.SetState(0, 0, StateNone)
	if g.Size(0, 0) != 0 {
		t.Errorf("Expected size reset by none state, got %d", g.Size(0, 0))
	}
	if g.Char(0, 0) != 'k' {
		t.Errorf("Expected char kept, got %q", g.Char(0, 0))
	}

	g.SetSize(1, 1, 12)
	if g.State(1, 1) != StateNone || g.Size(1, 1) != 0 {
		t.Errorf("SetSize on none cell broke invariant: %+v", g.Get(1, 1))
	}
}

func TestGridResizeDiscardsContent(t *testing.T) {
	e := NewEngine(7, NumColors)
	g := newTestGrid(t, 10, 10, 0.05)
	e.Fill(g)
	e.Rain(g)
	if g.DropCount() == 0 {
		t.Fatal("Expected seeded drops before resize")
	}

	if err := g.Resize(6, 12, 0.05); err != nil {
		t.Fatal(err)
	}
	if g.DropCount() != 0 {
		t.Errorf("Expected drop count reset, got %d", g.DropCount())
	}
	for i, c := range g.Cells() {
		if c != (Cell{}) {
			t.Fatalf("Cell %d survived resize: %+v", i, c)
		}
	}

	e.Fill(g)
	if n := g.CountState(StateNone); n != g.Len() {
		t.Errorf("Expected every cell none after fill, got %d of %d", n, g.Len())
	}
}

func TestGridSnapshot(t *testing.T) {
	e := NewEngine(3, NumColors)
	g := newTestGrid(t, 8, 9, 0.05)
	e.Fill(g)
	e.Rain(g)

	data, err := g.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 4+2*g.Len() {
		t.Fatalf("Expected %d bytes, got %d", 4+2*g.Len(), len(data))
	}

	restored := NewGrid()
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if restored.Rows() != 8 || restored.Cols() != 9 {
		t.Fatalf("Expected 8x9, got %dx%d", restored.Rows(), restored.Cols())
	}
	for i := range g.Cells() {
		if g.Cells()[i] != restored.Cells()[i] {
			t.Fatalf("Cell %d differs: %+v vs %+v", i, g.Cells()[i], restored.Cells()[i])
		}
	}
	if restored.DropCount() != g.CountState(StateDrop) {
		t.Errorf("Expected %d drops, got %d", g.CountState(StateDrop), restored.DropCount())
	}

	if err := restored.UnmarshalBinary(data[:len(data)-1]); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize for truncated snapshot, got %v", err)
	}
}

func TestGridReset(t *testing.T) {
	g := newTestGrid(t, 2, 2, 0.1)
	g.Reset()
	if g.Len() != 0 || g.Rows() != 0 || g.Cols() != 0 {
		t.Errorf("Expected empty grid after reset, got %dx%d", g.Rows(), g.Cols())
	}
	if c := g.Get(0, 0); c != (Cell{}) {
		t.Errorf("Expected zero cell from empty grid, got %+v", c)
	}
}
