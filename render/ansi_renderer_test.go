package render

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/lixenwraith/matrix-rain/rain"
	"github.com/lixenwraith/matrix-rain/terminal"
)

// sampleGrid is a 2x3 grid covering every state
//
//	row 0: none 'a' | drop 'b'   | tail 'c' (1)
//	row 1: tail 'd' (1) | tail 'e' (5) | none 'f'
func sampleGrid(t *testing.T) *rain.Grid {
	t.Helper()
	g := rain.NewGrid()
	if err := g.Resize(2, 3, 0); err != nil {
		t.Fatal(err)
	}
	g.Set(0, 0, rain.NewCell('a', rain.StateNone, 0))
	g.Set(0, 1, rain.NewCell('b', rain.StateDrop, 12))
	g.Set(0, 2, rain.NewCell('c', rain.StateTail, 1))
	g.Set(1, 0, rain.NewCell('d', rain.StateTail, 1))
	g.Set(1, 1, rain.NewCell('e', rain.StateTail, 5))
	g.Set(1, 2, rain.NewCell('f', rain.StateNone, 0))
	return g
}

func TestANSIRendererPrint(t *testing.T) {
	g := sampleGrid(t)
	var buf bytes.Buffer
	r := NewANSIRenderer(&buf, DefaultPalette(), terminal.ColorMode256)

	if err := r.Print(g); err != nil {
		t.Fatal(err)
	}

	want := " " +
		"\x1b[38;5;231mb" +
		"\x1b[38;5;48mc" +
		"d" + // same color as previous cell, no sequence
		"\x1b[38;5;238me" +
		" "
	if buf.String() != want {
		t.Errorf("Expected %q, got %q", want, buf.String())
	}
}

func TestANSIRendererRenderHomesCursor(t *testing.T) {
	g := sampleGrid(t)
	var buf bytes.Buffer
	r := NewANSIRenderer(&buf, DefaultPalette(), terminal.ColorMode256)

	r.Render(g)
	r.Render(g)

	frames := strings.Split(buf.String(), "\x1b[H")
	if len(frames) != 3 || frames[0] != "" {
		t.Fatalf("Expected two frames each starting with cursor home, got %q", buf.String())
	}
	// Color state resets per frame so each frame is self-contained
	if frames[1] != frames[2] {
		t.Errorf("Frames differ: %q vs %q", frames[1], frames[2])
	}
}

func TestANSIRendererTrueColor(t *testing.T) {
	g := sampleGrid(t)
	var buf bytes.Buffer
	r := NewANSIRenderer(&buf, DefaultPalette(), terminal.ColorModeTrueColor)
	r.Print(g)

	if !strings.Contains(buf.String(), "\x1b[38;2;255;255;255mb") {
		t.Errorf("Expected 24-bit head color, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "38;5;") {
		t.Error("Unexpected 256-color sequence in truecolor mode")
	}
}

func TestANSIRendererClampsColorIndex(t *testing.T) {
	g := rain.NewGrid()
	g.Resize(1, 1, 0)
	g.Set(0, 0, rain.NewCell('z', rain.StateTail, 40))

	var buf bytes.Buffer
	r := NewANSIRenderer(&buf, Palette{Head: 231, Tail: []uint8{48, 41}}, terminal.ColorMode256)
	r.Print(g)

	if buf.String() != "\x1b[38;5;41mz" {
		t.Errorf("Expected last tail color, got %q", buf.String())
	}
}

func TestANSIRendererDoesNotMutate(t *testing.T) {
	e := rain.NewEngine(11, rain.NumColors)
	g := rain.NewGrid()
	g.Resize(20, 40, 0.02)
	e.Fill(g)
	e.Rain(g)

	before, _ := g.MarshalBinary()
	r := NewANSIRenderer(io.Discard, DefaultPalette(), terminal.ColorMode256)
	r.Render(g)
	after, _ := g.MarshalBinary()

	if !bytes.Equal(before, after) {
		t.Error("Render mutated the grid")
	}
}

func TestANSIRendererNoAllocs(t *testing.T) {
	e := rain.NewEngine(11, rain.NumColors)
	g := rain.NewGrid()
	g.Resize(50, 200, 0.01)
	e.Fill(g)
	e.Rain(g)

	r := NewANSIRenderer(io.Discard, DefaultPalette(), terminal.ColorMode256)
	allocs := testing.AllocsPerRun(20, func() {
		r.Render(g)
	})
	if allocs != 0 {
		t.Errorf("Expected zero allocations per frame, got %.1f", allocs)
	}
}
