package render

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/matrix-rain/rain"
)

var ErrPalette = errors.New("render: invalid palette")

// Palette holds xterm-256 indices: the drop head, then tail colors dark-ward
// A tail cell with color index i uses Tail[i-1]
type Palette struct {
	Head uint8
	Tail []uint8
}

// DefaultPalette is white head fading through greens to gray
func DefaultPalette() Palette {
	return Palette{
		Head: 231,
		Tail: []uint8{48, 41, 35, 29, 238},
	}
}

// FromIndices builds a palette from a head-first list
func FromIndices(indices []uint8) (Palette, error) {
	if len(indices) < rain.MinColors || len(indices) > rain.MaxColors {
		return Palette{}, fmt.Errorf("%w: %d colors, need %d..%d", ErrPalette, len(indices), rain.MinColors, rain.MaxColors)
	}
	return Palette{Head: indices[0], Tail: append([]uint8(nil), indices[1:]...)}, nil
}

// Len is the color count the engine grades tails against
func (p Palette) Len() int {
	return 1 + len(p.Tail)
}

// Index returns the 256-palette entry for color index i
// Index 0 and anything past the tail's end clamp to head and last tail entry
func (p Palette) Index(i int) uint8 {
	if i <= 0 || len(p.Tail) == 0 {
		return p.Head
	}
	if i > len(p.Tail) {
		return p.Tail[len(p.Tail)-1]
	}
	return p.Tail[i-1]
}
