package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/matrix-rain/rain"
)

// TcellRenderer draws a grid onto a tcell screen
type TcellRenderer struct {
	screen tcell.Screen
	blank  tcell.Style
	styles []tcell.Style // style per color index
}

// NewTcellRenderer creates a renderer for screen; background paints cells black
func NewTcellRenderer(screen tcell.Screen, p Palette, background bool) *TcellRenderer {
	base := tcell.StyleDefault.Bold(true)
	if background {
		base = base.Background(tcell.ColorBlack)
	}

	styles := make([]tcell.Style, p.Len())
	for i := range styles {
		styles[i] = base.Foreground(tcell.PaletteColor(int(p.Index(i))))
	}

	return &TcellRenderer{
		screen: screen,
		blank:  base,
		styles: styles,
	}
}

// Render copies every cell to the screen and shows it
func (r *TcellRenderer) Render(g *rain.Grid) error {
	cols := g.Cols()
	if cols == 0 {
		return nil
	}

	for i, c := range g.Cells() {
		x, y := i%cols, i/cols
		switch c.State {
		case rain.StateNone:
			r.screen.SetContent(x, y, ' ', nil, r.blank)
		case rain.StateDrop:
			r.screen.SetContent(x, y, rune(c.Char), nil, r.styles[0])
		case rain.StateTail:
			r.screen.SetContent(x, y, rune(c.Char), nil, r.style(int(c.Size)))
		}
	}

	r.screen.Show()
	return nil
}

func (r *TcellRenderer) style(i int) tcell.Style {
	if i >= len(r.styles) {
		i = len(r.styles) - 1
	}
	return r.styles[i]
}
