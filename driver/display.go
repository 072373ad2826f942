package driver

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/matrix-rain/rain"
	"github.com/lixenwraith/matrix-rain/render"
	"github.com/lixenwraith/matrix-rain/terminal"
)

// TerminalDisplay streams ANSI frames to a raw terminal
type TerminalDisplay struct {
	term     terminal.Terminal
	renderer *render.ANSIRenderer
}

func NewTerminalDisplay(t terminal.Terminal, p render.Palette, mode terminal.ColorMode) *TerminalDisplay {
	return &TerminalDisplay{
		term:     t,
		renderer: render.NewANSIRenderer(t.Writer(), p, mode),
	}
}

func (d *TerminalDisplay) Size() (int, int, error) {
	w, h, err := d.term.Size()
	return h, w, err
}

func (d *TerminalDisplay) Frame(g *rain.Grid) error {
	return d.renderer.Render(g)
}

// TcellDisplay draws frames on a tcell screen
type TcellDisplay struct {
	screen   tcell.Screen
	renderer *render.TcellRenderer
}

func NewTcellDisplay(screen tcell.Screen, p render.Palette, background bool) *TcellDisplay {
	return &TcellDisplay{
		screen:   screen,
		renderer: render.NewTcellRenderer(screen, p, background),
	}
}

func (d *TcellDisplay) Size() (int, int, error) {
	w, h := d.screen.Size()
	return h, w, nil
}

func (d *TcellDisplay) Frame(g *rain.Grid) error {
	return d.renderer.Render(g)
}

// Watch polls screen events until the screen is finalized
// Resizes and quit keys become notifications on s
func (d *TcellDisplay) Watch(s *Signals) {
	go func() {
		for {
			switch ev := d.screen.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventResize:
				d.screen.Sync()
				s.NotifyResize()
			case *tcell.EventKey:
				if IsQuitKey(ev) {
					s.NotifyStop()
				}
			}
		}
	}()
}

// IsQuitKey matches q, Esc and Ctrl-C
func IsQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			return ev.Rune() == 'c'
		}
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}
