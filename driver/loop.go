// Package driver runs the rain simulation against a display
//
// A Loop owns one grid and one engine. Each frame it glitches the backdrop,
// hands the grid to the display and advances the simulation, then sleeps
// for the frame interval. Resize and stop requests arrive through Signals
// and are honored only between frames.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lixenwraith/matrix-rain/rain"
)

var ErrDimensions = errors.New("driver: unusable display dimensions")

// Display is where frames go
type Display interface {
	// Size returns the drawable area in cells
	Size() (rows, cols int, err error)

	// Frame presents the grid; it must not modify it
	Frame(g *rain.Grid) error
}

// Options configure a Loop
type Options struct {
	Interval       time.Duration
	DropRatio      float64
	GlitchFraction float64

	// OnTick runs after each update, on the loop goroutine
	OnTick func(g *rain.Grid)

	// Logger defaults to the standard logger
	Logger *log.Logger
}

type Loop struct {
	display Display
	engine  *rain.Engine
	signals *Signals
	grid    *rain.Grid
	opts    Options
	log     *log.Logger

	started bool
	frames  uint64
}

func NewLoop(d Display, e *rain.Engine, s *Signals, opts Options) *Loop {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Loop{
		display: d,
		engine:  e,
		signals: s,
		grid:    rain.NewGrid(),
		opts:    opts,
		log:     logger,
	}
}

// Grid exposes the simulation grid for inspection
func (l *Loop) Grid() *rain.Grid { return l.grid }

// Frames is the number of frames presented so far
func (l *Loop) Frames() uint64 { return l.frames }

// Start sizes the grid to the display and fills the backdrop
// No drops exist until the simulation replenishes them
func (l *Loop) Start() error {
	rows, cols, err := l.display.Size()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDimensions, err)
	}
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, cols, rows)
	}

	if err := l.grid.Resize(rows, cols, l.opts.DropRatio); err != nil {
		return fmt.Errorf("allocate grid %dx%d: %w", cols, rows, err)
	}
	l.engine.Fill(l.grid)
	l.started = true
	return nil
}

// Step renders one frame: glitch, present, update
func (l *Loop) Step() error {
	l.engine.Glitch(l.grid, l.opts.GlitchFraction)

	if err := l.display.Frame(l.grid); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	l.frames++

	l.engine.Update(l.grid)
	if l.opts.OnTick != nil {
		l.opts.OnTick(l.grid)
	}
	return nil
}

// Run drives frames until stop is requested or ctx ends, both of which
// return nil. Start is called first if it has not been.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started {
		if err := l.Start(); err != nil {
			return err
		}
	}

	timer := time.NewTimer(l.opts.Interval)
	defer timer.Stop()

	for {
		if l.signals.Stopped() || ctx.Err() != nil {
			return nil
		}
		if l.signals.takeResize() {
			l.resize()
		}

		if err := l.Step(); err != nil {
			return err
		}

		timer.Reset(l.opts.Interval)
		select {
		case <-timer.C:
		case <-l.signals.Wake():
		case <-ctx.Done():
		}
	}
}

// resize rebuilds the grid at the display's new size and reseeds drops
// A failed query or allocation keeps the current grid
func (l *Loop) resize() {
	rows, cols, err := l.display.Size()
	if err != nil {
		l.log.Printf("resize skipped: %v", err)
		return
	}
	if rows <= 0 || cols <= 0 {
		l.log.Printf("resize skipped: %dx%d", cols, rows)
		return
	}

	if err := l.grid.Resize(rows, cols, l.opts.DropRatio); err != nil {
		l.log.Printf("resize to %dx%d failed: %v", cols, rows, err)
		return
	}
	l.engine.Fill(l.grid)
	l.engine.Rain(l.grid)
}
