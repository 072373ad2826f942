package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/matrix-rain/audio"
	"github.com/lixenwraith/matrix-rain/config"
	"github.com/lixenwraith/matrix-rain/driver"
	"github.com/lixenwraith/matrix-rain/rain"
	"github.com/lixenwraith/matrix-rain/render"
	"github.com/lixenwraith/matrix-rain/server"
	"github.com/lixenwraith/matrix-rain/terminal"
)

const (
	version    = "0.3.0"
	projectURL = "https://github.com/lixenwraith/matrix-rain"
)

func main() {
	// Panic Recovery: Ensure terminal is reset even if the rain crashes
	defer func() {
		if r := recover(); r != nil {
			terminal.EmergencyReset(os.Stdout)

			fmt.Fprintf(os.Stderr, "\n\x1b[31mMATRIX-RAIN CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("matrix-rain", flag.ExitOnError)
	var flags config.Flags
	flags.Register(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: matrix-rain [options]\n\nDigital rain for the terminal.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if flags.Version {
		fmt.Printf("matrix-rain %s\n%s\n", version, projectURL)
		return 0
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "matrix-rain: %v\n", err)
		return 1
	}
	flags.Apply(fs, cfg)
	cfg.Clamp()

	if flags.WriteConfig != "" {
		if err := config.Save(flags.WriteConfig, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "matrix-rain: write config: %v\n", err)
			return 1
		}
		fmt.Printf("Configuration written to %s\n", flags.WriteConfig)
		return 0
	}

	logFile, err := setupLogging(cfg.LogFile, cfg.Listen != "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "matrix-rain: %v\n", err)
		return 1
	}
	if logFile != nil {
		defer logFile.Close()
	}

	palette := render.DefaultPalette()
	if indices := cfg.PaletteIndices(); indices != nil {
		if palette, err = render.FromIndices(indices); err != nil {
			fmt.Fprintf(os.Stderr, "matrix-rain: %v\n", err)
			return 1
		}
	}

	d := cfg.Derive()
	log.Printf("matrix-rain %s: speed=%d drops=%d error=%d seed=%d backend=%s color=%s",
		version, cfg.Speed, cfg.Drops, cfg.Error, d.Seed, cfg.Backend, cfg.Color)

	if cfg.Listen != "" {
		return serve(cfg, d, palette)
	}
	if cfg.Backend == config.BackendTcell {
		return runTcell(cfg, d, palette)
	}
	return runANSI(cfg, d, palette)
}

// setupLogging routes the standard logger
// The local display owns the screen, so without a file logs are discarded;
// the server logs to stderr
func setupLogging(path string, server bool) (*os.File, error) {
	if path == "" {
		if server {
			log.SetOutput(os.Stderr)
		} else {
			log.SetOutput(io.Discard)
		}
		return nil, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return f, nil
}

func runANSI(cfg *config.Config, d config.Derived, palette render.Palette) int {
	term := terminal.New()
	if err := term.Init(terminal.Options{Background: d.Background}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		return 1
	}
	// Normal exit terminal cleanup
	defer term.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := driver.NewSignals()
	driver.WatchOS(ctx, sig)
	term.SetResizeHandler(sig.NotifyResize)

	display := driver.NewTerminalDisplay(term, palette, terminal.ParseColorMode(cfg.Color))
	return runLoop(ctx, display, sig, cfg, d, palette, term.Fini)
}

func runTcell(cfg *config.Config, d config.Derived, palette render.Palette) int {
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		return 1
	}
	defer screen.Fini()

	base := tcell.StyleDefault
	if d.Background {
		base = base.Background(tcell.ColorBlack)
	}
	screen.SetStyle(base)
	screen.HideCursor()
	screen.Clear()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := driver.NewSignals()
	driver.WatchOS(ctx, sig)

	display := driver.NewTcellDisplay(screen, palette, d.Background)
	display.Watch(sig)
	return runLoop(ctx, display, sig, cfg, d, palette, screen.Fini)
}

// runLoop drives a local display; fini restores the screen before an
// error is printed
func runLoop(ctx context.Context, display driver.Display, sig *driver.Signals, cfg *config.Config, d config.Derived, palette render.Palette, fini func()) int {
	opts := driver.Options{
		Interval:       d.Interval,
		DropRatio:      d.DropRatio,
		GlitchFraction: d.GlitchFraction,
	}

	if cfg.Audio {
		ambience := audio.NewAmbience(audio.DefaultVolume, d.Seed)
		if err := ambience.Initialize(); err != nil {
			log.Printf("audio unavailable, continuing without: %v", err)
		} else {
			defer ambience.Cleanup()
			opts.OnTick = ambience.Observe
		}
	}

	loop := driver.NewLoop(display, rain.NewEngine(d.Seed, palette.Len()), sig, opts)
	if err := loop.Run(ctx); err != nil {
		fini()
		fmt.Fprintf(os.Stderr, "matrix-rain: %v\n", err)
		return 1
	}
	log.Printf("stopped after %d frames", loop.Frames())
	return 0
}

func serve(cfg *config.Config, d config.Derived, palette render.Palette) int {
	srv, err := server.New(server.Options{
		Addr:    cfg.Listen,
		HostKey: cfg.HostKey,
		Palette: palette,
		Color:   cfg.Color,
		Rain:    d,
		Logger:  log.Default(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "matrix-rain: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := driver.NewSignals()
	driver.WatchOS(ctx, sig)
	go func() {
		<-sig.Wake()
		log.Printf("shutting down, %d sessions open", srv.Active())
		srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "matrix-rain: %v\n", err)
		return 1
	}
	return 0
}
