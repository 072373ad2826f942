// Package config resolves run settings from defaults, a TOML file and flags
package config

import (
	"errors"
	"time"
)

var ErrConfigFile = errors.New("config: invalid configuration file")

// Factor bounds; 0 in a factor field means unset
const (
	FactorMin = 1
	FactorMax = 100

	SpeedDefault = 10
	DropsDefault = 10
	ErrorDefault = 2
)

// Factor scales applied by Derive
const (
	dropRatioScale = 0.001
	glitchScale    = 0.01
)

// Palette length bounds, head first
const (
	PaletteMin = 2
	PaletteMax = 64
)

// Backend and color mode names accepted by Clamp
const (
	BackendANSI  = "ansi"
	BackendTcell = "tcell"

	ColorAuto      = "auto"
	Color256       = "256"
	ColorTrueColor = "truecolor"
)

// Config is the user-facing configuration
// Rain behavior is expressed in integer factors; Derive turns them into
// loop and engine parameters
type Config struct {
	Speed      int    `toml:"speed"`
	Drops      int    `toml:"drops"`
	Error      int    `toml:"error"`
	Seed       uint64 `toml:"seed"`
	Background bool   `toml:"background"`
	Palette    []int  `toml:"palette"`

	Backend string `toml:"backend"`
	Color   string `toml:"color"`
	Audio   bool   `toml:"audio"`
	LogFile string `toml:"log_file"`

	Listen  string `toml:"listen"`
	HostKey string `toml:"host_key"`
}

// Derived holds the values the driving loop consumes
type Derived struct {
	Interval       time.Duration
	DropRatio      float64
	GlitchFraction float64
	Seed           uint64
	Background     bool
}

func Default() *Config {
	return &Config{
		Speed:   SpeedDefault,
		Drops:   DropsDefault,
		Error:   ErrorDefault,
		Backend: BackendANSI,
		Color:   ColorAuto,
	}
}

// Clamp brings every field into range in place
// Unset factors take their default, out-of-range factors are pinned to the
// nearest bound, unknown names fall back to the default and an unusable
// palette is dropped
func (c *Config) Clamp() {
	c.Speed = clampFactor(c.Speed, SpeedDefault)
	c.Drops = clampFactor(c.Drops, DropsDefault)
	c.Error = clampFactor(c.Error, ErrorDefault)

	switch c.Backend {
	case BackendANSI, BackendTcell:
	default:
		c.Backend = BackendANSI
	}

	switch c.Color {
	case ColorAuto, Color256, ColorTrueColor:
	default:
		c.Color = ColorAuto
	}

	if !validPalette(c.Palette) {
		c.Palette = nil
	}
}

func clampFactor(v, def int) int {
	if v == 0 {
		return def
	}
	return min(max(v, FactorMin), FactorMax)
}

func validPalette(p []int) bool {
	if len(p) < PaletteMin || len(p) > PaletteMax {
		return false
	}
	for _, v := range p {
		if v < 0 || v > 255 {
			return false
		}
	}
	return true
}

// PaletteIndices returns the palette as xterm-256 indices, nil when unset
func (c *Config) PaletteIndices() []uint8 {
	if len(c.Palette) == 0 {
		return nil
	}
	out := make([]uint8, len(c.Palette))
	for i, v := range c.Palette {
		out[i] = uint8(v)
	}
	return out
}

// Derive computes loop parameters, expected on a clamped config
// A zero seed is replaced by the current time
func (c *Config) Derive() Derived {
	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return Derived{
		Interval:       time.Second / time.Duration(clampFactor(c.Speed, SpeedDefault)),
		DropRatio:      dropRatioScale * float64(c.Drops),
		GlitchFraction: glitchScale * float64(c.Error),
		Seed:           seed,
		Background:     c.Background,
	}
}
