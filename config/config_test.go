package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestClampFactors(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"unset", 0, SpeedDefault},
		{"negative", -5, FactorMin},
		{"low", 1, 1},
		{"mid", 42, 42},
		{"high", 100, 100},
		{"over", 1000, FactorMax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Speed: tt.in}
			c.Clamp()
			if c.Speed != tt.want {
				t.Errorf("Expected speed %d, got %d", tt.want, c.Speed)
			}
		})
	}
}

func TestClampNames(t *testing.T) {
	c := &Config{Backend: "curses", Color: "16"}
	c.Clamp()
	if c.Backend != BackendANSI {
		t.Errorf("Expected backend %q, got %q", BackendANSI, c.Backend)
	}
	if c.Color != ColorAuto {
		t.Errorf("Expected color %q, got %q", ColorAuto, c.Color)
	}

	c = &Config{Backend: BackendTcell, Color: ColorTrueColor}
	c.Clamp()
	if c.Backend != BackendTcell || c.Color != ColorTrueColor {
		t.Error("Valid names were rewritten")
	}
}

func TestClampPalette(t *testing.T) {
	tests := []struct {
		name    string
		palette []int
		keep    bool
	}{
		{"nil", nil, false},
		{"single", []int{15}, false},
		{"range", []int{15, 300}, false},
		{"negative", []int{-1, 46}, false},
		{"ok", []int{15, 46, 22}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			c.Palette = tt.palette
			c.Clamp()
			if (c.Palette != nil) != tt.keep {
				t.Errorf("Expected keep=%v, got palette %v", tt.keep, c.Palette)
			}
		})
	}
}

func TestPaletteIndices(t *testing.T) {
	c := Default()
	if c.PaletteIndices() != nil {
		t.Error("Expected nil indices for unset palette")
	}

	c.Palette = []int{231, 48}
	got := c.PaletteIndices()
	if len(got) != 2 || got[0] != 231 || got[1] != 48 {
		t.Errorf("Unexpected indices %v", got)
	}
}

func TestDeriveDefaults(t *testing.T) {
	c := Default()
	c.Seed = 7
	d := c.Derive()

	if d.Interval != 100*time.Millisecond {
		t.Errorf("Expected 100ms interval, got %v", d.Interval)
	}
	if d.DropRatio != 0.01 {
		t.Errorf("Expected drop ratio 0.01, got %v", d.DropRatio)
	}
	if d.GlitchFraction != 0.02 {
		t.Errorf("Expected glitch fraction 0.02, got %v", d.GlitchFraction)
	}
	if d.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", d.Seed)
	}
}

func TestDeriveBounds(t *testing.T) {
	c := &Config{Speed: 100, Drops: 100, Error: 100}
	d := c.Derive()
	if d.Interval != 10*time.Millisecond {
		t.Errorf("Expected 10ms interval, got %v", d.Interval)
	}
	if d.DropRatio != 0.1 {
		t.Errorf("Expected drop ratio 0.1, got %v", d.DropRatio)
	}
	if d.GlitchFraction != 1 {
		t.Errorf("Expected glitch fraction 1, got %v", d.GlitchFraction)
	}

	// Unclamped zero speed must not divide by zero
	if (&Config{}).Derive().Interval != 100*time.Millisecond {
		t.Error("Expected default interval for zero speed")
	}
}

func TestDeriveTimeSeed(t *testing.T) {
	if Default().Derive().Seed == 0 {
		t.Error("Expected time-based seed when seed is 0")
	}
}

func TestLoadMissingDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c, err := Load("")
	if err != nil {
		t.Fatalf("Expected defaults for missing default file, got %v", err)
	}
	if c.Speed != SpeedDefault || c.Backend != BackendANSI {
		t.Errorf("Unexpected config %+v", c)
	}
}

func TestLoadMissingExplicit(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, ErrConfigFile) {
		t.Errorf("Expected ErrConfigFile, got %v", err)
	}
}

func TestLoadDirectory(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, ErrConfigFile) {
		t.Errorf("Expected ErrConfigFile for directory, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := DefaultPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	data := `
speed = 25
drops = 40
seed = 99
background = true
palette = [15, 46, 34, 28]
backend = "tcell"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Speed != 25 || c.Drops != 40 || c.Seed != 99 || !c.Background {
		t.Errorf("Unexpected factors %+v", c)
	}
	// Keys absent from the file keep their defaults
	if c.Error != ErrorDefault || c.Color != ColorAuto {
		t.Errorf("Expected defaults for absent keys, got %+v", c)
	}
	if c.Backend != BackendTcell || len(c.Palette) != 4 {
		t.Errorf("Unexpected backend or palette %+v", c)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "speed = = 3"},
		{"type", `speed = "fast"`},
		{"unknown", "sped = 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.toml")
			os.WriteFile(path, []byte(tt.data), 0o644)
			if _, err := Load(path); !errors.Is(err, ErrConfigFile) {
				t.Errorf("Expected ErrConfigFile, got %v", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	want := Default()
	want.Speed = 33
	want.Seed = 1234
	want.Palette = []int{231, 48, 41}
	want.Listen = ":2222"

	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file left behind")
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Speed != 33 || got.Seed != 1234 || got.Listen != ":2222" || len(got.Palette) != 3 {
		t.Errorf("Expected saved values, got %+v", got)
	}
}

func TestFlagsOverrideOnlySet(t *testing.T) {
	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f.Register(fs)

	if err := fs.Parse([]string{"-s", "50", "-b", "-backend", "tcell", "-config", "x.toml"}); err != nil {
		t.Fatal(err)
	}

	c := Default()
	c.Drops = 70 // from a file
	f.Apply(fs, c)

	if c.Speed != 50 || !c.Background || c.Backend != BackendTcell {
		t.Errorf("Expected flag values applied, got %+v", c)
	}
	if c.Drops != 70 {
		t.Errorf("Unset flag overrode file value: drops %d", c.Drops)
	}
	if f.ConfigPath != "x.toml" {
		t.Errorf("Expected config path x.toml, got %q", f.ConfigPath)
	}
}

func TestFlagsSeedAndVersion(t *testing.T) {
	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f.Register(fs)

	if err := fs.Parse([]string{"-r", "18446744073709551615", "-V"}); err != nil {
		t.Fatal(err)
	}
	c := Default()
	f.Apply(fs, c)

	if c.Seed != ^uint64(0) {
		t.Errorf("Expected max seed, got %d", c.Seed)
	}
	if !f.Version {
		t.Error("Expected version flag")
	}
}
