package config

import (
	"flag"
)

// Flags binds command-line options to a FlagSet
// Values parsed here override the file only for flags actually given
type Flags struct {
	ConfigPath  string
	WriteConfig string
	Version     bool

	values Config
}

// Register defines every option on fs
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "configuration file (default "+DefaultPath()+")")
	fs.StringVar(&f.WriteConfig, "write-config", "", "write the effective configuration to `path` and exit")
	fs.BoolVar(&f.Version, "V", false, "print version and exit")

	fs.BoolVar(&f.values.Background, "b", false, "paint a black background")
	fs.IntVar(&f.values.Drops, "d", DropsDefault, "drops `factor` (1-100)")
	fs.IntVar(&f.values.Error, "e", ErrorDefault, "error (glitch) `factor` (1-100)")
	fs.Uint64Var(&f.values.Seed, "r", 0, "random `seed`, 0 uses the current time")
	fs.IntVar(&f.values.Speed, "s", SpeedDefault, "speed `factor` (1-100)")

	fs.StringVar(&f.values.Backend, "backend", BackendANSI, "display backend: ansi, tcell")
	fs.StringVar(&f.values.Color, "color", ColorAuto, "color mode: auto, 256, truecolor")
	fs.BoolVar(&f.values.Audio, "audio", false, "play rain ambience")
	fs.StringVar(&f.values.LogFile, "log", "", "write logs to `file`")

	fs.StringVar(&f.values.Listen, "listen", "", "serve rain over SSH on `addr` instead of the local terminal")
	fs.StringVar(&f.values.HostKey, "hostkey", "", "SSH host key `file`")
}

// Apply copies the options set on fs into c
func (f *Flags) Apply(fs *flag.FlagSet, c *Config) {
	v := &f.values
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "b":
			c.Background = v.Background
		case "d":
			c.Drops = v.Drops
		case "e":
			c.Error = v.Error
		case "r":
			c.Seed = v.Seed
		case "s":
			c.Speed = v.Speed
		case "backend":
			c.Backend = v.Backend
		case "color":
			c.Color = v.Color
		case "audio":
			c.Audio = v.Audio
		case "log":
			c.LogFile = v.LogFile
		case "listen":
			c.Listen = v.Listen
		case "hostkey":
			c.HostKey = v.HostKey
		}
	})
}
