package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	appDir         = "matrix-rain"
	configFileName = "config.toml"
)

func xdg(pathEnv, fallback string) string {
	if v := os.Getenv(pathEnv); v != "" {
		return v
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, fallback)
}

// DefaultPath is $XDG_CONFIG_HOME/matrix-rain/config.toml
func DefaultPath() string {
	return filepath.Join(xdg("XDG_CONFIG_HOME", ".config"), appDir, configFileName)
}

// Load decodes the file at path over the defaults
// An empty path means DefaultPath, which may be absent; an explicit path
// must exist. Unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	st, err := os.Stat(path)
	switch {
	case err != nil && !explicit && errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrConfigFile, err)
	case st.IsDir():
		return nil, fmt.Errorf("%w: %s is a directory", ErrConfigFile, path)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigFile, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s: unknown keys %s", ErrConfigFile, path, strings.Join(keys, ", "))
	}

	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories
// The file is replaced atomically through a temporary sibling
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
