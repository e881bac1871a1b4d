// Package config loads the optional cigen YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-cigen/pkg/travis"
)

// Config is the resolved generator configuration.
type Config struct {
	Dir      string
	Filename string
	First    int
	Last     int
	// Template is a path to a custom template; empty selects the embedded one.
	Template string
	// Vars are template globals; the builders binding always wins over them.
	Vars map[string]any
}

type fileConfig struct {
	Dir      string         `yaml:"dir"`
	Filename string         `yaml:"filename"`
	First    *int           `yaml:"first"`
	Last     *int           `yaml:"last"`
	Template string         `yaml:"template"`
	Vars     map[string]any `yaml:"vars"`
}

// Default returns the zero-argument configuration: builders 1..24 written to
// ./.travis.yml from the embedded template.
func Default() Config {
	return Config{
		Dir:      ".",
		Filename: travis.DefaultFilename,
		First:    travis.DefaultFirst,
		Last:     travis.DefaultLast,
	}
}

// Load reads path on top of Default. Relative dir and template entries are
// resolved against the directory holding the file.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	var raw fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	base := filepath.Dir(path)
	if dir := strings.TrimSpace(raw.Dir); dir != "" {
		cfg.Dir = resolve(base, dir)
	}
	if name := strings.TrimSpace(raw.Filename); name != "" {
		cfg.Filename = name
	}
	if raw.First != nil {
		cfg.First = *raw.First
	}
	if raw.Last != nil {
		cfg.Last = *raw.Last
	}
	if tpl := strings.TrimSpace(raw.Template); tpl != "" {
		cfg.Template = resolve(base, tpl)
	}
	cfg.Vars = raw.Vars

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects builder ranges the generator would have to truncate.
func (c Config) Validate() error {
	return travis.CheckRange(c.First, c.Last)
}

// Params returns the builders binding for the configured range. Vars are
// passed to the generator as globals, see travis.WithGlobals.
func (c Config) Params() travis.Params {
	return travis.Params{Builders: travis.Range(c.First, c.Last)}
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
