// Package config holds scanner settings and the signatures an aobscan run resolves
package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"sigscan/memory"
	"sigscan/module"
	"sigscan/pattern"
)

// Signature modes
const (
	ModeDeref    = "deref"    // stored pointer at match+offset, relative to the image, plus extra
	ModeRelative = "relative" // RIP-relative displacement at match+offset, instruction length extra
	ModeMatch    = "match"    // offset of the match itself
)

type Config struct {
	Scanner    Scanner     `toml:"scanner"`
	Output     Output      `toml:"output"`
	Signatures []Signature `toml:"signature"`
}

type Scanner struct {
	ChunkSize       uint `toml:"chunk_size"`
	MaxDOP          uint `toml:"max_dop"`
	MaxStringLength int  `toml:"max_string_length"`
	PointerSize     int  `toml:"pointer_size"`
}

type Output struct {
	Color   bool `toml:"color"`
	Context uint `toml:"context"` // Bytes of hexdump context around each match, 0 disables
}

// Signature is one pattern to resolve inside one module
type Signature struct {
	Name    string `toml:"name"`
	Module  string `toml:"module"`
	Pattern string `toml:"pattern"`
	Offset  int    `toml:"offset"`
	Extra   uint64 `toml:"extra"`
	Mode    string `toml:"mode"`
}

func Default() Config {
	return Config{
		Scanner: Scanner{
			ChunkSize:       uint(pattern.DefaultChunkSize),
			MaxDOP:          1,
			MaxStringLength: module.DefaultMaxStringLength,
		},
		Output: Output{
			Color:   true,
			Context: 16,
		},
	}
}

// Load decodes a TOML file over the defaults
func Load(path string) (Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks settings and parses every signature pattern
func (c *Config) Validate() error {
	if c.Scanner.ChunkSize == 0 {
		return errors.New("scanner.chunk_size must be positive")
	}
	if c.Scanner.MaxStringLength <= 0 {
		return errors.New("scanner.max_string_length must be positive")
	}
	switch c.Scanner.PointerSize {
	case 0, 4, 8:
	default:
		return fmt.Errorf("scanner.pointer_size must be 4 or 8, got %d", c.Scanner.PointerSize)
	}

	for i := range c.Signatures {
		sig := &c.Signatures[i]

		if sig.Mode == "" {
			sig.Mode = ModeDeref
		}
		switch sig.Mode {
		case ModeDeref, ModeRelative, ModeMatch:
		default:
			return fmt.Errorf("signature %d (%s): unknown mode %q", i, sig.Name, sig.Mode)
		}

		if _, err := pattern.Parse(sig.Pattern); err != nil {
			return fmt.Errorf("signature %d (%s): %w", i, sig.Name, err)
		}
	}

	return nil
}

// ScannerOptions returns the pattern scanner settings
func (c *Config) ScannerOptions() []pattern.Option {
	return []pattern.Option{
		pattern.WithChunkSize(memory.Size(c.Scanner.ChunkSize)),
		pattern.WithMaxDOP(c.Scanner.MaxDOP),
	}
}

// ModuleOptions returns the module descriptor settings
func (c *Config) ModuleOptions() []module.Option {
	options := []module.Option{
		module.WithScanner(pattern.NewScanner(c.ScannerOptions()...)),
		module.WithMaxStringLength(c.Scanner.MaxStringLength),
	}
	if c.Scanner.PointerSize != 0 {
		options = append(options, module.WithPointerSize(c.Scanner.PointerSize))
	}
	return options
}
