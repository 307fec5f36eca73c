package bench

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nStangl/stophash/server/hashtable"
	"github.com/nStangl/stophash/server/loader"
	"github.com/nStangl/stophash/server/memtable"
)

type Config struct {
	Input      string `toml:"input"`
	Format     string `toml:"format"`
	Synthetic  int    `toml:"synthetic"`
	Capacity   int    `toml:"capacity"`
	Prime      bool   `toml:"prime"`
	Hasher     string `toml:"hasher"`
	Duplicates string `toml:"duplicates"`
	Rounds     int    `toml:"rounds"`
	Containers string `toml:"containers"`
	SampleKey  string `toml:"sample_key"`
	DumpStart  int    `toml:"dump_start"`
	DumpLimit  int    `toml:"dump_limit"`
	Bins       int    `toml:"bins"`
	CSVOutput  string `toml:"csv_output"`
	Loglevel   string `toml:"loglevel"`
}

var ErrInvalidConfig = errors.New("config invalid")

func DefaultConfig() Config {
	return Config{
		Capacity:   5003,
		Hasher:     hashtable.DefaultHasher,
		Duplicates: hashtable.ProbePast.String(),
		Rounds:     5,
		Containers: strings.Join([]string{memtable.MapName, memtable.ProbingName}, ","),
		SampleKey:  "10036",
		DumpStart:  20,
		DumpLimit:  25,
		Bins:       5,
		Loglevel:   "INFO",
	}
}

// DecodeFile overwrites the fields of c named in the TOML file at path
func (c *Config) DecodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%w: unknown keys %v in %s", ErrInvalidConfig, undecoded, path)
	}

	return nil
}

func (c *Config) Validate() error {
	switch {
	case c.Input == "" && c.Synthetic <= 0:
		return fmt.Errorf("%w: need an input file or a synthetic record count", ErrInvalidConfig)
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity %d", ErrInvalidConfig, c.Capacity)
	case c.Rounds < 0:
		return fmt.Errorf("%w: rounds %d", ErrInvalidConfig, c.Rounds)
	case c.DumpStart < 0 || c.DumpLimit < 0:
		return fmt.Errorf("%w: dump window [%d, +%d)", ErrInvalidConfig, c.DumpStart, c.DumpLimit)
	case c.Bins <= 0:
		return fmt.Errorf("%w: bins %d", ErrInvalidConfig, c.Bins)
	}

	if _, err := hashtable.Options(c.Hasher, c.Duplicates); err != nil {
		return err
	}

	if c.Input != "" && c.Format != "" {
		if _, err := loader.ParseFormat(c.Format); err != nil {
			return err
		}
	}

	for _, n := range c.ContainerNames() {
		if _, err := memtable.FactoryFor(n, nil); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) ContainerNames() []string {
	var names []string

	for _, n := range strings.Split(c.Containers, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	return names
}

func (c *Config) InputFormat() (loader.Format, error) {
	if c.Format == "" {
		return loader.FormatFromPath(c.Input), nil
	}

	return loader.ParseFormat(c.Format)
}
