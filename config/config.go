// Package config loads the executor's runtime configuration from a TOML
// file, following the same naoina/toml decoding conventions the teacher
// node uses for its own config files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"github.com/pkg/errors"

	"github.com/taikoxyz/taiko-geth-executor/params"
)

// tomlSettings keeps TOML keys identical to the Go struct field names,
// rather than naoina's default lower-casing.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) {
			link = fmt.Sprintf(" (see %s)", rt.String())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// Config holds the executor's runtime knobs: which chain's fork schedule
// to run against and the two execution-mode flags the strategy reads on
// every block.
type Config struct {
	Chain        string // one of "a7", "dev", "mainnet"
	Optimistic   bool
	EnableAnchor bool
}

// DefaultConfig mirrors the executor's conservative defaults: strict
// (non-optimistic) validation with anchor checking enabled, against the
// Taiko mainnet schedule.
var DefaultConfig = Config{
	Chain:        "mainnet",
	Optimistic:   false,
	EnableAnchor: true,
}

// Load reads and decodes a TOML config file, starting from DefaultConfig
// so any field the file omits keeps its default value.
func Load(path string) (Config, error) {
	cfg := DefaultConfig

	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "open config file")
	}
	defer f.Close()

	if err := tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg); err != nil {
		if _, ok := err.(*toml.LineError); ok {
			return cfg, errors.Wrap(err, path)
		}
		return cfg, errors.Wrap(err, "decode config file")
	}
	return cfg, nil
}

// Schedule resolves the configured chain name to its hardfork schedule.
func (c Config) Schedule() (*params.Schedule, error) {
	switch c.Chain {
	case "a7":
		return params.A7Schedule(), nil
	case "dev":
		return params.DevSchedule(), nil
	case "mainnet", "":
		return params.MainnetSchedule(), nil
	default:
		return nil, fmt.Errorf("config: unknown chain %q", c.Chain)
	}
}
