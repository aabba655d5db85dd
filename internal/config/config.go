// Package config loads the match server's TOML configuration file into a
// typed struct, the way the teacher's game configs load YAML into typed
// structs: a small set of fields with documented defaults, applied before
// the file is parsed so a sparse file still yields a complete Config.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full set of knobs the match server reads from its TOML
// file, named on the command line.
type Config struct {
	// Addr is the bind address for the game protocol listener.
	Addr string `toml:"addr"`
	// Port is the bind port for the game protocol listener.
	Port int `toml:"port"`
	// Variants is the allow-list of variant tags CreateOrJoin may host;
	// joining is not checked against it. An empty list means every
	// variant is allowed; use [1] to allow only the standard variant.
	Variants []int64 `toml:"variants"`
	// AllowResetPuzzle controls whether a session may send the
	// ResetPuzzle action type during a match.
	AllowResetPuzzle bool `toml:"allow_reset_puzzle"`
	// Trace switches the server's logger to debug level.
	Trace bool `toml:"trace"`

	// AdminAddr, if non-empty, is the host:port the SSH admin console
	// listens on. Empty disables the admin console entirely.
	AdminAddr string `toml:"admin_addr"`
	// PerTurnTimeoutSeconds is the inactivity deadline armed while a
	// session is InMatch, reset whenever an action is relayed in either
	// direction. Zero disables the timeout.
	PerTurnTimeoutSeconds int `toml:"per_turn_timeout_seconds"`
	// RelayBufferSize is the channel capacity of the bounded relay pair
	// vended to each side of a pairing at match start.
	RelayBufferSize int `toml:"relay_buffer_size"`
	// HistoryCapacity bounds the Lobby's in-memory finished-match ring.
	// Capped at wire.MatchListSlots regardless of the configured value.
	HistoryCapacity int `toml:"history_capacity"`
	// OpenPublicCapacity bounds the Lobby's open-public-matches list.
	// Capped at wire.MatchListSlots regardless of the configured value.
	OpenPublicCapacity int `toml:"open_public_capacity"`
}

// Default returns the configuration used when a field is left unset in
// the TOML file.
func Default() Config {
	return Config{
		Addr:                  "0.0.0.0",
		Port:                  39005,
		Variants:              []int64{1},
		AllowResetPuzzle:      false,
		Trace:                 false,
		AdminAddr:             "",
		PerTurnTimeoutSeconds: 0,
		RelayBufferSize:       16,
		HistoryCapacity:       13,
		OpenPublicCapacity:    13,
	}
}

// Load reads the TOML file at path, applies it on top of Default, and
// validates the result. A field missing from the file keeps its default
// value; a field present in the file, even an empty one, replaces it.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.RelayBufferSize <= 0 {
		return fmt.Errorf("relay_buffer_size must be positive: %d", c.RelayBufferSize)
	}
	if c.HistoryCapacity <= 0 {
		return fmt.Errorf("history_capacity must be positive: %d", c.HistoryCapacity)
	}
	if c.HistoryCapacity > wireMatchListSlots {
		c.HistoryCapacity = wireMatchListSlots
	}
	if c.OpenPublicCapacity <= 0 {
		return fmt.Errorf("open_public_capacity must be positive: %d", c.OpenPublicCapacity)
	}
	if c.OpenPublicCapacity > wireMatchListSlots {
		c.OpenPublicCapacity = wireMatchListSlots
	}
	return nil
}

// wireMatchListSlots mirrors wire.MatchListSlots without importing the
// wire package, keeping config free of a protocol-layer dependency.
const wireMatchListSlots = 13
