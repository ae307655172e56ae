// Package config loads settings from flags, environment variables and an
// optional config file.
package config

import (
	"encoding/hex"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hailam/connect4play/internal/engine"
)

// Setting keys. Each is also a command-line flag and, upper-cased with
// dashes turned into underscores, an environment variable with the
// CONNECT4_ prefix.
const (
	ConfigFile = "config"
	HashSize   = "hash-size"
	Threads    = "threads"
	Difficulty = "difficulty"
	Debug      = "debug"
	DataDir    = "data-dir"
	CPUProfile = "cpu-profile"
	Seed       = "seed"
	MoveTime   = "move-time"
)

const envPrefix = "CONNECT4"

type Config struct {
	viper.Viper
}

// Load parses args and merges them over the environment, the config file
// named by --config and the defaults, in that order of precedence.
func (c *Config) Load(args []string) error {
	fs := pflag.NewFlagSet("connect4", pflag.ContinueOnError)
	fs.String(ConfigFile, "", "path to a YAML, TOML or JSON config file")
	fs.Uint64(HashSize, 0, "transposition table slots (0 sizes it from system memory)")
	fs.Int(Threads, runtime.NumCPU(), "root-split search workers")
	fs.String(Difficulty, engine.Medium.String(), "difficulty tier: beginner, easy, medium, hard or impossible")
	fs.Bool(Debug, false, "debug logging")
	fs.String(DataDir, "", "directory for the preferences database (default: platform data dir)")
	fs.String(CPUProfile, "", "write a CPU profile to this file")
	fs.String(Seed, "", "hex seed for deterministic move selection")
	fs.Duration(MoveTime, 0, "per-move time limit overriding the tier's (0 keeps the tier's)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c.Viper = *viper.New()
	c.SetEnvPrefix(envPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	if path := c.GetString(ConfigFile); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return nil
}

// DifficultyTier returns the configured tier.
func (c *Config) DifficultyTier() (engine.Difficulty, error) {
	return engine.ParseDifficulty(c.GetString(Difficulty))
}

// SeedBytes decodes the hex seed. It returns nil when no seed is set.
func (c *Config) SeedBytes() ([]byte, error) {
	s := c.GetString(Seed)
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bad %s %q: %w", Seed, s, err)
	}
	return b, nil
}

// EngineOptions builds engine options from the settings.
func (c *Config) EngineOptions() (engine.Options, error) {
	seed, err := c.SeedBytes()
	if err != nil {
		return engine.Options{}, err
	}
	opts := engine.Options{
		TTCapacity: c.GetUint64(HashSize),
		Threads:    c.GetInt(Threads),
		MoveTime:   c.GetDuration(MoveTime),
	}
	if seed != nil {
		opts.Rand = engine.NewRandSource(seed)
	}
	return opts, nil
}

// SanitizedSettings returns every setting for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
