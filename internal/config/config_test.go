package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/hailam/connect4play/internal/engine"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.NoErr(cfg.Load(nil))

	is.Equal(cfg.GetUint64(HashSize), uint64(0))
	is.Equal(cfg.GetBool(Debug), false)
	d, err := cfg.DifficultyTier()
	is.NoErr(err)
	is.Equal(d, engine.Medium)

	seed, err := cfg.SeedBytes()
	is.NoErr(err)
	is.True(seed == nil)
}

func TestFlags(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--threads", "3", "--difficulty", "hard", "--move-time", "250ms", "--seed", "00ff"}))

	opts, err := cfg.EngineOptions()
	is.NoErr(err)
	is.Equal(opts.Threads, 3)
	is.Equal(opts.MoveTime, 250*time.Millisecond)
	is.True(opts.Rand != nil)

	d, err := cfg.DifficultyTier()
	is.NoErr(err)
	is.Equal(d, engine.Hard)
}

func TestEnvironment(t *testing.T) {
	is := is.New(t)
	t.Setenv("CONNECT4_HASH_SIZE", "1021")
	t.Setenv("CONNECT4_DIFFICULTY", "easy")

	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--difficulty", "impossible"}))

	is.Equal(cfg.GetUint64(HashSize), uint64(1021))
	// Flags win over the environment.
	is.Equal(cfg.GetString(Difficulty), "impossible")
}

func TestConfigFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "connect4.yaml")
	is.NoErr(os.WriteFile(path, []byte("threads: 5\ndifficulty: beginner\ndebug: true\n"), 0o644))
	t.Setenv("CONNECT4_THREADS", "2")

	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--config", path}))

	is.Equal(cfg.GetBool(Debug), true)
	is.Equal(cfg.GetString(Difficulty), "beginner")
	// The environment wins over the file.
	is.Equal(cfg.GetInt(Threads), 2)
}

func TestErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg := &Config{}
		if err := cfg.Load([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
			t.Error("expected an error for a missing config file")
		}
	})
	t.Run("unknown flag", func(t *testing.T) {
		cfg := &Config{}
		if err := cfg.Load([]string{"--bogus"}); err == nil {
			t.Error("expected an error for an unknown flag")
		}
	})
	t.Run("bad seed", func(t *testing.T) {
		cfg := &Config{}
		if err := cfg.Load([]string{"--seed", "zz"}); err != nil {
			t.Fatal(err)
		}
		if _, err := cfg.EngineOptions(); err == nil {
			t.Error("expected an error for a non-hex seed")
		}
	})
	t.Run("bad difficulty", func(t *testing.T) {
		cfg := &Config{}
		if err := cfg.Load([]string{"--difficulty", "grandmaster"}); err != nil {
			t.Fatal(err)
		}
		if _, err := cfg.DifficultyTier(); err == nil {
			t.Error("expected an error for an unknown tier")
		}
	})
}
