// Command connect4-cli drives the engine through a line-oriented text
// protocol on stdin and stdout.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/hailam/connect4play/internal/cli"
	"github.com/hailam/connect4play/internal/config"
	"github.com/hailam/connect4play/internal/engine"
	"github.com/hailam/connect4play/internal/storage"
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("config")
	}
	config.SetupLogger(os.Stderr, cfg.GetBool(config.Debug))
	log.Debug().Interface("settings", cfg.SanitizedSettings()).Msg("loaded config")

	if path := cfg.GetString(config.CPUProfile); path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", path).Msg("CPU profiling enabled")
	}

	opts, err := cfg.EngineOptions()
	if err != nil {
		log.Fatal().Err(err).Msg("engine options")
	}
	difficulty, err := cfg.DifficultyTier()
	if err != nil {
		log.Fatal().Err(err).Msg("difficulty")
	}
	eng := engine.NewEngine(opts)

	// Statistics are optional; the protocol works without them.
	var store *storage.Storage
	if dir, err := storage.DatabaseDir(cfg.GetString(config.DataDir)); err != nil {
		log.Warn().Err(err).Msg("no data directory, statistics disabled")
	} else if store, err = storage.Open(dir); err != nil {
		log.Warn().Err(err).Msg("could not open storage, statistics disabled")
		store = nil
	} else {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	protocol := cli.New(eng, store, os.Stdin, os.Stdout)
	protocol.SetDifficulty(difficulty)
	if err := protocol.Run(ctx); err != nil {
		log.Error().Err(err).Msg("input")
	}
}
