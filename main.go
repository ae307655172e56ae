// Connect4Play - Connect-Four against a perfect-play engine, built with Ebitengine
package main

import (
	"errors"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/hailam/connect4play/internal/config"
	"github.com/hailam/connect4play/internal/engine"
	"github.com/hailam/connect4play/internal/storage"
	"github.com/hailam/connect4play/internal/ui"
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

	opts, err := cfg.EngineOptions()
	if err != nil {
		log.Fatal().Err(err).Msg("engine options")
	}
	difficulty, err := cfg.DifficultyTier()
	if err != nil {
		log.Fatal().Err(err).Msg("difficulty")
	}

	var store *storage.Storage
	if dir, err := storage.DatabaseDir(cfg.GetString(config.DataDir)); err != nil {
		log.Warn().Err(err).Msg("no data directory, preferences will not be saved")
	} else if store, err = storage.Open(dir); err != nil {
		log.Warn().Err(err).Msg("could not open storage, preferences will not be saved")
		store = nil
	} else {
		defer store.Close()
	}

	game := ui.NewGame(ui.Options{
		Engine:     engine.NewEngine(opts),
		Storage:    store,
		Difficulty: difficulty,
	})
	defer game.Close()

	ebiten.SetWindowSize(ui.ScreenWidth, ui.ScreenHeight)
	ebiten.SetWindowTitle("Connect4Play")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error().Err(err).Msg("game loop")
	}
}
