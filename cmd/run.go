package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iburimskiy/systemmap/internal/chime"
	"github.com/iburimskiy/systemmap/internal/config"
	"github.com/iburimskiy/systemmap/internal/game"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the system map window",
	RunE:  runWindow,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var ch *chime.Chime
	if cfg.Sound.Enabled {
		// Sound is decoration; run silent when the device is unavailable.
		ch, err = chime.New(cfg.Sound, logger.Named("chime"))
		if err != nil {
			logger.Warn("chime disabled", zap.Error(err))
			ch = nil
		}
	}

	g := game.New(game.Options{
		Config:     cfg,
		ConfigPath: cfgFile,
		Logger:     logger,
		Chime:      ch,
	})
	defer g.Shutdown()

	if cfg.Dev.HotReload {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		w, err := config.Watch(ctx, cfgFile, logger.Named("config"), g.Reload)
		if err != nil {
			logger.Warn("hot reload disabled", zap.Error(err))
		} else {
			defer w.Close()
		}
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	if cfg.Window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetVsyncEnabled(true)
	// One Update per displayed frame.
	ebiten.SetTPS(ebiten.SyncWithFPS)

	logger.Info("opening window",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Bool("hot_reload", cfg.Dev.HotReload),
		zap.Bool("sound", ch != nil))

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		_ = zenity.Error(err.Error(), zenity.Title("systemmap"), zenity.ErrorIcon)
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}
