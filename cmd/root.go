package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iburimskiy/systemmap/internal/config"
	"github.com/iburimskiy/systemmap/internal/logging"
)

var (
	cfgFile string
	verbose bool
	seed    uint64
	nodes   int
)

var rootCmd = &cobra.Command{
	Use:   "systemmap",
	Short: "Animated system map hero for the LEACT brand page",
	Long: `systemmap opens a window with the LEACT hero: drifting nodes, the links
between them and pulses travelling along those links, with the cycling
phrase strip and section navigation drawn on top.

Running it without a subcommand is the same as "systemmap run".`,
	SilenceUsage: true,
	RunE:         runWindow,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "systemmap.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "random seed (0 uses the config value, then the clock)")
	rootCmd.PersistentFlags().IntVar(&nodes, "nodes", 0, "node count override")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if seed != 0 {
		cfg.Animator.Seed = seed
	}
	if nodes != 0 {
		cfg.Animator.Nodes = nodes
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Development)
}
