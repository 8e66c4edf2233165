// astrds is a vector asteroids game for the terminal.
//
// Usage:
//
//	astrds              - Play in this terminal
//	astrds scores       - Show stored high scores
//
// Global flags:
//
//	--config <path> - Settings YAML (default: search ~/.astrds, ./configs, built-in)
//	--db <path>     - High score database (default: ~/.astrds/scores.db)
//	--seed <value>  - RNG seed for reproducible games (0 = time based)
//	--fps <rate>    - Frame rate
//	--log <path>    - Write diagnostics to a file
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tomz197/astrds/internal/config"
)

var (
	flagConfig  string
	flagDBPath  string
	flagSeed    int64
	flagFPS     int
	flagLogPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "astrds",
	Short: "Vector asteroids in your terminal",
	Long: `astrds is a terminal rendition of the classic vector arcade game.
Steer the craft, shoot the rocks, survive as many waves as you can.

Controls:
  W / Up         - Thrust
  A D / Left Right - Rotate
  Space / X      - Shoot (Space also starts a game)
  H / S / Down   - Hyperspace
  Q / Ctrl+C     - Quit

Examples:
  astrds
  astrds --seed 42
  astrds --db ./scores.db --log ./astrds.log
  astrds scores`,
	SilenceUsage: true,
	RunE:         runPlay,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.GetEnv("ASTRDS_CONFIG", ""), "Path to settings YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (overrides settings)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Frame rate (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&flagLogPath, "log", "", "Write logs to this file")

	rootCmd.AddCommand(scoresCmd)
}

// loadSettings resolves settings from YAML, the environment and flags, in
// increasing priority.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	settings, err := config.LoadSettings(flagConfig)
	if err != nil {
		return config.Settings{}, err
	}
	settings.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("db") {
		settings.DBPath = flagDBPath
	}
	if flags.Changed("seed") {
		settings.Seed = flagSeed
	}
	if flags.Changed("fps") && flagFPS > 0 {
		settings.FPS = flagFPS
	}
	return settings, nil
}

// newLogger returns a file logger when --log is set. Stdout is the game
// screen, so without a log file diagnostics are dropped.
func newLogger() (*log.Logger, func(), error) {
	if flagLogPath == "" {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(flagLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "astrds",
		Level:           log.DebugLevel,
	})
	return logger, func() { f.Close() }, nil
}
