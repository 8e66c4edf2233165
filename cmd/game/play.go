package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tomz197/astrds/internal/game"
	"github.com/tomz197/astrds/internal/loop"
	"github.com/tomz197/astrds/internal/object"
	"github.com/tomz197/astrds/internal/store"
)

func runPlay(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	// A missing database only costs persistence.
	var highScores game.HighScoreStore = store.NewMemory(0)
	db, err := store.Open(settings.DBPath)
	if err != nil {
		logger.Warn("high scores will not be saved", "error", err)
	} else {
		defer db.Close()
		slot, err := db.Slot(settings.HighScoreKey)
		if err != nil {
			return err
		}
		logger.Debug("high score slot", "slot", slot.Key())
		highScores = slot
	}

	seed := settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("starting", "seed", seed, "fps", settings.FPS, "db", settings.DBPath)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := loop.NewClient(bufio.NewReader(os.Stdin), os.Stdout, loop.ClientOptions{
		Store:       highScores,
		Rand:        object.NewRand(seed),
		Logger:      logger,
		FPS:         settings.FPS,
		IdleTimeout: -1,
	})
	if err := client.Run(ctx); err != nil {
		return fmt.Errorf("game error: %w", err)
	}

	s := client.Session()
	logger.Info("finished", "score", s.Score(), "high_score", s.HighScore(), "level", s.Level())
	return nil
}
