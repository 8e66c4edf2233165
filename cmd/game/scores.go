package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tomz197/astrds/internal/store"
)

var flagLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show stored high scores",
	Long: `Display the best score of every slot in the scores database.
The local game uses a single slot; the SSH server keeps one per user.

Examples:
  astrds scores
  astrds scores --limit 25
  astrds scores --db /srv/astrds/scores.db`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of entries to show")
}

func runScores(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	db, err := store.Open(settings.DBPath)
	if err != nil {
		return fmt.Errorf("opening scores database: %w", err)
	}
	defer db.Close()

	entries, err := db.List(flagLimit)
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	header := lipgloss.NewStyle().Bold(true)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, header.Render("High Scores"))
	fmt.Fprintln(out)

	if len(entries) == 0 {
		fmt.Fprintln(out, "No scores recorded yet.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Run 'astrds' to set the first high score!")
		return nil
	}

	fmt.Fprintf(out, "  %-4s  %-10s  %-24s  %s\n", "Rank", "Score", "Slot", "Updated")
	fmt.Fprintf(out, "  %-4s  %-10s  %-24s  %s\n", "----", "-----", "----", "-------")
	for i, e := range entries {
		updated := "-"
		if !e.UpdatedAt.IsZero() {
			updated = e.UpdatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(out, "  %-4d  %-10d  %-24s  %s\n", i+1, e.Score, e.Key, updated)
	}
	return nil
}
