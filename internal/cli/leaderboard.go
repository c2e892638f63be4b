package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"quiz-results-service/internal/codec"
	"quiz-results-service/internal/domain"
	"quiz-results-service/internal/ranking"
)

// NewLeaderboardCmd ranks an exported file of attempt records without a server.
func NewLeaderboardCmd() *cobra.Command {
	var (
		quiz   string
		window string
		now    string
	)
	cmd := &cobra.Command{
		Use:   "leaderboard <records.json>",
		Short: "Compute leaderboards from a JSON file of attempt records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return printLeaderboard(f, cmd.OutOrStdout(), quiz, window, now)
		},
	}
	cmd.Flags().StringVar(&quiz, "quiz", ranking.AllQuizzes, "quiz name filter (all for every quiz)")
	cmd.Flags().StringVar(&window, "window", string(domain.WindowAll), "time window: all, weekly or monthly")
	cmd.Flags().StringVar(&now, "now", "", "reference time in RFC3339 (defaults to the current time)")
	return cmd
}

func printLeaderboard(in io.Reader, out io.Writer, quiz, rawWindow, rawNow string) error {
	w, err := domain.ParseWindow(rawWindow)
	if err != nil {
		return err
	}
	ref := time.Now()
	if rawNow != "" {
		ref, err = time.Parse(time.RFC3339, rawNow)
		if err != nil {
			return fmt.Errorf("parse --now: %w", err)
		}
	}

	var records []domain.Record
	if err := json.NewDecoder(in).Decode(&records); err != nil {
		return fmt.Errorf("decode records: %w", err)
	}

	boards := ranking.Build(codec.DecodeAttempts(records), ranking.Query{QuizName: quiz, Window: w, Now: ref})
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(boards)
}
