package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/minhvu/lottosync/internal/control"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the current contract snapshot",
	Run:   runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) {
	cfg := setup()

	session, err := control.NewSession(cfg)
	if err != nil {
		slog.Error("Failed to initialize session", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := session.Snapshot(ctx)
	if err != nil {
		slog.Error("Failed to fetch snapshot", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "FIELD\tVALUE")
	_, _ = fmt.Fprintf(w, "jackpot\t%s\n", snap.Jackpot)
	_, _ = fmt.Fprintf(w, "first prize max\t%s\n", snap.FirstPrizeMax)
	_, _ = fmt.Fprintf(w, "second prize max\t%s\n", snap.SecondPrizeMax)
	_, _ = fmt.Fprintf(w, "bet minimum\t%s\n", snap.BetMinimum)
	_ = w.Flush()
}
