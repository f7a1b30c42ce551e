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

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the account's win/loss history, most recent first",
	Run:   runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	cfg := setup()

	session, err := control.NewSession(cfg)
	if err != nil {
		slog.Error("Failed to initialize session", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	records, err := session.History(ctx)
	if err != nil {
		slog.Error("Failed to fetch history", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "TIME\tKIND\tBET\tDRAWN\tTIER\tPAYOUT\tTX")
	for _, rec := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			time.Unix(int64(rec.OccurredAt), 0).UTC().Format(time.RFC3339),
			rec.Kind, rec.BetNumber, rec.DrawnNumber, rec.Tier, rec.Payout, rec.TxHash)
	}
	_ = w.Flush()

	if len(records) == 0 {
		fmt.Println("no recorded outcomes")
	}
}
