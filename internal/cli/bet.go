package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/minhvu/lottosync/internal/control"
	"github.com/minhvu/lottosync/internal/core/domain"
)

var betCmd = &cobra.Command{
	Use:   "bet <number>",
	Short: "Place a bet and wait for confirmation",
	Args:  cobra.ExactArgs(1),
	Run:   runBet,
}

func init() {
	rootCmd.AddCommand(betCmd)
}

func runBet(cmd *cobra.Command, args []string) {
	cfg := setup()

	session, err := control.NewSession(cfg)
	if err != nil {
		slog.Error("Failed to initialize session", "error", err)
		os.Exit(1)
	}

	// The confirmation deadline is enforced inside the controller; the
	// outer context only guards setup reads
	receipt, err := session.PlaceBetRaw(context.Background(), args[0])
	if err != nil {
		slog.Error("Bet failed", "kind", domain.KindOf(err), "error", err)
		if receipt != nil && receipt.TxHash != "" {
			fmt.Printf("status: %s\ntx: %s\n", receipt.Status, receipt.TxHash)
		}
		os.Exit(1)
	}

	fmt.Printf("status: %s\ntx: %s\n", receipt.Status, receipt.TxHash)
}
