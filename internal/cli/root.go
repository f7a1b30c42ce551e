package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/minhvu/lottosync/internal/control"
	"github.com/minhvu/lottosync/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "lottosync",
	Short: "Lottery contract sync service",
	Long: `Lottosync keeps a local view of one on-chain lottery contract:
a cached prize snapshot, a reconciled win/loss history, and a supervised
bet submission path.`,
	Run: runWatch,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the sync session until interrupted",
	Run:   runWatch,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(watchCmd)
}

// setup loads the configuration and initializes logging; shared by every
// subcommand.
func setup() config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})

	return *cfg
}

func runWatch(cmd *cobra.Command, args []string) {
	cfg := setup()

	session, err := control.NewSession(cfg)
	if err != nil {
		slog.Error("Failed to initialize session", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := session.Start(ctx); err != nil {
		slog.Error("Failed to start session", "error", err)
		os.Exit(1)
	}

	slog.Info("Session running", "config", cfgPath, "port", cfg.Server.Port)

	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	session.Stop(shutdownCtx)
}
