package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

type options struct {
	download   bool
	since      string
	larger     string
	today      bool
	configPath string
	outDir     string
	noUpload   bool
	verbose    bool
}

var opts options

var rootCmd = &cobra.Command{
	Use:   "aipsscraper <xml_file|--download> [--since DD.MM.YYYY] [--larger THRESHOLD] [--today]",
	Short: "aipsscraper extracts authorization identifiers and dates from the Swissmedic AIPS export.",
	Example: `  aipsscraper AipsDownload_20260130.xml
  aipsscraper AipsDownload_20260130.xml --since 01.01.2025
  aipsscraper --download
  aipsscraper --download --since 01.01.2025 --larger 5000
  aipsscraper --download --today`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initSlog(opts.verbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args, opts)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.BoolVar(&opts.download, "download", false, "Download the latest export from swissmedicinfo instead of reading a file")
	flags.StringVar(&opts.since, "since", "", "Only keep records dated on or after DD.MM.YYYY")
	flags.StringVar(&opts.larger, "larger", "", "Only keep unique identifiers larger than THRESHOLD")
	flags.BoolVar(&opts.today, "today", false, "Write today's unique identifiers to 'today' and upload them")
	flags.StringVar(&opts.configPath, "config", "aipsscraper.json5", "Path to the config file")
	flags.StringVarP(&opts.outDir, "out-dir", "o", "", "Directory for downloads and reports (overrides config)")
	flags.BoolVar(&opts.noUpload, "no-upload", false, "Skip the remote copy in --today mode")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
}

func initSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("aipsscraper failed", "err", err)
		stop()
		os.Exit(1)
	}
}
