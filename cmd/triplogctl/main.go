package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"triplog/internal/cli"
	"triplog/internal/config"
	"triplog/internal/core"
	"triplog/internal/log"
	"triplog/internal/ports/memory"
	"triplog/internal/services"
)

type options struct {
	dataFile string
	logLevel string
	dryRun   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "triplogctl",
		Short: "Capture and report business travel expenses and mileage",
		Long: `triplogctl turns spoken-style transcripts into expense and mileage
records, keeps them in a local JSON data file and exports summaries
and tax reports.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.dataFile, "data", "", "records file (default: DATA_FILE or ./data/records.json)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "work on an empty in-memory ledger and save nothing")

	root.AddCommand(
		parseCmd(opts),
		captureCmd(opts),
		addCmd(opts),
		listCmd(opts),
		deleteCmd(opts),
		summaryCmd(opts),
		reportCmd(opts),
		ratesCmd(opts),
	)
	return root
}

func main() {
	cli.LoadEnvFile()
	ctx, stop := cli.SignalContext(context.Background())
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openLedger loads configuration and opens the ledger over the data file.
func openLedger(ctx context.Context, opts *options) (*services.LedgerService, *config.Config, error) {
	cfg := config.Load()
	if opts.dataFile != "" {
		cfg.DataFile = opts.dataFile
	}
	rates, err := cfg.RateTable()
	if err != nil {
		return nil, nil, err
	}

	logger := log.New(log.Config{
		Component: log.ComponentCLI,
		Handler:   log.NewHandler(os.Stderr, "text", levelOrWarn(opts.logLevel)),
	})
	log.SetDefault(logger)

	lc := services.LedgerConfig{Rates: rates, Logger: logger}
	if opts.dryRun {
		lc.Store = memory.New()
		lc.IDs = &core.SequenceGenerator{Prefix: "dry"}
	} else {
		store, err := memory.NewFromFile(ctx, cfg.DataFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", cfg.DataFile, err)
		}
		lc.Store = store
	}
	return services.NewLedgerService(lc), cfg, nil
}
