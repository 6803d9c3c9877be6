package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"triplog/internal/amqp"
	"triplog/internal/cli"
	"triplog/internal/config"
	"triplog/internal/log"
	"triplog/internal/ports"
	"triplog/internal/ports/memory"
	gsheet "triplog/internal/sheets/google"
	"triplog/internal/storage"
	"triplog/internal/worker"
)

func main() {
	os.Exit(run(context.Background()))
}

// run returns the process exit code once every deferred cleanup has run.
func run(parent context.Context) int {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	logger.Info("Starting triplog-worker", log.FieldOperation, log.OpStartup)

	ctx, stop := cli.SignalContext(parent)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open record store", log.FieldError, err, "backend", cfg.DataBackend)
		return 1
	}
	defer closeStore()

	sink, err := openSink(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		return 1
	}

	syncWorker := worker.NewSyncWorker(store, sink, cfg.SyncBatchSize)

	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			return 1
		}
		defer client.Close()

		g.Go(func() error {
			err := client.ConsumeRecordEvents(gctx, syncWorker.HandleEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP_URL not set, relying on the periodic sweep only")
	}

	g.Go(func() error {
		return syncWorker.RunPeriodic(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		return 1
	}
	logger.Info("Worker stopped gracefully", log.FieldOperation, log.OpShutdown)
	return 0
}

func openStore(ctx context.Context, cfg *config.Config) (ports.RecordStore, func(), error) {
	if cfg.DataBackend == config.BackendSQLite {
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	}
	store, err := memory.NewFromFile(ctx, cfg.DataFile)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

// openSink mirrors to Google Sheets when a spreadsheet is configured and
// to an in-memory sink otherwise.
func openSink(ctx context.Context, cfg *config.Config, logger *log.Logger) (ports.RecordSink, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
		return memory.NewSink(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		ExpensesSheet:      cfg.GoogleExpensesSheet,
		MileageSheet:       cfg.GoogleMileageSheet,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	if err := client.EnsureHeaders(ctx); err != nil {
		logger.Warn("Failed to write sheet headers", log.FieldError, err)
	}
	logger.Info("Google Sheets client initialized", log.FieldSheetsRef, cfg.GoogleSpreadsheetID)
	return client, nil
}
