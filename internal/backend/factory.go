package backend

import (
	"context"
	"fmt"

	"triplog/internal/amqp"
	"triplog/internal/log"
	"triplog/internal/ports"
	"triplog/internal/ports/memory"
	"triplog/internal/services"
	"triplog/internal/storage"
)

// Result is an assembled ledger. Store is the ledger's own store, exposed
// for readiness checks.
type Result struct {
	Ledger  *services.LedgerService
	Store   ports.RecordStore
	Cleanup CleanupFunc
}

type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) Create(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := f.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	lc := services.LedgerConfig{
		Store:  store,
		Rates:  cfg.Rates,
		Clock:  cfg.Clock,
		Logger: f.logger,
	}
	if client := f.connectAMQP(ctx, cfg); client != nil {
		lc.Events = client
	}

	ledger := services.NewLedgerService(lc)
	f.logger.InfoContext(ctx, "Initialized backend",
		"backend", cfg.Type,
		"amqp_enabled", lc.Events != nil)

	return &Result{
		Ledger:  ledger,
		Store:   store,
		Cleanup: ledger.Close,
	}, nil
}

func (f *DefaultFactory) openStore(ctx context.Context, cfg Config) (ports.RecordStore, error) {
	switch cfg.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Opened SQLite store", "db_path", cfg.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		store, err := memory.NewFromFile(ctx, cfg.DataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load data file: %w", err)
		}
		f.logger.InfoContext(ctx, "Opened file-backed memory store", "data_file", cfg.DataFile)
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

// connectAMQP returns nil when AMQP is unset or unreachable; the ledger
// then runs without events.
func (f *DefaultFactory) connectAMQP(ctx context.Context, cfg Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return nil
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client
}
