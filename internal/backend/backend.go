// Package backend assembles the ledger over the configured record store.
package backend

import (
	"context"
	"fmt"
	"time"

	"triplog/internal/config"
	"triplog/internal/core"
)

type BackendType string

const (
	MemoryBackend BackendType = config.BackendMemory
	SQLiteBackend BackendType = config.BackendSQLite
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases the store and the event publisher.
type CleanupFunc func() error

// Config carries what the factory needs from the application config.
type Config struct {
	Type BackendType

	DataFile     string
	SQLiteDBPath string

	// AMQP is optional; an empty URL disables event publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Rates *core.RateTable
	Clock func() time.Time
}

// Factory creates a ledger over a backend.
type Factory interface {
	Create(ctx context.Context, cfg Config) (*Result, error)
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	bt := BackendType(app.DataBackend)
	if !bt.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", app.DataBackend)
	}
	rates, err := app.RateTable()
	if err != nil {
		return Config{}, fmt.Errorf("mileage rates: %w", err)
	}

	return Config{
		Type:         bt,
		DataFile:     app.DataFile,
		SQLiteDBPath: app.SQLiteDBPath,
		AMQPURL:      app.AMQPURL,
		AMQPExchange: app.AMQPExchange,
		AMQPQueue:    app.AMQPQueue,
		Rates:        rates,
	}, nil
}

func (c Config) Validate() error {
	switch c.Type {
	case MemoryBackend:
		if c.DataFile == "" {
			return fmt.Errorf("data file is required for memory backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	default:
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	return nil
}
