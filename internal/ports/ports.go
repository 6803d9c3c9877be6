// Package ports declares the interfaces between the ledger and its storage
// and export adapters.
package ports

import (
	"context"
	"errors"

	"triplog/internal/core"
)

// ErrNotFound is returned when a record id is unknown to a store.
var ErrNotFound = errors.New("record not found")

type (
	// RecordStore persists the session's record collection.
	RecordStore interface {
		AddExpense(ctx context.Context, e core.Expense) error
		AddMileage(ctx context.Context, m core.MileageEntry) error
		DeleteExpense(ctx context.Context, id string) error
		DeleteMileage(ctx context.Context, id string) error
		Expense(ctx context.Context, id string) (core.Expense, error)
		MileageEntry(ctx context.Context, id string) (core.MileageEntry, error)
		// Snapshot returns every record, most recent first.
		Snapshot(ctx context.Context) (core.Collection, error)
	}

	// RecordSink mirrors records into an external system such as a
	// spreadsheet. Implementations must tolerate repeated appends of the
	// same id.
	RecordSink interface {
		AppendExpense(ctx context.Context, e core.Expense) (ref string, err error)
		AppendMileage(ctx context.Context, m core.MileageEntry) (ref string, err error)
		DeleteRecord(ctx context.Context, kind core.RecordKind, id string) error
	}
)
