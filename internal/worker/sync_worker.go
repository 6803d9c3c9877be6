// Package worker mirrors stored records into an external sink.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"triplog/internal/amqp"
	"triplog/internal/core"
	"triplog/internal/ports"
	"triplog/internal/storage"
)

// PendingStore tracks which records still need mirroring. The SQLite
// repository implements it; the file-backed store does not.
type PendingStore interface {
	PendingSync(ctx context.Context, limit int) ([]storage.PendingRecord, error)
	MarkSynced(ctx context.Context, kind core.RecordKind, id string) error
	MarkSyncError(ctx context.Context, kind core.RecordKind, id string) error
}

// SyncWorker mirrors records to a RecordSink, driven by record events and
// by a periodic sweep of records still marked pending.
type SyncWorker struct {
	store     ports.RecordStore
	pending   PendingStore
	sink      ports.RecordSink
	batchSize int
}

func NewSyncWorker(store ports.RecordStore, sink ports.RecordSink, batchSize int) *SyncWorker {
	w := &SyncWorker{
		store:     store,
		sink:      sink,
		batchSize: batchSize,
	}
	if p, ok := store.(PendingStore); ok {
		w.pending = p
	}
	return w
}

// HandleEvent processes one record event.
func (w *SyncWorker) HandleEvent(ctx context.Context, evt *amqp.RecordEvent) error {
	slog.InfoContext(ctx, "Processing record event",
		"action", evt.Action,
		"kind", evt.Kind,
		"id", evt.ID)

	switch evt.Action {
	case amqp.ActionCreated:
		if len(evt.Record) > 0 {
			e, m, err := storage.DecodeRecord(evt.Record)
			if err == nil {
				return w.mirror(ctx, evt.Kind, evt.ID, e, m)
			}
			slog.WarnContext(ctx, "Event payload unreadable, loading record from store", "id", evt.ID, "error", err)
		}
		return w.syncFromStore(ctx, evt.Kind, evt.ID)
	case amqp.ActionDeleted:
		return w.deleteFromSink(ctx, evt.Kind, evt.ID)
	default:
		return fmt.Errorf("unknown action %q", evt.Action)
	}
}

func (w *SyncWorker) syncFromStore(ctx context.Context, kind core.RecordKind, id string) error {
	var (
		e   *core.Expense
		m   *core.MileageEntry
		err error
	)
	switch kind {
	case core.KindExpense:
		var rec core.Expense
		rec, err = w.store.Expense(ctx, id)
		e = &rec
	case core.KindMileage:
		var rec core.MileageEntry
		rec, err = w.store.MileageEntry(ctx, id)
		m = &rec
	default:
		return fmt.Errorf("unknown record kind %q", kind)
	}
	if errors.Is(err, ports.ErrNotFound) {
		// Deleted before we got to it; the delete event cleans up.
		slog.WarnContext(ctx, "Record no longer in store, skipping sync", "kind", kind, "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}
	return w.mirror(ctx, kind, id, e, m)
}

func (w *SyncWorker) mirror(ctx context.Context, kind core.RecordKind, id string, e *core.Expense, m *core.MileageEntry) error {
	var (
		ref string
		err error
	)
	switch {
	case e != nil:
		ref, err = w.sink.AppendExpense(ctx, *e)
	case m != nil:
		ref, err = w.sink.AppendMileage(ctx, *m)
	default:
		return fmt.Errorf("no record to sync for %s %s", kind, id)
	}
	if err != nil {
		w.markError(ctx, kind, id)
		return fmt.Errorf("append to sink: %w", err)
	}

	if w.pending != nil {
		if err := w.pending.MarkSynced(ctx, kind, id); err != nil && !errors.Is(err, ports.ErrNotFound) {
			// The append worked; a stale pending flag only causes a repeat append.
			slog.ErrorContext(ctx, "Failed to mark as synced", "kind", kind, "id", id, "error", err)
		}
	}

	slog.InfoContext(ctx, "Successfully synced record", "kind", kind, "id", id, "sheets_ref", ref)
	return nil
}

func (w *SyncWorker) markError(ctx context.Context, kind core.RecordKind, id string) {
	if w.pending == nil {
		return
	}
	if err := w.pending.MarkSyncError(ctx, kind, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error", "kind", kind, "id", id, "error", err)
	}
}

func (w *SyncWorker) deleteFromSink(ctx context.Context, kind core.RecordKind, id string) error {
	err := w.sink.DeleteRecord(ctx, kind, id)
	if errors.Is(err, ports.ErrNotFound) {
		slog.InfoContext(ctx, "Record not present in sink, nothing to delete", "kind", kind, "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete from sink: %w", err)
	}
	slog.InfoContext(ctx, "Successfully deleted record from sink", "kind", kind, "id", id)
	return nil
}

// ProcessPending re-sends up to one batch of records still marked pending.
// It covers events lost while the broker or worker was down.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck sweeps a larger batch once when the worker starts.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", synced)
	return nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (int, error) {
	if w.pending == nil {
		return 0, nil
	}
	records, err := w.pending.PendingSync(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending records: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending records", "count", len(records))

	synced := 0
	for _, p := range records {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := w.syncFromStore(ctx, p.Kind, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record", "kind", p.Kind, "id", p.ID, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

// RunPeriodic calls ProcessPending every interval until ctx is done.
func (w *SyncWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if w.pending == nil {
		slog.InfoContext(ctx, "Store has no sync tracking, periodic sweep disabled")
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
		}
	}
}
