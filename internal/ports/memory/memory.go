// Package memory keeps the record collection in process and optionally
// mirrors it to a JSON file after every mutation.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"triplog/internal/core"
	"triplog/internal/ports"
	"triplog/internal/storage"
)

type Store struct {
	mu   sync.Mutex
	path string
	c    core.Collection
}

var _ ports.RecordStore = (*Store)(nil)

// New returns an empty store that never touches disk.
func New() *Store {
	return &Store{}
}

// NewFromFile loads the collection stored at path. A missing file is an
// empty collection. Unreadable entries are dropped with a warning.
func NewFromFile(ctx context.Context, path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	c, problems := storage.DecodeCollection(data)
	for _, p := range problems {
		slog.WarnContext(ctx, "Dropped unreadable stored record", "path", path, "error", p)
	}
	s.c = c
	slog.InfoContext(ctx, "Loaded records from file",
		"path", path,
		"expenses", len(c.Expenses),
		"mileage", len(c.Mileage),
		"dropped", len(problems))
	return s, nil
}

func (s *Store) AddExpense(ctx context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, s.c.WithExpense(e))
}

func (s *Store) AddMileage(ctx context.Context, m core.MileageEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, s.c.WithMileage(m))
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.c.WithoutExpense(id)
	if !ok {
		return fmt.Errorf("delete expense %s: %w", id, ports.ErrNotFound)
	}
	return s.commit(ctx, next)
}

func (s *Store) DeleteMileage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.c.WithoutMileage(id)
	if !ok {
		return fmt.Errorf("delete mileage entry %s: %w", id, ports.ErrNotFound)
	}
	return s.commit(ctx, next)
}

func (s *Store) Expense(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.c.Expense(id)
	if !ok {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, ports.ErrNotFound)
	}
	return e, nil
}

func (s *Store) MileageEntry(_ context.Context, id string) (core.MileageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.c.MileageEntry(id)
	if !ok {
		return core.MileageEntry{}, fmt.Errorf("mileage entry %s: %w", id, ports.ErrNotFound)
	}
	return m, nil
}

// Snapshot returns the current collection. Collections are never mutated in
// place, so the caller may keep it.
func (s *Store) Snapshot(_ context.Context) (core.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c, nil
}

// commit persists next and swaps it in. On a write failure the previous
// collection stays current.
func (s *Store) commit(ctx context.Context, next core.Collection) error {
	if s.path != "" {
		if err := writeFile(s.path, next); err != nil {
			slog.ErrorContext(ctx, "Failed to persist records", "path", s.path, "error", err)
			return err
		}
	}
	s.c = next
	return nil
}

func writeFile(path string, c core.Collection) error {
	data, err := storage.EncodeCollection(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}
