package memory

import (
	"context"
	"fmt"
	"sync"

	"triplog/internal/core"
	"triplog/internal/ports"
)

// Sink is an in-process RecordSink. The worker falls back to it when no
// spreadsheet is configured; tests use it to observe mirrored records.
type Sink struct {
	mu      sync.Mutex
	rows    map[string]core.Line
	appends int
}

var _ ports.RecordSink = (*Sink)(nil)

func NewSink() *Sink {
	return &Sink{rows: map[string]core.Line{}}
}

func (s *Sink) AppendExpense(_ context.Context, e core.Expense) (string, error) {
	return s.put(e.Line()), nil
}

func (s *Sink) AppendMileage(_ context.Context, m core.MileageEntry) (string, error) {
	return s.put(m.Line()), nil
}

func (s *Sink) put(l core.Line) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[l.ID] = l
	s.appends++
	return fmt.Sprintf("mem:%s:%s", l.Kind, l.ID)
}

func (s *Sink) DeleteRecord(_ context.Context, kind core.RecordKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.rows[id]; !ok || l.Kind != kind {
		return fmt.Errorf("delete %s %s: %w", kind, id, ports.ErrNotFound)
	}
	delete(s.rows, id)
	return nil
}

// Rows returns the mirrored lines keyed by record id.
func (s *Sink) Rows() map[string]core.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]core.Line, len(s.rows))
	for k, v := range s.rows {
		out[k] = v
	}
	return out
}

// Appends counts every append call, including repeats of the same id.
func (s *Sink) Appends() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appends
}
