// Package analytics computes period-scoped statistics over record lines.
// Every function is pure and safe on empty input.
package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"triplog/internal/core"
)

const (
	CurrentMonth PeriodKind = "current-month"
	LastMonth    PeriodKind = "last-month"
	Quarter      PeriodKind = "quarter"
	Year         PeriodKind = "year"
	Custom       PeriodKind = "custom"
)

var ErrInvalidPeriod = errors.New("invalid period")

type PeriodKind string

// Period selects a date range relative to "now", or a fixed custom range.
type Period struct {
	Kind  PeriodKind
	Start core.Date // Custom only
	End   core.Date // Custom only
}

// Range is an inclusive calendar-date interval.
type Range struct {
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
}

func (r Range) Contains(d core.Date) bool {
	return d.Between(r.Start, r.End)
}

func (r Range) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// CustomPeriod returns a fixed inclusive range.
func CustomPeriod(start, end core.Date) (Period, error) {
	if start.IsZero() || end.IsZero() {
		return Period{}, fmt.Errorf("%w: custom period needs both dates", ErrInvalidPeriod)
	}
	if end.Before(start.Time) {
		return Period{}, fmt.Errorf("%w: %s is after %s", ErrInvalidPeriod, start, end)
	}
	return Period{Kind: Custom, Start: start, End: end}, nil
}

// ParsePeriod reads a period name or a "YYYY-MM-DD..YYYY-MM-DD" range.
// The empty string selects the current month.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch PeriodKind(s) {
	case "", CurrentMonth:
		return Period{Kind: CurrentMonth}, nil
	case LastMonth, Quarter, Year:
		return Period{Kind: PeriodKind(s)}, nil
	}
	from, to, ok := strings.Cut(s, "..")
	if !ok {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	start, err := core.ParseDate(from)
	if err != nil {
		return Period{}, fmt.Errorf("%w: start: %v", ErrInvalidPeriod, err)
	}
	end, err := core.ParseDate(to)
	if err != nil {
		return Period{}, fmt.Errorf("%w: end: %v", ErrInvalidPeriod, err)
	}
	return CustomPeriod(start, end)
}

func (p Period) String() string {
	if p.Kind == Custom {
		return p.Start.String() + ".." + p.End.String()
	}
	return string(p.Kind)
}

// Range resolves the period against now. Quarter is the calendar quarter
// containing now.
func (p Period) Range(now time.Time) Range {
	today := core.DateOf(now)
	switch p.Kind {
	case LastMonth:
		return MonthRange(monthStart(today).AddDate(0, -1, 0))
	case Quarter:
		q := (today.Month() - 1) / 3 * 3
		start := core.NewDate(today.Year(), q+1, 1)
		end := core.DateOf(start.AddDate(0, 3, -1))
		return Range{Start: start, End: end}
	case Year:
		return Range{Start: core.NewDate(today.Year(), 1, 1), End: core.NewDate(today.Year(), 12, 31)}
	case Custom:
		return Range{Start: p.Start, End: p.End}
	default:
		return MonthRange(today.Time)
	}
}

// MonthRange returns the calendar month containing t.
func MonthRange(t time.Time) Range {
	start := monthStart(core.DateOf(t))
	return Range{Start: core.DateOf(start), End: core.DateOf(start.AddDate(0, 1, -1))}
}

func monthStart(d core.Date) time.Time {
	return core.NewDate(d.Year(), d.Month(), 1).Time
}
