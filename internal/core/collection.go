package core

import "github.com/shopspring/decimal"

// Collection is the session's record set. Records are kept most-recent-first;
// every mutation returns a new Collection and leaves the receiver untouched.
type Collection struct {
	Expenses []Expense
	Mileage  []MileageEntry
}

func (c Collection) Len() int {
	return len(c.Expenses) + len(c.Mileage)
}

func (c Collection) WithExpense(e Expense) Collection {
	out := Collection{
		Expenses: make([]Expense, 0, len(c.Expenses)+1),
		Mileage:  c.Mileage,
	}
	out.Expenses = append(out.Expenses, e)
	out.Expenses = append(out.Expenses, c.Expenses...)
	return out
}

func (c Collection) WithMileage(m MileageEntry) Collection {
	out := Collection{
		Expenses: c.Expenses,
		Mileage:  make([]MileageEntry, 0, len(c.Mileage)+1),
	}
	out.Mileage = append(out.Mileage, m)
	out.Mileage = append(out.Mileage, c.Mileage...)
	return out
}

// WithoutExpense drops the expense with the given id. The bool is false when
// no such expense exists.
func (c Collection) WithoutExpense(id string) (Collection, bool) {
	kept := make([]Expense, 0, len(c.Expenses))
	found := false
	for _, e := range c.Expenses {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	return Collection{Expenses: kept, Mileage: c.Mileage}, found
}

func (c Collection) WithoutMileage(id string) (Collection, bool) {
	kept := make([]MileageEntry, 0, len(c.Mileage))
	found := false
	for _, m := range c.Mileage {
		if m.ID == id {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	return Collection{Expenses: c.Expenses, Mileage: kept}, found
}

func (c Collection) Expense(id string) (Expense, bool) {
	for _, e := range c.Expenses {
		if e.ID == id {
			return e, true
		}
	}
	return Expense{}, false
}

func (c Collection) MileageEntry(id string) (MileageEntry, bool) {
	for _, m := range c.Mileage {
		if m.ID == id {
			return m, true
		}
	}
	return MileageEntry{}, false
}

// Lines returns expense lines followed by mileage lines, each in stored order.
func (c Collection) Lines() []Line {
	out := make([]Line, 0, c.Len())
	out = append(out, Lines(c.Expenses)...)
	return append(out, Lines(c.Mileage)...)
}

// LatestOdometer returns the end reading of the most recent trip by date.
func (c Collection) LatestOdometer() (decimal.Decimal, bool) {
	var (
		best  MileageEntry
		found bool
	)
	for _, m := range c.Mileage {
		if !found || m.Date.After(best.Date.Time) || (m.Date.Equal(best.Date) && m.EndOdometer.GreaterThan(best.EndOdometer)) {
			best = m
			found = true
		}
	}
	return best.EndOdometer, found
}
