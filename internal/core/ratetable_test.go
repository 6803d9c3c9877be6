package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRateFor(t *testing.T) {
	table := NewRateTable([]YearRate{
		{Year: 2024, Rate: dec("0.68")},
		{Year: 2022, Rate: dec("0.61")},
		{Year: 2025, Rate: dec("0.72")},
	})
	cases := []struct {
		year int
		want string
	}{
		{2020, "0.61"}, // predates the table: earliest rate
		{2022, "0.61"},
		{2023, "0.61"},
		{2024, "0.68"},
		{2025, "0.72"},
		{2031, "0.72"},
	}
	for _, tc := range cases {
		if got := table.RateFor(tc.year); !got.Equal(dec(tc.want)) {
			t.Fatalf("year %d expected %s, got %s", tc.year, tc.want, got)
		}
	}
}

func TestDefaultRateTable(t *testing.T) {
	if got := DefaultRateTable().RateFor(2024); !got.Equal(decimal.RequireFromString("0.68")) {
		t.Fatalf("expected 0.68, got %s", got)
	}
	var nilTable *RateTable
	if got := nilTable.RateFor(2024); !got.Equal(DefaultMileageRate) {
		t.Fatalf("nil table should fall back to default, got %s", got)
	}
}

func TestParseRateTable(t *testing.T) {
	table, err := ParseRateTable("2023:0.68, 2024:0.70")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.RateFor(2024); got.String() != "0.7" {
		t.Fatalf("expected 0.7, got %s", got)
	}
	for _, bad := range []string{"2024", "x:0.5", "2024:abc", "2024:-1"} {
		if _, err := ParseRateTable(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
	empty, err := ParseRateTable("")
	if err != nil || len(empty.Entries()) != 1 {
		t.Fatalf("empty input should give the default table, err=%v", err)
	}
}

func TestSequenceGenerator(t *testing.T) {
	g := &SequenceGenerator{Prefix: "exp"}
	if a, b := g.NewID(), g.NewID(); a != "exp-1" || b != "exp-2" {
		t.Fatalf("unexpected ids %s %s", a, b)
	}
	u := UUIDGenerator{}
	if u.NewID() == u.NewID() {
		t.Fatalf("uuid ids must differ")
	}
}
