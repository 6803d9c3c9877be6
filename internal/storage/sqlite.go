package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"triplog/internal/core"
	"triplog/internal/ports"

	_ "modernc.org/sqlite"
)

const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// PendingRecord identifies a record the sync worker has not mirrored yet.
type PendingRecord struct {
	Kind core.RecordKind
	ID   string
}

type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.RecordStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, title, amount, category, date, business_purpose,
			location, description, attendees, odometer_reading)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, core.FormatAmount(e.Amount), string(e.Category), e.Date.String(),
		e.BusinessPurpose, e.Location, e.Description, e.Attendees, e.OdometerReading.String())
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"title", e.Title,
		"amount", core.FormatAmount(e.Amount),
		"category", e.Category,
		"date", e.Date.String())
	return nil
}

func (r *SQLiteRepository) AddMileage(ctx context.Context, m core.MileageEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mileage_entries (id, date, start_location, end_location, business_purpose,
			client_name, attendees, description, start_odometer, end_odometer, distance, rate, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Date.String(), m.StartLocation, m.EndLocation, m.BusinessPurpose,
		m.ClientName, m.Attendees, m.Description, m.StartOdometer.String(), m.EndOdometer.String(),
		m.Distance.String(), m.Rate.String(), core.FormatAmount(m.Amount))
	if err != nil {
		return fmt.Errorf("insert mileage entry: %w", err)
	}

	slog.InfoContext(ctx, "Mileage entry saved to SQLite",
		"id", m.ID,
		"distance", m.Distance.String(),
		"amount", core.FormatAmount(m.Amount),
		"date", m.Date.String())
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "expenses", id)
}

func (r *SQLiteRepository) DeleteMileage(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "mileage_entries", id)
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, ports.ErrNotFound)
	}
	slog.InfoContext(ctx, "Record deleted from SQLite", "table", table, "id", id)
	return nil
}

const expenseColumns = `id, title, amount, category, date, business_purpose, location,
	description, attendees, odometer_reading`

const mileageColumns = `id, date, start_location, end_location, business_purpose, client_name,
	attendees, description, start_odometer, end_odometer, distance, rate, amount`

func (r *SQLiteRepository) Expense(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, ports.ErrNotFound)
	}
	return e, err
}

func (r *SQLiteRepository) MileageEntry(ctx context.Context, id string) (core.MileageEntry, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+mileageColumns+" FROM mileage_entries WHERE id = ?", id)
	m, err := scanMileage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MileageEntry{}, fmt.Errorf("mileage entry %s: %w", id, ports.ErrNotFound)
	}
	return m, err
}

// Snapshot returns all records, newest insert first. Rows that cannot be
// decoded are skipped with a warning.
func (r *SQLiteRepository) Snapshot(ctx context.Context) (core.Collection, error) {
	var c core.Collection

	rows, err := r.db.QueryContext(ctx, "SELECT "+expenseColumns+" FROM expenses ORDER BY rowid DESC")
	if err != nil {
		return c, fmt.Errorf("list expenses: %w", err)
	}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			slog.WarnContext(ctx, "Dropping unreadable expense row", "error", err)
			continue
		}
		c.Expenses = append(c.Expenses, e)
	}
	if err := closeRows(rows); err != nil {
		return c, fmt.Errorf("list expenses: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, "SELECT "+mileageColumns+" FROM mileage_entries ORDER BY rowid DESC")
	if err != nil {
		return c, fmt.Errorf("list mileage entries: %w", err)
	}
	for rows.Next() {
		m, err := scanMileage(rows)
		if err != nil {
			slog.WarnContext(ctx, "Dropping unreadable mileage row", "error", err)
			continue
		}
		c.Mileage = append(c.Mileage, m)
	}
	if err := closeRows(rows); err != nil {
		return c, fmt.Errorf("list mileage entries: %w", err)
	}
	return c, nil
}

// PendingSync returns up to limit records not yet mirrored, oldest first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]PendingRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, id FROM (
			SELECT 'expense' AS kind, id, created_at FROM expenses WHERE sync_status = 'pending'
			UNION ALL
			SELECT 'mileage' AS kind, id, created_at FROM mileage_entries WHERE sync_status = 'pending'
		) ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync records: %w", err)
	}
	var out []PendingRecord
	for rows.Next() {
		var p PendingRecord
		if err := rows.Scan(&p.Kind, &p.ID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan pending record: %w", err)
		}
		out = append(out, p)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("get pending sync records: %w", err)
	}
	return out, nil
}

// MarkSynced marks a record as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, kind core.RecordKind, id string) error {
	if err := r.setSyncStatus(ctx, kind, id, SyncDone); err != nil {
		return fmt.Errorf("mark record synced: %w", err)
	}
	slog.InfoContext(ctx, "Record marked as synced", "kind", kind, "id", id)
	return nil
}

// MarkSyncError marks a record whose mirroring failed.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, kind core.RecordKind, id string) error {
	if err := r.setSyncStatus(ctx, kind, id, SyncError); err != nil {
		return fmt.Errorf("mark record sync error: %w", err)
	}
	slog.WarnContext(ctx, "Record marked with sync error", "kind", kind, "id", id)
	return nil
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, kind core.RecordKind, id, status string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	query := "UPDATE " + table + " SET sync_status = ?, synced_at = CASE WHEN ? = 'synced' THEN CURRENT_TIMESTAMP ELSE synced_at END WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, status, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ports.ErrNotFound)
	}
	return nil
}

func tableFor(kind core.RecordKind) (string, error) {
	switch kind {
	case core.KindExpense:
		return "expenses", nil
	case core.KindMileage:
		return "mileage_entries", nil
	default:
		return "", fmt.Errorf("unknown record kind %q", kind)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e                                   core.Expense
		amount, category, date, odometerStr string
	)
	if err := s.Scan(&e.ID, &e.Title, &amount, &category, &date, &e.BusinessPurpose,
		&e.Location, &e.Description, &e.Attendees, &odometerStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan expense: %w", err)
	}
	var err error
	e.Category = core.Category(category)
	if e.Date, err = core.ParseDate(date); err != nil {
		return e, fmt.Errorf("expense %s date: %w", e.ID, err)
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return e, fmt.Errorf("expense %s amount: %w", e.ID, err)
	}
	if e.OdometerReading, err = decimal.NewFromString(odometerStr); err != nil {
		return e, fmt.Errorf("expense %s odometer: %w", e.ID, err)
	}
	return e, nil
}

func scanMileage(s scanner) (core.MileageEntry, error) {
	var (
		m                                           core.MileageEntry
		date, start, end, distance, rate, amountStr string
	)
	if err := s.Scan(&m.ID, &date, &m.StartLocation, &m.EndLocation, &m.BusinessPurpose,
		&m.ClientName, &m.Attendees, &m.Description, &start, &end, &distance, &rate, &amountStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return m, err
		}
		return m, fmt.Errorf("scan mileage entry: %w", err)
	}
	var err error
	if m.Date, err = core.ParseDate(date); err != nil {
		return m, fmt.Errorf("mileage %s date: %w", m.ID, err)
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{{&m.StartOdometer, start}, {&m.EndOdometer, end}, {&m.Distance, distance}, {&m.Rate, rate}, {&m.Amount, amountStr}} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return m, fmt.Errorf("mileage %s: %w", m.ID, err)
		}
	}
	return m, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}
