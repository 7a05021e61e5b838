// Package sqlite loads the dataset into an embedded SQLite database and
// queries it through sqlengine.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"fairdash/internal/fairness/models"
	"fairdash/internal/fairness/query"
	"fairdash/internal/fairness/store/sqlengine"
	"fairdash/pkg/platform/sentinel"
)

const schema = `CREATE TABLE IF NOT EXISTS %s (
	state TEXT NOT NULL,
	year INTEGER NOT NULL,
	demographic_category TEXT NOT NULL,
	demographic_group TEXT NOT NULL,
	fairness_measure TEXT NOT NULL,
	value REAL,
	coalesced_n INTEGER
)`

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS %[1]s_state_group ON %[1]s (state, demographic_group, fairness_measure)`,
	`CREATE INDEX IF NOT EXISTS %[1]s_measure_year ON %[1]s (fairness_measure, year, demographic_group)`,
}

// Open creates an in-memory database holding rows in the given order.
func Open(ctx context.Context, table string, rows []models.Row) (*sqlengine.Engine, error) {
	if !query.ValidTable(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if err := load(ctx, db, table, rows); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sqlengine.New(db, query.DialectSQLite, table, sqlengine.WithClassifier(classify))
}

// OpenFile opens an existing SQLite database file that already holds the table.
func OpenFile(ctx context.Context, path, table string) (*sqlengine.Engine, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return sqlengine.New(db, query.DialectSQLite, table, sqlengine.WithClassifier(classify))
}

func load(ctx context.Context, db *sql.DB, table string, rows []models.Row) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf(schema, table)); err != nil {
		return fmt.Errorf("create %s table: %w", table, err)
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, fmt.Sprintf(stmt, table)); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (state, year, demographic_category, demographic_group, fairness_measure, value, coalesced_n) VALUES (?, ?, ?, ?, ?, ?, ?)", table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		var value any
		if r.Value != nil {
			value = *r.Value
		}
		if _, err := stmt.ExecContext(ctx, r.State, r.Year, r.DemographicCategory, r.DemographicGroup, r.FairnessMeasure, value, r.CoalescedN); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

func classify(err error) error {
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}
	return err
}
