// Package postgres queries the dataset from a PostgreSQL table through
// sqlengine, and bulk-loads the table from rows.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"fairdash/internal/fairness/models"
	"fairdash/internal/fairness/query"
	"fairdash/internal/fairness/store/sqlengine"
	"fairdash/pkg/platform/sentinel"
)

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn, table string) (*sqlengine.Engine, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", classify(err))
	}
	return New(db, table)
}

// New wraps an open connection pool.
func New(db *sql.DB, table string) (*sqlengine.Engine, error) {
	return sqlengine.New(db, query.DialectPostgres, table, sqlengine.WithClassifier(classify))
}

// The id column records load order; distinct values are listed in the order
// they first appear in the dataset.
const schema = `CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	state TEXT NOT NULL,
	year INTEGER NOT NULL,
	demographic_category TEXT NOT NULL,
	demographic_group TEXT NOT NULL,
	fairness_measure TEXT NOT NULL,
	value DOUBLE PRECISION,
	coalesced_n INTEGER
)`

// Load replaces the table contents with rows using COPY.
func Load(ctx context.Context, db *sql.DB, table string, rows []models.Row) error {
	if !query.ValidTable(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(schema, table)); err != nil {
		return fmt.Errorf("create %s table: %w", table, classify(err))
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", classify(err))
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "TRUNCATE "+table+" RESTART IDENTITY"); err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, models.Columns...))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	for _, r := range rows {
		var value any
		if r.Value != nil {
			value = *r.Value
		}
		if _, err := stmt.ExecContext(ctx, r.State, r.Year, r.DemographicCategory, r.DemographicGroup, r.FairnessMeasure, value, r.CoalescedN); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("copy row: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

// classify marks connection failures as unavailability so callers can
// tell an outage from a bad query.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
		}
		return err
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}
	return err
}
