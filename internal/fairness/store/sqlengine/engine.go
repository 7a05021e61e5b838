// Package sqlengine runs fairness queries against any database/sql backend.
// Dialect differences live in the query package; drivers only supply the
// connection and an error classifier.
package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fairdash/internal/fairness/models"
	"fairdash/internal/fairness/query"
)

// Engine is a SQL-backed query engine.
type Engine struct {
	db       *sql.DB
	dialect  query.Dialect
	table    string
	classify func(error) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithClassifier maps driver errors onto sentinel errors before they are
// wrapped and returned.
func WithClassifier(fn func(error) error) Option {
	return func(e *Engine) { e.classify = fn }
}

// New wraps an open database. The table name must be a plain identifier.
func New(db *sql.DB, dialect query.Dialect, table string, opts ...Option) (*Engine, error) {
	if db == nil {
		return nil, errors.New("sqlengine: db is required")
	}
	if !query.ValidTable(table) {
		return nil, fmt.Errorf("sqlengine: invalid table name %q", table)
	}
	e := &Engine{db: db, dialect: dialect, table: table, classify: func(err error) error { return err }}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// DB exposes the underlying handle for health checks.
func (e *Engine) DB() *sql.DB { return e.db }

func (e *Engine) Query(ctx context.Context, q query.Query) ([]models.Row, error) {
	text, args := q.SQL(e.dialect, e.table)
	rows, err := e.db.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, fmt.Errorf("query fairness rows: %w", e.classify(err))
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.Row, 0)
	for rows.Next() {
		var (
			r     models.Row
			value sql.NullFloat64
			n     sql.NullInt64
		)
		if err := rows.Scan(&r.State, &r.Year, &r.DemographicCategory, &r.DemographicGroup, &r.FairnessMeasure, &value, &n); err != nil {
			return nil, fmt.Errorf("scan fairness row: %w", err)
		}
		if value.Valid {
			v := value.Float64
			r.Value = &v
		}
		r.CoalescedN = int(n.Int64)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fairness rows: %w", e.classify(err))
	}
	return out, nil
}

func (e *Engine) DistinctValues(ctx context.Context, column string, where ...models.Condition) ([]string, error) {
	text, args, err := query.DistinctSQL(e.dialect, e.table, column, where...)
	if err != nil {
		return nil, err
	}
	rows, err := e.db.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", column, e.classify(err))
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan distinct %s: %w", column, err)
		}
		if v.Valid && v.String != "" {
			out = append(out, v.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate distinct %s: %w", column, e.classify(err))
	}
	return out, nil
}

func (e *Engine) YearRange(ctx context.Context) (models.YearRange, error) {
	var lo, hi sql.NullInt64
	if err := e.db.QueryRowContext(ctx, query.YearBoundsSQL(e.table)).Scan(&lo, &hi); err != nil {
		return models.YearRange{}, fmt.Errorf("year range: %w", e.classify(err))
	}
	if !lo.Valid || !hi.Valid {
		return models.YearRange{}, errors.New("year range: dataset has no years")
	}
	return models.YearRange{Min: int(lo.Int64), Max: int(hi.Int64)}, nil
}

func (e *Engine) Close() error {
	return e.db.Close()
}
