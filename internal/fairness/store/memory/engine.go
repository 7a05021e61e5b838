// Package memory is an Engine over rows held in process memory.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"fairdash/internal/fairness/models"
	"fairdash/internal/fairness/query"
	"fairdash/pkg/platform/sentinel"
)

// Engine evaluates predicate sets by scanning rows.
type Engine struct {
	mu     sync.RWMutex
	rows   []models.Row
	closed bool
}

// New returns an engine over a copy of rows, kept in the given order.
func New(rows []models.Row) *Engine {
	return &Engine{rows: append([]models.Row{}, rows...)}
}

func (e *Engine) Query(ctx context.Context, q query.Query) ([]models.Row, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.ready(ctx); err != nil {
		return nil, err
	}
	out := make([]models.Row, 0)
	for _, r := range e.rows {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	q.SortRows(out)
	return out, nil
}

// DistinctValues returns values in first-seen row order.
func (e *Engine) DistinctValues(ctx context.Context, column string, where ...models.Condition) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.ready(ctx); err != nil {
		return nil, err
	}
	if !models.IsColumn(column) {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	seen := make(map[string]struct{})
	var out []string
rows:
	for _, r := range e.rows {
		for _, c := range where {
			if r.Field(c.Column) != c.Value {
				continue rows
			}
		}
		v, ok := fieldValue(r, column)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

func (e *Engine) YearRange(ctx context.Context) (models.YearRange, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.ready(ctx); err != nil {
		return models.YearRange{}, err
	}
	var yr models.YearRange
	for i, r := range e.rows {
		if i == 0 || r.Year < yr.Min {
			yr.Min = r.Year
		}
		if i == 0 || r.Year > yr.Max {
			yr.Max = r.Year
		}
	}
	return yr, nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *Engine) ready(ctx context.Context) error {
	if e.closed {
		return fmt.Errorf("memory engine closed: %w", sentinel.ErrUnavailable)
	}
	return ctx.Err()
}

func fieldValue(r models.Row, column string) (string, bool) {
	switch column {
	case models.ColumnValue:
		if r.Value == nil {
			return "", false
		}
		return strconv.FormatFloat(*r.Value, 'f', -1, 64), true
	case models.ColumnCoalescedN:
		return strconv.Itoa(r.CoalescedN), true
	default:
		v := r.Field(column)
		return v, v != ""
	}
}
