// Package query turns panel selections into declarative predicate sets and
// serializes them to SQL at a single boundary.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fairdash/internal/fairness/models"
)

// ErrEmptySelection means the panel selects nothing, so no query is issued.
var ErrEmptySelection = errors.New("empty selection")

// ErrNoTranslation means a display value has no dataset code.
var ErrNoTranslation = errors.New("no dataset code for display value")

// Query is a conjunction of equality, membership and range predicates over
// the dataset. Values are raw dataset codes, never display names. A
// non-null value is always required.
type Query struct {
	Panel     models.PanelID    `json:"panel"`
	Measures  []string          `json:"measures,omitempty"`
	State     string            `json:"state,omitempty"`
	Category  string            `json:"demographic_category,omitempty"`
	Group     string            `json:"demographic_group,omitempty"`
	Year      int               `json:"year,omitempty"`
	YearRange *models.YearRange `json:"year_range,omitempty"`
	OrderBy   []string          `json:"order_by"`
}

// QueryError carries the predicate set of a query the engine could not run.
type QueryError struct {
	Query Query
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Predicate is one condition of a query, for logging and error reports.
type Predicate struct {
	Column string `json:"column"`
	Op     string `json:"op"`
	Values []any  `json:"values,omitempty"`
}

// Predicates lists the conditions of q in serialization order.
func (q Query) Predicates() []Predicate {
	preds := []Predicate{{Column: models.ColumnValue, Op: "IS NOT NULL"}}
	if len(q.Measures) > 0 {
		values := make([]any, len(q.Measures))
		for i, m := range q.Measures {
			values[i] = m
		}
		preds = append(preds, Predicate{Column: models.ColumnFairnessMeasure, Op: "IN", Values: values})
	}
	if q.State != "" {
		preds = append(preds, Predicate{Column: models.ColumnState, Op: "=", Values: []any{q.State}})
	}
	if q.Category != "" {
		preds = append(preds, Predicate{Column: models.ColumnDemographicCategory, Op: "=", Values: []any{q.Category}})
	}
	if q.Group != "" {
		preds = append(preds, Predicate{Column: models.ColumnDemographicGroup, Op: "=", Values: []any{q.Group}})
	}
	if q.YearRange != nil {
		preds = append(preds, Predicate{Column: models.ColumnYear, Op: "BETWEEN", Values: []any{q.YearRange.Min, q.YearRange.Max}})
	} else if q.Year != 0 {
		preds = append(preds, Predicate{Column: models.ColumnYear, Op: "=", Values: []any{q.Year}})
	}
	return preds
}

// String renders the predicate set for logs.
func (q Query) String() string {
	parts := make([]string, 0, 6)
	for _, p := range q.Predicates() {
		if len(p.Values) == 0 {
			parts = append(parts, p.Column+" "+p.Op)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s %v", p.Column, p.Op, p.Values))
	}
	return "{" + strings.Join(parts, " AND ") + "}"
}

// Key is a stable identifier for caching results of q.
func (q Query) Key() string {
	b, _ := json.Marshal(q)
	return string(b)
}

// Matches evaluates the predicate set against a row.
func (q Query) Matches(r models.Row) bool {
	if r.Value == nil {
		return false
	}
	if len(q.Measures) > 0 && !contains(q.Measures, r.FairnessMeasure) {
		return false
	}
	if q.State != "" && r.State != q.State {
		return false
	}
	if q.Category != "" && r.DemographicCategory != q.Category {
		return false
	}
	if q.Group != "" && r.DemographicGroup != q.Group {
		return false
	}
	if q.YearRange != nil {
		return q.YearRange.Contains(r.Year)
	}
	if q.Year != 0 && r.Year != q.Year {
		return false
	}
	return true
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
