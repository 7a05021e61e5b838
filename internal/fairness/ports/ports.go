// Package ports defines the boundary between the fairness service and the
// query engines behind it.
package ports

import (
	"context"

	"fairdash/internal/fairness/models"
	"fairdash/internal/fairness/query"
)

//go:generate mockgen -source=ports.go -destination=../service/mocks/engine_mock.go -package=mocks

// Engine executes predicate sets against the fairness dataset.
type Engine interface {
	// Query returns the rows matching q, ordered by q.OrderBy.
	Query(ctx context.Context, q query.Query) ([]models.Row, error)

	// DistinctValues lists the non-null values of a column, optionally
	// restricted by equality conditions.
	DistinctValues(ctx context.Context, column string, where ...models.Condition) ([]string, error)

	// YearRange returns the earliest and latest year in the dataset.
	YearRange(ctx context.Context) (models.YearRange, error)

	Close() error
}
