package query

import (
	"cmp"
	"slices"

	"fairdash/internal/fairness/models"
)

// SortRows orders rows by q's order columns, in place and stably.
func (q Query) SortRows(rows []models.Row) {
	order := orderColumns(q.OrderBy)
	slices.SortStableFunc(rows, func(a, b models.Row) int {
		for _, col := range order {
			var c int
			if col == models.ColumnYear {
				c = cmp.Compare(a.Year, b.Year)
			} else {
				c = cmp.Compare(a.Field(col), b.Field(col))
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}
