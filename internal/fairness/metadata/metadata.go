// Package metadata builds the one-time snapshot of dataset dimensions that
// every panel draws its option sets from. A Cache is immutable once built.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"fairdash/internal/fairness/catalog"
	"fairdash/internal/fairness/models"
)

var tracer = otel.Tracer("fairdash/metadata")

// Source is the slice of the query engine the cache is built from.
type Source interface {
	DistinctValues(ctx context.Context, column string, where ...models.Condition) ([]string, error)
	YearRange(ctx context.Context) (models.YearRange, error)
}

// InitializationError reports that the dataset could not be described.
// It is fatal: nothing can be rendered without metadata.
type InitializationError struct {
	Dimension string
	Err       error
}

func (e *InitializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("metadata initialization failed for %s: %v", e.Dimension, e.Err)
	}
	return fmt.Sprintf("metadata initialization failed for %s", e.Dimension)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// ErrNoValues marks a required dimension with zero distinct values.
var ErrNoValues = errors.New("no values")

// Dimensions are the raw distinct values read from the dataset.
type Dimensions struct {
	States     []string
	Years      []string
	Measures   []string
	Categories []string
	Groups     []string
	// GroupsByCategory is keyed by raw category code.
	GroupsByCategory map[string][]string
	YearRange        models.YearRange
}

// Cache is the immutable metadata snapshot.
type Cache struct {
	states     []string
	years      []int
	yearRange  models.YearRange
	measures   []string
	categories []string
	groupsBy   map[string][]string
	allGroups  []string

	stateCode       map[string]string
	stateDisplay    map[string]string
	categoryCode    map[string]string
	categoryDisplay map[string]string
	measureIndex    map[string]int
}

// Build queries the source for every dimension and returns the snapshot.
func Build(ctx context.Context, src Source) (*Cache, error) {
	ctx, span := tracer.Start(ctx, "metadata.Build")
	defer span.End()

	var dims Dimensions
	g, gctx := errgroup.WithContext(ctx)
	distinct := func(dimension, column string, dst *[]string) {
		g.Go(func() error {
			values, err := src.DistinctValues(gctx, column)
			if err != nil {
				return &InitializationError{Dimension: dimension, Err: err}
			}
			*dst = values
			return nil
		})
	}
	distinct("states", models.ColumnState, &dims.States)
	distinct("years", models.ColumnYear, &dims.Years)
	distinct("fairness measures", models.ColumnFairnessMeasure, &dims.Measures)
	distinct("demographic categories", models.ColumnDemographicCategory, &dims.Categories)
	distinct("demographic groups", models.ColumnDemographicGroup, &dims.Groups)
	g.Go(func() error {
		yr, err := src.YearRange(gctx)
		if err != nil {
			return &InitializationError{Dimension: "year range", Err: err}
		}
		dims.YearRange = yr
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	groups := make([][]string, len(dims.Categories))
	g, gctx = errgroup.WithContext(ctx)
	for i, category := range dims.Categories {
		g.Go(func() error {
			values, err := src.DistinctValues(gctx, models.ColumnDemographicGroup,
				models.Condition{Column: models.ColumnDemographicCategory, Value: category})
			if err != nil {
				return &InitializationError{Dimension: "demographic groups for " + category, Err: err}
			}
			groups[i] = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	dims.GroupsByCategory = make(map[string][]string, len(dims.Categories))
	for i, category := range dims.Categories {
		dims.GroupsByCategory[category] = groups[i]
	}

	c, err := FromDimensions(dims)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return c, nil
}

// FromDimensions assembles a Cache from raw dimension values.
func FromDimensions(d Dimensions) (*Cache, error) {
	required := []struct {
		name   string
		values []string
	}{
		{"states", d.States},
		{"years", d.Years},
		{"fairness measures", d.Measures},
		{"demographic categories", d.Categories},
		{"demographic groups", d.Groups},
	}
	for _, r := range required {
		if len(nonEmpty(r.values)) == 0 {
			return nil, &InitializationError{Dimension: r.name, Err: ErrNoValues}
		}
	}

	c := &Cache{
		stateCode:       make(map[string]string),
		stateDisplay:    make(map[string]string),
		categoryCode:    make(map[string]string),
		categoryDisplay: make(map[string]string),
		groupsBy:        make(map[string][]string),
		measureIndex:    make(map[string]int),
	}

	for _, code := range nonEmpty(d.States) {
		display := catalog.StateName(code)
		if _, taken := c.stateCode[display]; taken {
			continue
		}
		c.stateCode[display] = code
		c.stateDisplay[code] = display
		c.states = append(c.states, display)
	}
	sortStates(c.states)

	for _, raw := range nonEmpty(d.Years) {
		y, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, &InitializationError{Dimension: "years", Err: fmt.Errorf("parse year %q: %w", raw, err)}
		}
		c.years = append(c.years, y)
	}
	sort.Ints(c.years)
	c.years = compactInts(c.years)
	c.yearRange = d.YearRange
	if c.yearRange.Min == 0 && c.yearRange.Max == 0 {
		c.yearRange = models.YearRange{Min: c.years[0], Max: c.years[len(c.years)-1]}
	}
	if c.yearRange.Min > c.yearRange.Max {
		return nil, &InitializationError{Dimension: "year range",
			Err: fmt.Errorf("min %d after max %d", c.yearRange.Min, c.yearRange.Max)}
	}

	for _, m := range nonEmpty(d.Measures) {
		if _, dup := c.measureIndex[m]; dup {
			continue
		}
		c.measureIndex[m] = len(c.measures)
		c.measures = append(c.measures, m)
	}

	for _, raw := range nonEmpty(d.Categories) {
		display := CategoryDisplayName(raw)
		if _, taken := c.categoryCode[display]; taken {
			continue
		}
		c.categoryCode[display] = raw
		c.categoryDisplay[raw] = display
		c.categories = append(c.categories, display)
		c.groupsBy[display] = dedupe(nonEmpty(d.GroupsByCategory[raw]))
	}

	// Category groups are folded into the global set so that every group a
	// category offers is also selectable where no category is fixed.
	all := dedupe(nonEmpty(d.Groups))
	seen := make(map[string]struct{}, len(all))
	for _, g := range all {
		seen[g] = struct{}{}
	}
	for _, display := range c.categories {
		for _, g := range c.groupsBy[display] {
			if _, ok := seen[g]; !ok {
				seen[g] = struct{}{}
				all = append(all, g)
			}
		}
	}
	c.allGroups = all

	return c, nil
}

// CategoryDisplayName maps a raw category code to its display label.
func CategoryDisplayName(raw string) string {
	switch raw {
	case "race":
		return "Race"
	case "sex":
		return "Sex"
	default:
		return raw
	}
}

// sortStates puts the national aggregate first, then sorts alphabetically.
func sortStates(states []string) {
	sort.SliceStable(states, func(i, j int) bool {
		a, b := states[i], states[j]
		if a == models.StateUS || b == models.StateUS {
			return a == models.StateUS && b != models.StateUS
		}
		return a < b
	})
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func compactInts(values []int) []int {
	out := values[:0]
	for i, v := range values {
		if i > 0 && v == values[i-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}
