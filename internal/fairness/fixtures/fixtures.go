// Package fixtures provides a small deterministic fairness dataset for tests.
package fixtures

import (
	"strconv"

	"fairdash/internal/fairness/metadata"
	"fairdash/internal/fairness/models"
)

var (
	States   = []string{"CA", "TX", "U.S."}
	Years    = []int{2018, 2019, 2020}
	Measures = []string{
		models.MeasureStatisticalParity,
		models.MeasurePredictiveParity,
		models.MeasureMarginalCandidates,
		models.MeasureRepresentativeness,
	}
	GroupsByCategory = map[string][]string{
		"race": {"Asian", "Black", "Hispanic", "White"},
		"sex":  {"Female", "Male"},
	}
	Categories = []string{"race", "sex"}
)

// Rows returns the dataset in storage order. Difference measures have no
// rows for the reference groups. CA/Asian/Predictive Parity in 2018 has a
// suppressed (nil) value.
func Rows() []models.Row {
	var rows []models.Row
	for si, state := range States {
		for _, category := range Categories {
			for gi, group := range GroupsByCategory[category] {
				for mi, measure := range Measures {
					if models.IsReferenceGroup(group) && measure != models.MeasureRepresentativeness {
						continue
					}
					for yi, year := range Years {
						row := models.Row{
							State:               state,
							Year:                year,
							DemographicCategory: category,
							DemographicGroup:    group,
							FairnessMeasure:     measure,
							CoalescedN:          1000 * (si + 1) * (yi + 1),
						}
						if !(state == "CA" && group == "Asian" && measure == models.MeasurePredictiveParity && year == 2018) {
							row.Value = Value(si, gi, mi, yi)
						}
						rows = append(rows, row)
					}
				}
			}
		}
	}
	return rows
}

// Value is the deterministic metric for a position in the grid. Texas
// values are negative so that choropleth slices span zero.
func Value(si, gi, mi, yi int) *float64 {
	v := float64(mi+1) + float64(gi)*0.5 + float64(yi)*0.25
	if States[si] == "TX" {
		v = -v
	}
	return &v
}

// Dimensions derives metadata dimensions from rows in first-seen order.
func Dimensions(rows []models.Row) metadata.Dimensions {
	d := metadata.Dimensions{GroupsByCategory: map[string][]string{}}
	seen := map[string]map[string]bool{}
	add := func(key, value string, dst *[]string) {
		if seen[key] == nil {
			seen[key] = map[string]bool{}
		}
		if !seen[key][value] {
			seen[key][value] = true
			*dst = append(*dst, value)
		}
	}
	for _, r := range rows {
		add(models.ColumnState, r.State, &d.States)
		add(models.ColumnYear, strconv.Itoa(r.Year), &d.Years)
		add(models.ColumnFairnessMeasure, r.FairnessMeasure, &d.Measures)
		add(models.ColumnDemographicCategory, r.DemographicCategory, &d.Categories)
		add(models.ColumnDemographicGroup, r.DemographicGroup, &d.Groups)
		groups := d.GroupsByCategory[r.DemographicCategory]
		add("group:"+r.DemographicCategory, r.DemographicGroup, &groups)
		d.GroupsByCategory[r.DemographicCategory] = groups
		if d.YearRange.Min == 0 || r.Year < d.YearRange.Min {
			d.YearRange.Min = r.Year
		}
		if r.Year > d.YearRange.Max {
			d.YearRange.Max = r.Year
		}
	}
	return d
}

// Metadata builds the metadata cache for Rows. It panics on failure since
// the fixture is static.
func Metadata() *metadata.Cache {
	c, err := metadata.FromDimensions(Dimensions(Rows()))
	if err != nil {
		panic(err)
	}
	return c
}
