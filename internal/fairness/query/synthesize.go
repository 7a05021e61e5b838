package query

import (
	"fmt"

	"fairdash/internal/fairness/filter"
	"fairdash/internal/fairness/metadata"
	"fairdash/internal/fairness/models"
)

// Synthesize builds the query for one panel from the current selections.
// Display values are translated back to dataset codes through md.
func Synthesize(panel models.PanelID, p filter.Panels, md *metadata.Cache) (Query, error) {
	switch panel {
	case models.PanelMeasures:
		return ForMeasures(p.Measures, p.YearRange, md)
	case models.PanelDemographics:
		return ForDemographics(p.Demographics, p.YearRange, md)
	case models.PanelStates:
		return ForStates(p.States, md)
	default:
		return Query{}, fmt.Errorf("unknown panel %q", panel)
	}
}

// ForMeasures queries the selected measures for one state and group over
// the year range, grouped by measure.
func ForMeasures(s filter.MeasuresState, years models.YearRange, md *metadata.Cache) (Query, error) {
	q := Query{
		Panel:     models.PanelMeasures,
		Measures:  append([]string{}, s.Measures...),
		Group:     s.DemographicGroup,
		YearRange: &years,
		OrderBy:   []string{models.ColumnFairnessMeasure, models.ColumnYear},
	}
	if len(s.Measures) == 0 {
		return q, ErrEmptySelection
	}
	code, err := stateCode(s.State, md)
	if err != nil {
		return q, &QueryError{Query: q, Err: err}
	}
	q.State = code
	return q, nil
}

// ForDemographics queries one measure for every group of a category over
// the year range, grouped by demographic group.
func ForDemographics(s filter.DemographicsState, years models.YearRange, md *metadata.Cache) (Query, error) {
	q := Query{
		Panel:     models.PanelDemographics,
		YearRange: &years,
		OrderBy:   []string{models.ColumnDemographicGroup, models.ColumnYear},
	}
	if s.Measure == "" {
		return q, ErrEmptySelection
	}
	q.Measures = []string{s.Measure}
	code, err := stateCode(s.State, md)
	if err != nil {
		return q, &QueryError{Query: q, Err: err}
	}
	q.State = code
	category, err := categoryCode(s.DemographicCategory, md)
	if err != nil {
		return q, &QueryError{Query: q, Err: err}
	}
	q.Category = category
	return q, nil
}

// ForStates queries one measure, year and group across every state.
func ForStates(s filter.StatesState, md *metadata.Cache) (Query, error) {
	q := Query{
		Panel:   models.PanelStates,
		Group:   s.DemographicGroup,
		Year:    s.Year,
		OrderBy: []string{models.ColumnState, models.ColumnYear},
	}
	if s.Measure == "" || s.DemographicGroup == "" {
		return q, ErrEmptySelection
	}
	q.Measures = []string{s.Measure}
	category, err := categoryCode(s.DemographicCategory, md)
	if err != nil {
		return q, &QueryError{Query: q, Err: err}
	}
	q.Category = category
	return q, nil
}

func stateCode(display string, md *metadata.Cache) (string, error) {
	code, ok := md.StateCode(display)
	if !ok {
		return "", fmt.Errorf("%w: state %q", ErrNoTranslation, display)
	}
	return code, nil
}

func categoryCode(display string, md *metadata.Cache) (string, error) {
	code, ok := md.CategoryCode(display)
	if !ok {
		return "", fmt.Errorf("%w: category %q", ErrNoTranslation, display)
	}
	return code, nil
}
