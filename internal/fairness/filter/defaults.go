package filter

import (
	"slices"

	"fairdash/internal/fairness/metadata"
	"fairdash/internal/fairness/models"
)

// ComputeDefaults derives every panel's initial selection. Each rule falls
// back to the first available option so that a dataset missing the preferred
// values still renders.
func ComputeDefaults(md *metadata.Cache) Panels {
	state := defaultState(md.States())
	measure := defaultMeasure(md.FairnessMeasures())
	category := first(md.DemographicCategories())

	statesGroup := ResetGroup(models.GroupBlack, StatesPanelGroups(md, category, measure))

	return Panels{
		Measures: MeasuresState{
			State:            state,
			DemographicGroup: defaultGroup(md.AllDemographicGroups()),
			Measures:         defaultMeasures(md.FairnessMeasures()),
		},
		Demographics: DemographicsState{
			Measure:             measure,
			State:               state,
			DemographicCategory: category,
		},
		States: StatesState{
			Measure:             measure,
			Year:                md.MaxYear(),
			DemographicCategory: category,
			DemographicGroup:    statesGroup,
		},
		YearRange: md.YearRange(),
	}
}

func defaultState(states []string) string {
	if slices.Contains(states, models.StateUS) {
		return models.StateUS
	}
	return first(states)
}

// defaultGroup prefers "Black" among non-reference groups, then the first
// remaining group, then the literal "Black".
func defaultGroup(groups []string) string {
	remaining := withoutReferenceGroups(groups)
	if slices.Contains(remaining, models.GroupBlack) {
		return models.GroupBlack
	}
	if len(remaining) > 0 {
		return remaining[0]
	}
	return models.GroupBlack
}

func defaultMeasures(measures []string) []string {
	var comparable []string
	for _, m := range measures {
		if m != models.MeasureRepresentativeness {
			comparable = append(comparable, m)
		}
	}
	var preferred []string
	for _, m := range comparable {
		if m == models.MeasureStatisticalParity || m == models.MeasurePredictiveParity {
			preferred = append(preferred, m)
		}
	}
	if len(preferred) > 0 {
		return preferred
	}
	if len(comparable) > 2 {
		return comparable[:2]
	}
	return append([]string{}, comparable...)
}

func defaultMeasure(measures []string) string {
	if slices.Contains(measures, models.MeasureStatisticalParity) {
		return models.MeasureStatisticalParity
	}
	return first(measures)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
