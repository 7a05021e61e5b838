package filter

import (
	"fmt"
	"slices"

	"fairdash/internal/fairness/metadata"
	"fairdash/internal/fairness/models"
	dErrors "fairdash/pkg/domain-errors"
	pkgstrings "fairdash/pkg/platform/strings"
)

// ReduceMeasures applies an event to the measures panel. An invalid value
// returns a validation error and the unchanged state.
func ReduceMeasures(s MeasuresState, ev Event, md *metadata.Cache) (MeasuresState, error) {
	next := s.Clone()
	switch e := ev.(type) {
	case SetState:
		if !md.HasState(e.State) {
			return s, invalid(FieldState, e.State)
		}
		next.State = e.State
	case SetGroup:
		if !slices.Contains(MeasuresPanelGroups(md), e.Group) {
			return s, invalid(FieldGroup, e.Group)
		}
		next.DemographicGroup = e.Group
	case SetMeasures:
		options := ComparableMeasures(md)
		requested := pkgstrings.DedupeAndTrim(e.Measures)
		for _, m := range requested {
			if !slices.Contains(options, m) {
				return s, invalid(FieldMeasures, m)
			}
		}
		next.Measures = pkgstrings.OrderLike(requested, options)
	default:
		return s, unsupported(models.PanelMeasures, ev)
	}
	next.DemographicGroup = ResetGroup(next.DemographicGroup, MeasuresPanelGroups(md))
	return next, nil
}

// ReduceDemographics applies an event to the demographics panel.
func ReduceDemographics(s DemographicsState, ev Event, md *metadata.Cache) (DemographicsState, error) {
	next := s
	switch e := ev.(type) {
	case SetMeasure:
		if !md.HasMeasure(e.Measure) {
			return s, invalid(FieldMeasure, e.Measure)
		}
		next.Measure = e.Measure
	case SetState:
		if !md.HasState(e.State) {
			return s, invalid(FieldState, e.State)
		}
		next.State = e.State
	case SetCategory:
		if !md.HasCategory(e.Category) {
			return s, invalid(FieldCategory, e.Category)
		}
		next.DemographicCategory = e.Category
	default:
		return s, unsupported(models.PanelDemographics, ev)
	}
	return next, nil
}

// ReduceStates applies an event to the states panel. A category change
// resets the group to the category's first group; a measure change keeps
// the group only while it stays eligible.
func ReduceStates(s StatesState, ev Event, md *metadata.Cache) (StatesState, error) {
	next := s
	switch e := ev.(type) {
	case SetMeasure:
		if !md.HasMeasure(e.Measure) {
			return s, invalid(FieldMeasure, e.Measure)
		}
		next.Measure = e.Measure
	case SetYear:
		if !md.HasYear(e.Year) {
			return s, invalid(FieldYear, fmt.Sprint(e.Year))
		}
		next.Year = e.Year
	case SetCategory:
		if !md.HasCategory(e.Category) {
			return s, invalid(FieldCategory, e.Category)
		}
		next.DemographicCategory = e.Category
		next.DemographicGroup = FirstGroup(md, e.Category)
	case SetGroup:
		if !slices.Contains(StatesPanelGroups(md, next.DemographicCategory, next.Measure), e.Group) {
			return s, invalid(FieldGroup, e.Group)
		}
		next.DemographicGroup = e.Group
	default:
		return s, unsupported(models.PanelStates, ev)
	}
	next.DemographicGroup = ResetGroup(next.DemographicGroup, StatesPanelGroups(md, next.DemographicCategory, next.Measure))
	return next, nil
}

// ReduceYearRange clamps a slider move to the dataset bounds. When the ends
// cross, the moved end snaps onto the other one.
func ReduceYearRange(current models.YearRange, e SetYearRange, md *metadata.Cache) models.YearRange {
	bounds := md.YearRange()
	next := models.YearRange{Min: clamp(e.Min, bounds), Max: clamp(e.Max, bounds)}
	if next.Min > next.Max {
		switch e.Moved {
		case BoundMin:
			next.Min = next.Max
		case BoundMax:
			next.Max = next.Min
		default:
			if next.Min != current.Min {
				next.Min = next.Max
			} else {
				next.Max = next.Min
			}
		}
	}
	return next
}

func clamp(year int, bounds models.YearRange) int {
	return max(bounds.Min, min(year, bounds.Max))
}

func invalid(field, value string) error {
	return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%q is not a valid %s", value, field))
}

func unsupported(panel models.PanelID, ev Event) error {
	return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("field %s is not available on the %s panel", ev.Field(), panel))
}
