package filter

import (
	"strconv"

	"fairdash/internal/fairness/metadata"
	"fairdash/internal/fairness/models"
)

// Control describes one widget of a panel: its label, the options it may
// offer right now and the current selection.
type Control struct {
	Field    string   `json:"field"`
	Label    string   `json:"label"`
	Options  []string `json:"options"`
	Selected []string `json:"selected"`
	Multi    bool     `json:"multi,omitempty"`
}

// MeasuresControls lists the controls of the measures panel.
func MeasuresControls(s MeasuresState, md *metadata.Cache) []Control {
	return []Control{
		{Field: FieldMeasures, Label: "Select Fairness Measure(s)", Options: ComparableMeasures(md), Selected: append([]string{}, s.Measures...), Multi: true},
		{Field: FieldState, Label: "Select a State", Options: md.States(), Selected: []string{s.State}},
		{Field: FieldGroup, Label: "Select a Demographic", Options: MeasuresPanelGroups(md), Selected: []string{s.DemographicGroup}},
	}
}

// DemographicsControls lists the controls of the demographics panel.
func DemographicsControls(s DemographicsState, md *metadata.Cache) []Control {
	return []Control{
		{Field: FieldMeasure, Label: "Select a Fairness Measure", Options: md.FairnessMeasures(), Selected: []string{s.Measure}},
		{Field: FieldState, Label: "Select a State", Options: md.States(), Selected: []string{s.State}},
		{Field: FieldCategory, Label: "Select a Category", Options: md.DemographicCategories(), Selected: []string{s.DemographicCategory}},
	}
}

// StatesControls lists the controls of the states panel.
func StatesControls(s StatesState, md *metadata.Cache) []Control {
	years := md.Years()
	yearOptions := make([]string, len(years))
	for i, y := range years {
		yearOptions[i] = strconv.Itoa(y)
	}
	return []Control{
		{Field: FieldMeasure, Label: "Fairness Measure", Options: md.FairnessMeasures(), Selected: []string{s.Measure}},
		{Field: FieldYear, Label: "Year", Options: yearOptions, Selected: []string{strconv.Itoa(s.Year)}},
		{Field: FieldCategory, Label: "Demographic Category", Options: md.DemographicCategories(), Selected: []string{s.DemographicCategory}},
		{Field: FieldGroup, Label: "Demographic Group", Options: StatesPanelGroups(md, s.DemographicCategory, s.Measure), Selected: []string{s.DemographicGroup}},
	}
}

// YearRangeControl describes the shared slider of the time-series panels.
func YearRangeControl(r models.YearRange, md *metadata.Cache) Control {
	bounds := md.YearRange()
	return Control{
		Field:    FieldYearRange,
		Label:    "Year Range",
		Options:  []string{strconv.Itoa(bounds.Min), strconv.Itoa(bounds.Max)},
		Selected: []string{strconv.Itoa(r.Min), strconv.Itoa(r.Max)},
	}
}
