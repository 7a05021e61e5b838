// Package filter owns the per-panel selection state. Every change arrives as
// an Event and passes through the panel's reducer, which returns a new state
// whose fields are all members of their currently valid option sets.
package filter

import "fairdash/internal/fairness/models"

// MeasuresState is the selection of the measures-comparison panel.
type MeasuresState struct {
	State            string   `json:"state"`
	DemographicGroup string   `json:"demographic_group"`
	Measures         []string `json:"measures"`
}

// DemographicsState is the selection of the demographics-comparison panel.
type DemographicsState struct {
	Measure             string `json:"measure"`
	State               string `json:"state"`
	DemographicCategory string `json:"demographic_category"`
}

// StatesState is the selection of the states-comparison panel.
type StatesState struct {
	Measure             string `json:"measure"`
	Year                int    `json:"year"`
	DemographicCategory string `json:"demographic_category"`
	DemographicGroup    string `json:"demographic_group"`
}

// Panels holds the selection of every panel plus the shared year range.
type Panels struct {
	Measures     MeasuresState     `json:"measures"`
	Demographics DemographicsState `json:"demographics"`
	States       StatesState       `json:"states"`
	YearRange    models.YearRange  `json:"year_range"`
}

// Clone returns a copy that shares no slices with s.
func (s MeasuresState) Clone() MeasuresState {
	out := s
	out.Measures = append([]string{}, s.Measures...)
	return out
}

// Clone returns a deep copy of p.
func (p Panels) Clone() Panels {
	out := p
	out.Measures = p.Measures.Clone()
	return out
}
