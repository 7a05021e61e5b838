package models

import "strings"

// Fairness measure names as they appear in the dataset.
const (
	MeasureStatisticalParity      = "Statistical Parity"
	MeasurePredictiveParity       = "Predictive Parity"
	MeasureMarginalCandidates     = "Marginal Candidates"
	MeasureEqualityOfOpportunity  = "Equality of Opportunity"
	MeasureEqualityOfGoodwill     = "Equality of Goodwill"
	MeasureConditionalParityLarge = "Conditional Statistical Parity - Large"
	MeasureConditionalParitySmall = "Conditional Statistical Parity - Small"
	MeasureRepresentativeness     = "Representativeness"
)

// Demographic groups with fixed roles.
const (
	GroupWhite  = "White"
	GroupMale   = "Male"
	GroupFemale = "Female"
	GroupBlack  = "Black"
)

// StateUS is the synthetic national aggregate.
const StateUS = "U.S."

// DataSource names the upstream data a measure is computed from.
type DataSource string

const (
	SourceHMDA      DataSource = "HMDA"
	SourceICEMcDash DataSource = "ICE, McDash"
)

// MeasureConfig captures how a measure is reported. Level measures are
// shown as absolute levels for every group, reference groups included.
// Difference measures are relative to a reference group.
type MeasureConfig struct {
	Name string
	// Level is true when values are levels rather than differences.
	Level bool
	// Comparable is false for measures excluded from the multi-measure panel.
	Comparable bool
	// Inverted flips the comparison word: a positive value reads as "lower".
	Inverted bool
	Source   DataSource
}

var measureConfigs = map[string]MeasureConfig{
	MeasureStatisticalParity:      {Name: MeasureStatisticalParity, Comparable: true, Source: SourceHMDA},
	MeasurePredictiveParity:       {Name: MeasurePredictiveParity, Comparable: true, Source: SourceICEMcDash},
	MeasureMarginalCandidates:     {Name: MeasureMarginalCandidates, Comparable: true, Inverted: true, Source: SourceHMDA},
	MeasureEqualityOfOpportunity:  {Name: MeasureEqualityOfOpportunity, Comparable: true, Source: SourceHMDA},
	MeasureEqualityOfGoodwill:     {Name: MeasureEqualityOfGoodwill, Comparable: true, Source: SourceHMDA},
	MeasureConditionalParityLarge: {Name: MeasureConditionalParityLarge, Comparable: true, Source: SourceHMDA},
	MeasureConditionalParitySmall: {Name: MeasureConditionalParitySmall, Comparable: true, Source: SourceHMDA},
	MeasureRepresentativeness:     {Name: MeasureRepresentativeness, Level: true, Source: SourceICEMcDash},
}

// ConfigFor returns the reporting configuration of a measure. Measures not
// known ahead of time are treated as comparable HMDA differences.
func ConfigFor(measure string) MeasureConfig {
	if cfg, ok := measureConfigs[measure]; ok {
		return cfg
	}
	return MeasureConfig{Name: measure, Comparable: true, Source: SourceHMDA}
}

// IsReferenceGroup reports whether group is one of the fixed baselines.
func IsReferenceGroup(group string) bool {
	return group == GroupWhite || group == GroupMale
}

// ReferenceGroup returns the baseline a group's differences are expressed
// against: Male for Female, White for everything else.
func ReferenceGroup(group string) string {
	if group == GroupFemale {
		return GroupMale
	}
	return GroupWhite
}

// ReferenceGroupForCategory returns the baseline for a whole category,
// used where a panel plots every group of one category at once.
func ReferenceGroupForCategory(category string) string {
	if strings.EqualFold(strings.TrimSpace(category), "sex") {
		return GroupMale
	}
	return GroupWhite
}
