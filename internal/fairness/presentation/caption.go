package presentation

import (
	"fairdash/internal/fairness/catalog"
	"fairdash/internal/fairness/models"
)

// Definition pairs a measure with its explanation.
type Definition struct {
	Measure string `json:"measure"`
	Text    string `json:"text"`
}

// Caption is the explanatory block under a chart.
type Caption struct {
	Heading     string       `json:"heading"`
	Definitions []Definition `json:"definitions"`
	Note        string       `json:"note"`
	Source      string       `json:"source"`
}

// CaptionFor builds the caption for the given measures. reference is the
// reference group the values are relative to. multi selects the wording of
// the panel that compares several measures.
func CaptionFor(measures []string, reference string, multi bool) Caption {
	heading := "About the selected fairness measure:"
	note := "Note: All values are differences relative to " + reference + " (reference group)."
	if multi {
		heading = "About the selected fairness measures:"
		note = "Note: All measures are depicted as differences relative to " + reference + " (reference group)."
	} else if len(measures) == 1 && models.ConfigFor(measures[0]).Level {
		note = "Note: " + measures[0] + " is shown as levels."
	}
	defs := make([]Definition, len(measures))
	for i, m := range measures {
		defs[i] = Definition{Measure: m, Text: catalog.Definition(m)}
	}
	return Caption{
		Heading:     heading,
		Definitions: defs,
		Note:        note,
		Source:      catalog.DataSourceLine(measures),
	}
}
