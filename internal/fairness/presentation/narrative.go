package presentation

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fairdash/internal/fairness/catalog"
	"fairdash/internal/fairness/models"
)

var printer = message.NewPrinter(language.English)

// SampleSize renders the tooltip suffix with thousands separators.
func SampleSize(n int) string {
	return printer.Sprintf("(Sample size: %d)", n)
}

// Comparison returns the comparison word for the sign of value. Inverted
// measures read the other way round.
func Comparison(measure string, value float64) string {
	higher := value >= 0
	if models.ConfigFor(measure).Inverted {
		higher = !higher
	}
	if higher {
		return "higher"
	}
	return "lower"
}

// Narrative is the hover sentence for one data point. Measures without a
// template only report the sample size.
func Narrative(measure, state, group, reference string, value float64, decimals, sampleSize int) string {
	text, ok := catalog.Narrative(measure, catalog.NarrativeArgs{
		State:      state,
		Group:      group,
		Value:      Magnitude(value, decimals),
		Comparison: Comparison(measure, value),
		Reference:  reference,
	})
	if !ok {
		return SampleSize(sampleSize)
	}
	return text + " " + SampleSize(sampleSize)
}
