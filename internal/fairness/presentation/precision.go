// Package presentation maps query rows onto what a chart needs: colors,
// scale domains, decimal precision and the narrative and caption text.
package presentation

import (
	"math"
	"strconv"
)

// DefaultDecimals is used when there is nothing to measure.
const DefaultDecimals = 2

// Precision picks how many decimals to show for a set of values from the
// spread between the smallest and largest. The <1 and <10 bands both give
// two decimals.
func Precision(values []float64) int {
	if len(values) == 0 {
		return DefaultDecimals
	}
	lo, hi := bounds(values)
	spread := math.Abs(hi - lo)
	switch {
	case spread == 0:
		return 2
	case spread < 0.1:
		return 3
	case spread < 1:
		return 2
	case spread < 10:
		return 2
	default:
		return 1
	}
}

// Magnitude formats |v| with the given number of decimals.
func Magnitude(v float64, decimals int) string {
	return strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
