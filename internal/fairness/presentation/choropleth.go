package presentation

import (
	"math"

	"fairdash/internal/fairness/catalog"
)

// ScaleKind classifies a choropleth color scale.
type ScaleKind string

const (
	ScaleDiverging          ScaleKind = "diverging"
	ScaleSequentialPositive ScaleKind = "sequential_positive"
	ScaleSequentialNegative ScaleKind = "sequential_negative"
)

// Scale is a color domain and the palette that spans it.
type Scale struct {
	Kind   ScaleKind  `json:"kind"`
	Domain [2]float64 `json:"domain"`
	Range  []string   `json:"range"`
}

// Choropleth picks a scale for one slice of values across states. Values on
// both sides of zero get a symmetric diverging scale. One-sided values get a
// sequential scale anchored at zero so their spread is not flattened.
func Choropleth(values []float64) Scale {
	palette := catalog.MapColors
	half := len(palette) / 2
	if len(values) == 0 {
		return Scale{Kind: ScaleSequentialPositive, Domain: [2]float64{0, 1}, Range: clone(palette[half:])}
	}
	lo, hi := bounds(values)
	switch {
	case lo >= 0:
		if hi == 0 {
			hi = 1
		}
		return Scale{Kind: ScaleSequentialPositive, Domain: [2]float64{0, hi}, Range: clone(palette[half:])}
	case hi <= 0:
		if lo == 0 {
			lo = -1
		}
		return Scale{Kind: ScaleSequentialNegative, Domain: [2]float64{lo, 0}, Range: clone(palette[:half])}
	default:
		m := math.Max(math.Abs(lo), math.Abs(hi))
		return Scale{Kind: ScaleDiverging, Domain: [2]float64{-m, m}, Range: clone(palette)}
	}
}

func clone(s []string) []string {
	return append([]string{}, s...)
}
