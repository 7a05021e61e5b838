package presentation

import (
	"fairdash/internal/fairness/catalog"
	"fairdash/internal/fairness/metadata"
)

// SeriesKind says what a chart's series are.
type SeriesKind string

const (
	SeriesMeasures SeriesKind = "measures"
	SeriesGroups   SeriesKind = "groups"
)

// Series is one legend entry.
type Series struct {
	Key   string `json:"key"`
	Color string `json:"color"`
}

// SeriesColors assigns a color to every key. Measures keep the color of
// their position in the dataset so a measure looks the same whatever else
// is selected. Groups use their fixed color and fall back to the palette by
// position in keys.
func SeriesColors(keys []string, md *metadata.Cache, kind SeriesKind) []Series {
	palette := catalog.MeasureColors
	out := make([]Series, len(keys))
	for i, key := range keys {
		color := palette[i%len(palette)]
		switch kind {
		case SeriesMeasures:
			if idx := md.MeasureIndex(key); idx >= 0 {
				color = palette[idx%len(palette)]
			}
		case SeriesGroups:
			if c, ok := catalog.GroupColor(key); ok {
				color = c
			}
		}
		out[i] = Series{Key: key, Color: color}
	}
	return out
}
