package catalog

// MeasureColors is the categorical palette for line and point series.
var MeasureColors = []string{
	"#e60049", "#0bb4ff", "#50e991", "#e6d800", "#9b19f5",
	"#ffa300", "#dc0ab4", "#b3d4ff", "#00bfa0",
}

// MapColors is the 20-step diverging palette for the choropleth, ordered
// from the most negative to the most positive value.
var MapColors = []string{
	"#084D49", "#115653", "#1B605D", "#256A67", "#237877", "#1E8788", "#19969A",
	"#2BA2A7", "#47AFB2", "#64BBBE", "#7EB7BD", "#96A5AF", "#AF92A2", "#BC7E93",
	"#B46982", "#AC5371", "#A43E62", "#992957", "#8E144C", "#830042",
}

var groupColors = map[string]string{
	"White":                      "#95A5A6",
	"Black":                      "#E74C3C",
	"Hispanic":                   "#3498DB",
	"Asian":                      "#F39C12",
	"Native American":            "#9B59B6",
	"Male":                       "#34495E",
	"Female":                     "#E91E63",
	"Two or More Minority Races": "#16A085",
	"Other":                      "#95A5A6",
}

// GroupColor returns the fixed color of a demographic group.
func GroupColor(group string) (string, bool) {
	c, ok := groupColors[group]
	return c, ok
}
