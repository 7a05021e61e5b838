// Package catalog holds the static lookup tables of the dashboard: state
// names, measure definitions, narrative templates, palettes and tile
// coordinates.
package catalog

var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas", "CA": "California",
	"CO": "Colorado", "CT": "Connecticut", "DE": "Delaware", "FL": "Florida", "GA": "Georgia",
	"HI": "Hawaii", "ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi", "MO": "Missouri",
	"MT": "Montana", "NE": "Nebraska", "NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey",
	"NM": "New Mexico", "NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah", "VT": "Vermont",
	"VA": "Virginia", "WA": "Washington", "WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
	"DC": "District of Columbia", "U.S.": "U.S.",
}

// StateName returns the display name for a raw state code. Unknown codes
// are their own display name.
func StateName(code string) string {
	if name, ok := stateNames[code]; ok {
		return name
	}
	return code
}

// HexCoord places a state on the hex-tile map grid.
type HexCoord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

var hexCoords = map[string]HexCoord{
	"AK": {0, 0}, "ME": {11, 0},
	"VT": {10, 1}, "NH": {11, 1},
	"WA": {0, 2}, "MT": {2, 2}, "ND": {3, 2}, "MN": {4, 2}, "WI": {5, 2}, "MI": {7, 2}, "NY": {9, 2}, "MA": {10, 2}, "RI": {11, 2},
	"ID": {1, 3}, "WY": {2, 3}, "SD": {3, 3}, "IA": {4, 3}, "IL": {5, 3}, "IN": {6, 3}, "OH": {7, 3}, "PA": {8, 3}, "NJ": {9, 3}, "CT": {10, 3}, "DE": {11, 3},
	"OR": {0, 4}, "NV": {1, 4}, "CO": {3, 4}, "NE": {4, 4}, "MO": {5, 4}, "KY": {6, 4}, "WV": {7, 4}, "VA": {8, 4}, "MD": {9, 4},
	"CA": {0, 5}, "UT": {2, 5}, "KS": {4, 5}, "AR": {5, 5}, "TN": {6, 5}, "NC": {7, 5}, "SC": {8, 5},
	"AZ": {2, 6}, "NM": {3, 6}, "OK": {4, 6}, "LA": {5, 6}, "MS": {6, 6}, "AL": {7, 6}, "GA": {8, 6},
	"HI": {0, 7}, "TX": {4, 7}, "FL": {9, 7},
}

// HexCoordFor returns the tile position of a raw state code. The national
// aggregate and DC have no tile.
func HexCoordFor(code string) (HexCoord, bool) {
	c, ok := hexCoords[code]
	return c, ok
}
