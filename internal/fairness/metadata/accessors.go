package metadata

import (
	"slices"

	"fairdash/internal/fairness/models"
)

// States returns display names, "U.S." first then alphabetical.
func (c *Cache) States() []string { return slices.Clone(c.states) }

// Years returns the calendar years present, ascending.
func (c *Cache) Years() []int { return slices.Clone(c.years) }

// YearRange bounds every year-range control.
func (c *Cache) YearRange() models.YearRange { return c.yearRange }

// MinYear is the earliest year in the dataset.
func (c *Cache) MinYear() int { return c.yearRange.Min }

// MaxYear is the latest year in the dataset.
func (c *Cache) MaxYear() int { return c.yearRange.Max }

// FairnessMeasures returns measures in their stable legend order.
func (c *Cache) FairnessMeasures() []string { return slices.Clone(c.measures) }

// MeasureIndex is a measure's position in FairnessMeasures, or -1.
func (c *Cache) MeasureIndex(measure string) int {
	if i, ok := c.measureIndex[measure]; ok {
		return i
	}
	return -1
}

// DemographicCategories returns category display names.
func (c *Cache) DemographicCategories() []string { return slices.Clone(c.categories) }

// GroupsByCategory returns the groups of a display category.
func (c *Cache) GroupsByCategory(category string) []string {
	return slices.Clone(c.groupsBy[category])
}

// AllDemographicGroups returns every group regardless of category.
func (c *Cache) AllDemographicGroups() []string { return slices.Clone(c.allGroups) }

// StateCode translates a state display name back to its dataset code.
func (c *Cache) StateCode(display string) (string, bool) {
	code, ok := c.stateCode[display]
	return code, ok
}

// StateDisplay translates a dataset state code to its display name.
func (c *Cache) StateDisplay(code string) string {
	if display, ok := c.stateDisplay[code]; ok {
		return display
	}
	return code
}

// CategoryCode translates a category display name back to its dataset code.
func (c *Cache) CategoryCode(display string) (string, bool) {
	code, ok := c.categoryCode[display]
	return code, ok
}

// CategoryDisplay translates a dataset category code to its display name.
func (c *Cache) CategoryDisplay(raw string) string {
	if display, ok := c.categoryDisplay[raw]; ok {
		return display
	}
	return CategoryDisplayName(raw)
}

func (c *Cache) HasState(display string) bool {
	_, ok := c.stateCode[display]
	return ok
}

func (c *Cache) HasMeasure(measure string) bool {
	_, ok := c.measureIndex[measure]
	return ok
}

func (c *Cache) HasCategory(display string) bool {
	_, ok := c.categoryCode[display]
	return ok
}

func (c *Cache) HasYear(year int) bool {
	_, ok := slices.BinarySearch(c.years, year)
	return ok
}

// Snapshot is the serializable view of the cache.
type Snapshot struct {
	States                []string            `json:"states"`
	Years                 []int               `json:"years"`
	MinYear               int                 `json:"min_year"`
	MaxYear               int                 `json:"max_year"`
	FairnessMeasures      []string            `json:"fairness_measures"`
	DemographicCategories []string            `json:"demographic_categories"`
	GroupsByCategory      map[string][]string `json:"demographic_groups_by_category"`
	AllDemographicGroups  []string            `json:"all_demographic_groups"`
	Tabs                  []models.Tab        `json:"tabs"`
}

// Snapshot copies the cache into a Snapshot.
func (c *Cache) Snapshot() Snapshot {
	groups := make(map[string][]string, len(c.groupsBy))
	for k, v := range c.groupsBy {
		groups[k] = slices.Clone(v)
	}
	return Snapshot{
		States:                c.States(),
		Years:                 c.Years(),
		MinYear:               c.yearRange.Min,
		MaxYear:               c.yearRange.Max,
		FairnessMeasures:      c.FairnessMeasures(),
		DemographicCategories: c.DemographicCategories(),
		GroupsByCategory:      groups,
		AllDemographicGroups:  c.AllDemographicGroups(),
		Tabs:                  slices.Clone(models.Tabs),
	}
}
