package filter

import (
	"slices"

	"fairdash/internal/fairness/metadata"
	"fairdash/internal/fairness/models"
)

// ComparableMeasures are the measures offered by the multi-measure panel.
func ComparableMeasures(md *metadata.Cache) []string {
	var out []string
	for _, m := range md.FairnessMeasures() {
		if models.ConfigFor(m).Comparable {
			out = append(out, m)
		}
	}
	return out
}

// EligibleGroups returns the groups that are meaningful targets for a
// measure. Level measures cover every group; difference measures exclude
// the reference groups they are expressed against.
func EligibleGroups(md *metadata.Cache, measure string) []string {
	all := md.AllDemographicGroups()
	if models.ConfigFor(measure).Level {
		return all
	}
	return withoutReferenceGroups(all)
}

// MeasuresPanelGroups are the group options of the measures panel. Only
// comparable measures are plotted there, so reference groups never apply.
func MeasuresPanelGroups(md *metadata.Cache) []string {
	return withoutReferenceGroups(md.AllDemographicGroups())
}

// StatesPanelGroups are the group options of the states panel: the groups
// of the selected category that are eligible for the measure. The result
// is empty when a difference measure meets a category made only of
// reference groups; the panel then has no group and asks for a selection.
func StatesPanelGroups(md *metadata.Cache, category, measure string) []string {
	groups := md.GroupsByCategory(category)
	eligible := EligibleGroups(md, measure)
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if slices.Contains(eligible, g) {
			out = append(out, g)
		}
	}
	return out
}

// ResetGroup keeps group when it is eligible, otherwise picks "Black" when
// eligible, otherwise the first eligible group, otherwise "".
func ResetGroup(group string, eligible []string) string {
	if slices.Contains(eligible, group) {
		return group
	}
	if slices.Contains(eligible, models.GroupBlack) {
		return models.GroupBlack
	}
	if len(eligible) > 0 {
		return eligible[0]
	}
	return ""
}

// FirstGroup returns the first group of a category, or "" when it has none.
func FirstGroup(md *metadata.Cache, category string) string {
	groups := md.GroupsByCategory(category)
	if len(groups) == 0 {
		return ""
	}
	return groups[0]
}

func withoutReferenceGroups(groups []string) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if !models.IsReferenceGroup(g) {
			out = append(out, g)
		}
	}
	return out
}
