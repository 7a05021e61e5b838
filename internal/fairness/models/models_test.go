package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "fairdash/pkg/domain-errors"
)

func TestReferenceGroup(t *testing.T) {
	cases := map[string]string{
		"Female":   "Male",
		"Black":    "White",
		"Hispanic": "White",
		"Asian":    "White",
		"White":    "White",
		"Male":     "White",
		"":         "White",
	}
	for group, want := range cases {
		assert.Equal(t, want, ReferenceGroup(group), "group %q", group)
	}
}

func TestReferenceGroupForCategory(t *testing.T) {
	assert.Equal(t, GroupMale, ReferenceGroupForCategory("Sex"))
	assert.Equal(t, GroupMale, ReferenceGroupForCategory("sex"))
	assert.Equal(t, GroupWhite, ReferenceGroupForCategory("Race"))
	assert.Equal(t, GroupWhite, ReferenceGroupForCategory("Ethnicity"))
}

func TestParsePanelID(t *testing.T) {
	p, err := ParsePanelID(" States ")
	require.NoError(t, err)
	assert.Equal(t, PanelStates, p)

	_, err = ParsePanelID("panel4")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestConfigFor(t *testing.T) {
	rep := ConfigFor(MeasureRepresentativeness)
	assert.True(t, rep.Level)
	assert.False(t, rep.Comparable)
	assert.Equal(t, SourceICEMcDash, rep.Source)

	assert.True(t, ConfigFor(MeasureMarginalCandidates).Inverted)

	unknown := ConfigFor("Brand New Measure")
	assert.Equal(t, "Brand New Measure", unknown.Name)
	assert.True(t, unknown.Comparable)
	assert.False(t, unknown.Level)
	assert.Equal(t, SourceHMDA, unknown.Source)
}

func TestRowField(t *testing.T) {
	r := Row{State: "CA", Year: 2019, DemographicGroup: "Black", FairnessMeasure: MeasureStatisticalParity}
	assert.Equal(t, "CA", r.Field(ColumnState))
	assert.Equal(t, "2019", r.Field(ColumnYear))
	assert.Equal(t, "Black", r.Field(ColumnDemographicGroup))
	assert.Equal(t, MeasureStatisticalParity, r.Field(ColumnFairnessMeasure))
	assert.Empty(t, r.Field("value"))
}

func TestYearRangeContains(t *testing.T) {
	r := YearRange{Min: 2018, Max: 2020}
	assert.True(t, r.Contains(2018))
	assert.True(t, r.Contains(2020))
	assert.False(t, r.Contains(2021))
}
