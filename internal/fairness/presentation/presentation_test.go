package presentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairdash/internal/fairness/catalog"
	"fairdash/internal/fairness/filter"
	"fairdash/internal/fairness/fixtures"
	"fairdash/internal/fairness/models"
)

func f(v float64) *float64 { return &v }

func TestPrecisionTable(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   int
	}{
		{"empty", nil, 2},
		{"no spread", []float64{3, 3}, 2},
		{"tiny spread", []float64{1, 1.05}, 3},
		{"sub-unit spread", []float64{0, 0.5}, 2},
		{"single digit spread", []float64{-2, 3}, 2},
		{"wide spread", []float64{-20, 30}, 1},
		{"boundary 0.1", []float64{0, 0.1}, 2},
		{"boundary 10", []float64{0, 10}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Precision(tt.values))
		})
	}
}

func TestPrecisionNeverIncreasesWithSpread(t *testing.T) {
	prev := Precision([]float64{0, 0.0001})
	for _, spread := range []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 500} {
		got := Precision([]float64{0, spread})
		assert.LessOrEqual(t, got, prev, "spread %v", spread)
		prev = got
	}
}

func TestChoropleth(t *testing.T) {
	half := len(catalog.MapColors) / 2
	tests := []struct {
		name   string
		values []float64
		kind   ScaleKind
		domain [2]float64
		size   int
	}{
		{"both signs", []float64{-3, 2}, ScaleDiverging, [2]float64{-3, 3}, len(catalog.MapColors)},
		{"non-negative", []float64{0, 0, 5}, ScaleSequentialPositive, [2]float64{0, 5}, half},
		{"all zero", []float64{0, 0, 0}, ScaleSequentialPositive, [2]float64{0, 1}, half},
		{"non-positive", []float64{-4, -1}, ScaleSequentialNegative, [2]float64{-4, 0}, half},
		{"empty", nil, ScaleSequentialPositive, [2]float64{0, 1}, half},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Choropleth(tt.values)
			assert.Equal(t, tt.kind, s.Kind)
			assert.Equal(t, tt.domain, s.Domain)
			assert.Len(t, s.Range, tt.size)
		})
	}
}

func TestChoroplethPaletteHalves(t *testing.T) {
	neg := Choropleth([]float64{-1})
	pos := Choropleth([]float64{1})
	assert.Equal(t, catalog.MapColors[0], neg.Range[0])
	assert.Equal(t, catalog.MapColors[len(catalog.MapColors)-1], pos.Range[len(pos.Range)-1])

	pos.Range[0] = "#000000"
	assert.NotEqual(t, "#000000", catalog.MapColors[len(catalog.MapColors)/2], "ranges are copies")
}

func TestNarrative(t *testing.T) {
	got := Narrative(models.MeasureStatisticalParity, "California", "Black", "White", -2.5, 2, 12345)
	assert.Equal(t, "In California, denial rates for Black applicants were 2.50 percentage points lower than denial rates for White applicants. (Sample size: 12,345)", got)
}

func TestNarrativeInvertedMeasure(t *testing.T) {
	got := Narrative(models.MeasureMarginalCandidates, "Texas", "Hispanic", "White", 1.3, 1, 900)
	assert.Contains(t, got, "were 1.3 percentage points lower than default rates for White borrowers")
	assert.Contains(t, got, "(Sample size: 900)")
}

func TestNarrativeRepresentativenessComparesGroupWithItself(t *testing.T) {
	got := Narrative(models.MeasureRepresentativeness, "U.S.", "Female", "Male", 0.5, 3, 1000)
	assert.Equal(t, "In U.S., the fraction of creditworthy Female applicants was 0.500 percentage points higher than the fraction of approved Female applicants. (Sample size: 1,000)", got)
}

func TestNarrativeWithoutTemplate(t *testing.T) {
	assert.Equal(t, "(Sample size: 1,234,567)", Narrative("Unknown Measure", "U.S.", "Black", "White", 1, 2, 1234567))
}

func TestCaptionFor(t *testing.T) {
	t.Run("multi-measure wording", func(t *testing.T) {
		c := CaptionFor([]string{models.MeasureStatisticalParity}, "White", true)
		assert.Equal(t, "About the selected fairness measures:", c.Heading)
		assert.Equal(t, "Note: All measures are depicted as differences relative to White (reference group).", c.Note)
		require.Len(t, c.Definitions, 1)
		assert.Equal(t, catalog.Definition(models.MeasureStatisticalParity), c.Definitions[0].Text)
	})
	t.Run("single measure relative to reference", func(t *testing.T) {
		c := CaptionFor([]string{models.MeasurePredictiveParity}, "Male", false)
		assert.Equal(t, "About the selected fairness measure:", c.Heading)
		assert.Equal(t, "Note: All values are differences relative to Male (reference group).", c.Note)
		assert.Equal(t, "Source: Authors calculations based on ICE, McDash data", c.Source)
	})
	t.Run("levels", func(t *testing.T) {
		c := CaptionFor([]string{models.MeasureRepresentativeness}, "White", false)
		assert.Equal(t, "Note: Representativeness is shown as levels.", c.Note)
	})
}

func TestSeriesColors(t *testing.T) {
	md := fixtures.Metadata()

	measures := SeriesColors([]string{models.MeasurePredictiveParity, models.MeasureMarginalCandidates}, md, SeriesMeasures)
	assert.Equal(t, []Series{
		{Key: models.MeasurePredictiveParity, Color: catalog.MeasureColors[1]},
		{Key: models.MeasureMarginalCandidates, Color: catalog.MeasureColors[2]},
	}, measures)

	groups := SeriesColors([]string{"Black", "Pacific Islander"}, md, SeriesGroups)
	black, _ := catalog.GroupColor("Black")
	assert.Equal(t, black, groups[0].Color)
	assert.Equal(t, catalog.MeasureColors[1], groups[1].Color)
}

func TestPipelineMeasuresPanel(t *testing.T) {
	md := fixtures.Metadata()
	cfg, err := Config(models.PanelMeasures)
	require.NoError(t, err)
	p := filter.Panels{Measures: filter.MeasuresState{
		State:            "California",
		DemographicGroup: "Female",
		Measures:         []string{models.MeasureStatisticalParity, models.MeasurePredictiveParity},
	}}
	rows := []models.Row{
		{State: "CA", Year: 2019, DemographicGroup: "Female", FairnessMeasure: models.MeasurePredictiveParity, Value: f(1.5), CoalescedN: 2000},
		{State: "CA", Year: 2019, DemographicGroup: "Female", FairnessMeasure: models.MeasureStatisticalParity, Value: f(-0.5), CoalescedN: 2000},
	}

	res := Pipeline(cfg, p, rows, md)

	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "Comparing Fairness Measures for Female Applicants — California", res.Title)
	assert.Equal(t, "Percentage point differences compared to Male applicants", res.Subtitle)
	assert.Equal(t, YLabel, res.YLabel)
	assert.Equal(t, 2, res.Decimals)
	require.Len(t, res.Series, 2)
	assert.Equal(t, models.MeasureStatisticalParity, res.Series[0].Key, "legend follows dataset order")
	require.Len(t, res.Points, 2)
	assert.Equal(t, "Predictive Parity, 2019", res.Points[0].TooltipTitle)
	assert.Contains(t, res.Points[0].Tooltip, "than default rates for Male borrowers")
	assert.Contains(t, res.Points[1].Tooltip, "0.50 percentage points lower")
	assert.Nil(t, res.Scale)
	assert.Equal(t, "About the selected fairness measures:", res.Caption.Heading)
	assert.Equal(t, "Source: Authors calculations based on HMDA and ICE, McDash data", res.Caption.Source)
}

func TestPipelineMeasuresLegendOnlyListsMeasuresWithRows(t *testing.T) {
	md := fixtures.Metadata()
	cfg, err := Config(models.PanelMeasures)
	require.NoError(t, err)
	p := filter.Panels{Measures: filter.MeasuresState{
		State:            "California",
		DemographicGroup: "Black",
		Measures: []string{
			models.MeasureStatisticalParity,
			models.MeasurePredictiveParity,
			models.MeasureMarginalCandidates,
		},
	}}
	rows := []models.Row{
		{State: "CA", Year: 2019, DemographicGroup: "Black", FairnessMeasure: models.MeasureMarginalCandidates, Value: f(0.5), CoalescedN: 100},
		{State: "CA", Year: 2019, DemographicGroup: "Black", FairnessMeasure: models.MeasurePredictiveParity, Value: nil, CoalescedN: 100},
		{State: "CA", Year: 2019, DemographicGroup: "Black", FairnessMeasure: models.MeasureStatisticalParity, Value: f(1), CoalescedN: 100},
	}

	res := Pipeline(cfg, p, rows, md)

	require.Len(t, res.Series, 2, "a selected measure without values has no legend entry")
	assert.Equal(t, models.MeasureStatisticalParity, res.Series[0].Key)
	assert.Equal(t, models.MeasureMarginalCandidates, res.Series[1].Key)
}

func TestPipelineDemographicsPanel(t *testing.T) {
	md := fixtures.Metadata()
	cfg, err := Config(models.PanelDemographics)
	require.NoError(t, err)
	p := filter.Panels{Demographics: filter.DemographicsState{
		Measure:             models.MeasureStatisticalParity,
		State:               "U.S.",
		DemographicCategory: "Sex",
	}}
	rows := []models.Row{
		{State: "U.S.", Year: 2018, DemographicGroup: "Female", FairnessMeasure: models.MeasureStatisticalParity, Value: f(1), CoalescedN: 3000},
		{State: "U.S.", Year: 2019, DemographicGroup: "Female", FairnessMeasure: models.MeasureStatisticalParity, Value: f(1.25), CoalescedN: 6000},
	}

	res := Pipeline(cfg, p, rows, md)

	assert.Equal(t, "Statistical Parity over time by Sex — U.S.", res.Title)
	assert.Empty(t, res.Subtitle)
	require.Len(t, res.Series, 1)
	female, _ := catalog.GroupColor("Female")
	assert.Equal(t, Series{Key: "Female", Color: female}, res.Series[0])
	assert.Equal(t, "Female, 2018", res.Points[0].TooltipTitle)
	assert.Equal(t, "Note: All values are differences relative to Male (reference group).", res.Caption.Note)
	assert.Equal(t, "About the selected fairness measure:", res.Caption.Heading)
}

func TestPipelineStatesPanel(t *testing.T) {
	md := fixtures.Metadata()
	cfg, err := Config(models.PanelStates)
	require.NoError(t, err)
	p := filter.Panels{States: filter.StatesState{
		Measure:             models.MeasureStatisticalParity,
		Year:                2020,
		DemographicCategory: "Race",
		DemographicGroup:    "Black",
	}}
	rows := []models.Row{
		{State: "CA", Year: 2020, DemographicGroup: "Black", FairnessMeasure: models.MeasureStatisticalParity, Value: f(2), CoalescedN: 3000},
		{State: "TX", Year: 2020, DemographicGroup: "Black", FairnessMeasure: models.MeasureStatisticalParity, Value: f(-1), CoalescedN: 6000},
		{State: "U.S.", Year: 2020, DemographicGroup: "Black", FairnessMeasure: models.MeasureStatisticalParity, Value: f(0.5), CoalescedN: 9000},
	}

	res := Pipeline(cfg, p, rows, md)

	assert.Equal(t, "Statistical Parity by state (2020) — Black", res.Title)
	assert.Empty(t, res.Series)
	require.NotNil(t, res.Scale)
	assert.Equal(t, ScaleDiverging, res.Scale.Kind)
	assert.Equal(t, [2]float64{-2, 2}, res.Scale.Domain)
	require.Len(t, res.Points, 3)
	assert.Equal(t, "California", res.Points[0].State)
	assert.Equal(t, "California, 2020", res.Points[0].TooltipTitle)
	require.NotNil(t, res.Points[0].Hex)
	assert.Equal(t, catalog.HexCoord{Col: 0, Row: 5}, *res.Points[0].Hex)
	assert.Nil(t, res.Points[2].Hex, "the national aggregate has no tile")
	assert.Contains(t, res.Points[1].Tooltip, "In Texas,")
}

func TestPipelineNoRows(t *testing.T) {
	cfg, err := Config(models.PanelDemographics)
	require.NoError(t, err)

	res := Pipeline(cfg, filter.Panels{}, nil, fixtures.Metadata())

	assert.Equal(t, StatusNoData, res.Status)
	assert.Equal(t, MessageNoData, res.Message)
	assert.NotNil(t, res.Points)
}

func TestConfigUnknownPanel(t *testing.T) {
	_, err := Config(models.PanelID("pies"))
	require.Error(t, err)
}

func TestStatusPayloads(t *testing.T) {
	assert.Equal(t, MessageEmptySelection, EmptySelection(models.PanelMeasures).Message)
	failed := Failed(models.PanelStates, "boom")
	assert.Equal(t, StatusError, failed.Status)
	assert.Equal(t, "boom", failed.Message)
}
