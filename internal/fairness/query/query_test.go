package query

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairdash/internal/fairness/filter"
	"fairdash/internal/fairness/fixtures"
	"fairdash/internal/fairness/models"
)

func TestSynthesizeMeasuresTranslatesState(t *testing.T) {
	md := fixtures.Metadata()
	p := filter.ComputeDefaults(md)
	p.Measures.State = "California"

	q, err := Synthesize(models.PanelMeasures, p, md)

	require.NoError(t, err)
	assert.Equal(t, "CA", q.State)
	assert.Equal(t, "Black", q.Group)
	assert.Equal(t, []string{models.MeasureStatisticalParity, models.MeasurePredictiveParity}, q.Measures)
	assert.Equal(t, &models.YearRange{Min: 2018, Max: 2020}, q.YearRange)
	assert.Equal(t, []string{models.ColumnFairnessMeasure, models.ColumnYear}, q.OrderBy)
}

func TestSynthesizeNeverEmitsDisplayValues(t *testing.T) {
	md := fixtures.Metadata()
	p := filter.ComputeDefaults(md)
	p.Demographics.State = "Texas"
	p.Demographics.DemographicCategory = "Sex"

	q, err := Synthesize(models.PanelDemographics, p, md)

	require.NoError(t, err)
	assert.Equal(t, "TX", q.State)
	assert.Equal(t, "sex", q.Category)
	for _, pred := range q.Predicates() {
		for _, v := range pred.Values {
			assert.NotEqual(t, "Texas", v)
			assert.NotEqual(t, "Sex", v)
		}
	}
}

func TestSynthesizeEmptyMeasuresShortCircuits(t *testing.T) {
	md := fixtures.Metadata()
	p := filter.ComputeDefaults(md)
	p.Measures.Measures = nil

	_, err := Synthesize(models.PanelMeasures, p, md)

	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestSynthesizeUnknownDisplayValueIsQueryError(t *testing.T) {
	md := fixtures.Metadata()
	p := filter.ComputeDefaults(md)
	p.Demographics.State = "Atlantis"

	_, err := Synthesize(models.PanelDemographics, p, md)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.ErrorIs(t, err, ErrNoTranslation)
	assert.Equal(t, models.PanelDemographics, qe.Query.Panel)
}

func TestSynthesizeStatesUsesExactYear(t *testing.T) {
	md := fixtures.Metadata()
	p := filter.ComputeDefaults(md)

	q, err := Synthesize(models.PanelStates, p, md)

	require.NoError(t, err)
	assert.Nil(t, q.YearRange)
	assert.Equal(t, 2020, q.Year)
	assert.Equal(t, "race", q.Category)
	assert.Empty(t, q.State)
}

func TestSQLSQLite(t *testing.T) {
	q := Query{
		Measures:  []string{"Statistical Parity", "Predictive Parity"},
		State:     "CA",
		Group:     "Black",
		YearRange: &models.YearRange{Min: 2018, Max: 2020},
		OrderBy:   []string{models.ColumnFairnessMeasure, models.ColumnYear},
	}

	sql, args := q.SQL(DialectSQLite, "fairness")

	assert.Equal(t, "SELECT state, year, demographic_category, demographic_group, fairness_measure, value, coalesced_n "+
		"FROM fairness WHERE value IS NOT NULL AND fairness_measure IN (?, ?) AND state = ? AND demographic_group = ? "+
		"AND year BETWEEN ? AND ? ORDER BY fairness_measure, year", sql)
	assert.Equal(t, []any{"Statistical Parity", "Predictive Parity", "CA", "Black", 2018, 2020}, args)
}

func TestSQLPostgresPlaceholders(t *testing.T) {
	q := Query{Measures: []string{"Statistical Parity"}, Category: "race", Group: "Black", Year: 2020, OrderBy: []string{"state", "year"}}

	sql, args := q.SQL(DialectPostgres, "fairness")

	assert.Contains(t, sql, "fairness_measure = ANY($1) AND demographic_category = $2 AND demographic_group = $3 AND year = $4")
	require.Len(t, args, 4)
	assert.Equal(t, pq.Array([]string{"Statistical Parity"}), args[0])
}

func TestSQLBindsQuotesInsteadOfInterpolating(t *testing.T) {
	q := Query{Group: "O'Brien'; DROP TABLE fairness; --"}

	sql, args := q.SQL(DialectSQLite, "fairness")

	assert.NotContains(t, sql, "O'Brien")
	assert.Equal(t, []any{"O'Brien'; DROP TABLE fairness; --"}, args)
}

func TestSQLDropsUnknownOrderColumns(t *testing.T) {
	q := Query{OrderBy: []string{"value; DROP TABLE x", models.ColumnYear}}
	sql, _ := q.SQL(DialectSQLite, "fairness")
	assert.Contains(t, sql, "ORDER BY year")
	assert.NotContains(t, sql, "DROP")
}

func TestDistinctSQL(t *testing.T) {
	sql, args, err := DistinctSQL(DialectSQLite, "fairness", models.ColumnDemographicGroup,
		models.Condition{Column: models.ColumnDemographicCategory, Value: "race"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT CAST(demographic_group AS TEXT) FROM fairness WHERE demographic_group IS NOT NULL "+
		"AND demographic_category = ? GROUP BY demographic_group ORDER BY MIN(rowid)", sql)
	assert.Equal(t, []any{"race"}, args)

	sql, _, err = DistinctSQL(DialectPostgres, "fairness", models.ColumnFairnessMeasure)
	require.NoError(t, err)
	assert.Equal(t, "SELECT fairness_measure::text FROM fairness WHERE fairness_measure IS NOT NULL "+
		"GROUP BY fairness_measure ORDER BY MIN(id)", sql)

	_, _, err = DistinctSQL(DialectSQLite, "fairness", "password")
	assert.Error(t, err)
}

func TestMatchesExcludesNullValues(t *testing.T) {
	v := 1.5
	q := Query{State: "CA"}
	assert.True(t, q.Matches(models.Row{State: "CA", Value: &v}))
	assert.False(t, q.Matches(models.Row{State: "CA"}))
	assert.False(t, q.Matches(models.Row{State: "TX", Value: &v}))
}

func TestSortRowsGroupsThenYear(t *testing.T) {
	rows := []models.Row{
		{FairnessMeasure: "b", Year: 2020},
		{FairnessMeasure: "a", Year: 2020},
		{FairnessMeasure: "b", Year: 2018},
		{FairnessMeasure: "a", Year: 2019},
	}
	q := Query{OrderBy: []string{models.ColumnFairnessMeasure, models.ColumnYear}}

	q.SortRows(rows)

	assert.Equal(t, []models.Row{
		{FairnessMeasure: "a", Year: 2019},
		{FairnessMeasure: "a", Year: 2020},
		{FairnessMeasure: "b", Year: 2018},
		{FairnessMeasure: "b", Year: 2020},
	}, rows)
}

func TestQueryErrorCarriesPredicates(t *testing.T) {
	q := Query{Panel: models.PanelStates, Measures: []string{"Statistical Parity"}, Year: 2020}
	err := &QueryError{Query: q, Err: errors.New("boom")}

	assert.Contains(t, err.Error(), "fairness_measure IN [Statistical Parity]")
	assert.Contains(t, err.Error(), "year = [2020]")
	assert.Contains(t, err.Error(), "boom")
}

func TestValidTable(t *testing.T) {
	assert.True(t, ValidTable("fairness"))
	assert.True(t, ValidTable("fairness_v2"))
	assert.False(t, ValidTable("fairness; drop"))
	assert.False(t, ValidTable("2fair"))
}
