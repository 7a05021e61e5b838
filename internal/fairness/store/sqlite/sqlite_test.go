package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"fairdash/internal/fairness/filter"
	"fairdash/internal/fairness/fixtures"
	"fairdash/internal/fairness/metadata"
	"fairdash/internal/fairness/models"
	"fairdash/internal/fairness/query"
	"fairdash/internal/fairness/store/memory"
	"fairdash/internal/fairness/store/sqlengine"
)

type SQLiteSuite struct {
	suite.Suite
	engine *sqlengine.Engine
	ref    *memory.Engine
}

func TestSQLiteSuite(t *testing.T) {
	suite.Run(t, new(SQLiteSuite))
}

func (s *SQLiteSuite) SetupTest() {
	e, err := Open(context.Background(), "fairness", fixtures.Rows())
	s.Require().NoError(err)
	s.engine = e
	s.ref = memory.New(fixtures.Rows())
}

func (s *SQLiteSuite) TearDownTest() {
	s.Require().NoError(s.engine.Close())
}

func (s *SQLiteSuite) TestQueriesAgreeWithMemoryEngine() {
	md := fixtures.Metadata()
	panels := filter.ComputeDefaults(md)
	panels.Measures.State = "California"
	panels.Measures.DemographicGroup = "Asian"

	for _, panel := range []models.PanelID{models.PanelMeasures, models.PanelDemographics, models.PanelStates} {
		q, err := query.Synthesize(panel, panels, md)
		s.Require().NoError(err)

		got, err := s.engine.Query(context.Background(), q)
		s.Require().NoError(err)
		want, err := s.ref.Query(context.Background(), q)
		s.Require().NoError(err)

		s.Equal(want, got, "panel %s", panel)
		s.NotEmpty(got)
	}
}

func (s *SQLiteSuite) TestDistinctValuesKeepStorageOrder() {
	measures, err := s.engine.DistinctValues(context.Background(), models.ColumnFairnessMeasure)
	s.Require().NoError(err)
	s.Equal(fixtures.Measures, measures)

	years, err := s.engine.DistinctValues(context.Background(), models.ColumnYear)
	s.Require().NoError(err)
	s.Equal([]string{"2018", "2019", "2020"}, years)
}

func (s *SQLiteSuite) TestMetadataBuildMatchesFixture() {
	md, err := metadata.Build(context.Background(), s.engine)
	s.Require().NoError(err)

	want := fixtures.Metadata()
	s.Equal(want.Snapshot(), md.Snapshot())
}

func (s *SQLiteSuite) TestYearRange() {
	yr, err := s.engine.YearRange(context.Background())
	s.Require().NoError(err)
	s.Equal(models.YearRange{Min: 2018, Max: 2020}, yr)
}

func (s *SQLiteSuite) TestQuotedValuesAreBound() {
	rows, err := s.engine.Query(context.Background(), query.Query{Group: "O'Brien"})
	s.Require().NoError(err)
	s.Empty(rows)
}

func TestOpenRejectsBadTable(t *testing.T) {
	_, err := Open(context.Background(), "fairness;drop", nil)
	assert.Error(t, err)
}

func TestEmptyDatasetHasNoYearRange(t *testing.T) {
	e, err := Open(context.Background(), "fairness", nil)
	require.NoError(t, err)
	defer e.Close()

	_, err = e.YearRange(context.Background())
	assert.ErrorContains(t, err, "no years")

	_, err = metadata.Build(context.Background(), e)
	var initErr *metadata.InitializationError
	assert.ErrorAs(t, err, &initErr)
}
