//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"fairdash/internal/fairness/filter"
	"fairdash/internal/fairness/fixtures"
	"fairdash/internal/fairness/metadata"
	"fairdash/internal/fairness/models"
	"fairdash/internal/fairness/query"
	"fairdash/internal/fairness/store/memory"
	"fairdash/internal/fairness/store/sqlengine"
	"fairdash/pkg/testutil/containers"
)

type PostgresSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	engine *sqlengine.Engine
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(Load(context.Background(), s.pg.DB, "fairness", fixtures.Rows()))
	e, err := New(s.pg.DB, "fairness")
	s.Require().NoError(err)
	s.engine = e
}

func (s *PostgresSuite) TestQueriesAgreeWithMemoryEngine() {
	md := fixtures.Metadata()
	panels := filter.ComputeDefaults(md)
	ref := memory.New(fixtures.Rows())

	for _, panel := range []models.PanelID{models.PanelMeasures, models.PanelDemographics, models.PanelStates} {
		q, err := query.Synthesize(panel, panels, md)
		s.Require().NoError(err)

		got, err := s.engine.Query(context.Background(), q)
		s.Require().NoError(err)
		want, err := ref.Query(context.Background(), q)
		s.Require().NoError(err)
		s.Equal(want, got, "panel %s", panel)
	}
}

func (s *PostgresSuite) TestMetadataBuild() {
	md, err := metadata.Build(context.Background(), s.engine)
	s.Require().NoError(err)

	s.Equal([]string{"U.S.", "California", "Texas"}, md.States())
	s.Equal(models.YearRange{Min: 2018, Max: 2020}, md.YearRange())
	s.Equal(fixtures.Measures, md.FairnessMeasures(), "measures keep dataset order")
	s.Equal(fixtures.GroupsByCategory["race"], md.GroupsByCategory("Race"))
}

func (s *PostgresSuite) TestDistinctValuesFollowLoadOrder() {
	rows := fixtures.Rows()
	reversed := make([]models.Row, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		reversed = append(reversed, rows[i])
	}
	s.Require().NoError(Load(context.Background(), s.pg.DB, "fairness_reversed", reversed))
	e, err := New(s.pg.DB, "fairness_reversed")
	s.Require().NoError(err)

	got, err := e.DistinctValues(context.Background(), models.ColumnFairnessMeasure)
	s.Require().NoError(err)
	s.Equal([]string{
		models.MeasureRepresentativeness,
		models.MeasureMarginalCandidates,
		models.MeasurePredictiveParity,
		models.MeasureStatisticalParity,
	}, got)
}

func (s *PostgresSuite) TestLoadIsRepeatable() {
	s.Require().NoError(Load(context.Background(), s.pg.DB, "fairness", fixtures.Rows()))
	var n int
	s.Require().NoError(s.pg.DB.QueryRow("SELECT COUNT(*) FROM fairness").Scan(&n))
	s.Equal(len(fixtures.Rows()), n)
}
