package metadata

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"fairdash/internal/fairness/models"
)

type stubSource struct {
	mu       sync.Mutex
	values   map[string][]string
	byCat    map[string][]string
	years    models.YearRange
	failOn   string
	failErr  error
	requests []string
}

func (s *stubSource) DistinctValues(_ context.Context, column string, where ...models.Condition) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, column)
	if column == s.failOn {
		return nil, s.failErr
	}
	if len(where) > 0 {
		return s.byCat[where[0].Value], nil
	}
	return s.values[column], nil
}

func (s *stubSource) YearRange(context.Context) (models.YearRange, error) {
	if s.failOn == "year_range" {
		return models.YearRange{}, s.failErr
	}
	return s.years, nil
}

type MetadataSuite struct {
	suite.Suite
	src *stubSource
}

func TestMetadataSuite(t *testing.T) {
	suite.Run(t, new(MetadataSuite))
}

func (s *MetadataSuite) SetupTest() {
	s.src = &stubSource{
		values: map[string][]string{
			models.ColumnState:               {"CA", "AL", "U.S.", "TX", "ZZ"},
			models.ColumnYear:                {"2019", "2018", "2020"},
			models.ColumnFairnessMeasure:     {"Statistical Parity", "Predictive Parity", "Representativeness"},
			models.ColumnDemographicCategory: {"race", "sex", "ethnicity"},
			models.ColumnDemographicGroup:    {"Black", "White", "Female", "Male"},
		},
		byCat: map[string][]string{
			"race":      {"Asian", "Black", "White"},
			"sex":       {"Female", "Male"},
			"ethnicity": {"Hispanic"},
		},
		years: models.YearRange{Min: 2018, Max: 2020},
	}
}

func (s *MetadataSuite) TestBuildOrdersStatesWithNationFirst() {
	c, err := Build(context.Background(), s.src)
	s.Require().NoError(err)

	s.Equal([]string{"U.S.", "Alabama", "California", "Texas", "ZZ"}, c.States())
}

func (s *MetadataSuite) TestBuildKeepsMeasureOrderAndIndex() {
	c, err := Build(context.Background(), s.src)
	s.Require().NoError(err)

	s.Equal([]string{"Statistical Parity", "Predictive Parity", "Representativeness"}, c.FairnessMeasures())
	s.Equal(1, c.MeasureIndex("Predictive Parity"))
	s.Equal(-1, c.MeasureIndex("Unknown"))
}

func (s *MetadataSuite) TestBuildMapsCategoriesBothWays() {
	c, err := Build(context.Background(), s.src)
	s.Require().NoError(err)

	s.Equal([]string{"Race", "Sex", "ethnicity"}, c.DemographicCategories())
	code, ok := c.CategoryCode("Race")
	s.True(ok)
	s.Equal("race", code)
	s.Equal("Sex", c.CategoryDisplay("sex"))
	s.Equal([]string{"Female", "Male"}, c.GroupsByCategory("Sex"))
}

func (s *MetadataSuite) TestEveryCategoryGroupIsInAllGroups() {
	c, err := Build(context.Background(), s.src)
	s.Require().NoError(err)

	all := c.AllDemographicGroups()
	for _, category := range c.DemographicCategories() {
		for _, g := range c.GroupsByCategory(category) {
			s.Contains(all, g, "category %s", category)
		}
	}
	s.Contains(all, "Hispanic")
	s.Contains(all, "Asian")
}

func (s *MetadataSuite) TestStateReverseMapIsTotal() {
	c, err := Build(context.Background(), s.src)
	s.Require().NoError(err)

	for _, display := range c.States() {
		code, ok := c.StateCode(display)
		s.True(ok, display)
		s.Equal(display, c.StateDisplay(code))
	}
}

func (s *MetadataSuite) TestYearsSortedAndBounded() {
	c, err := Build(context.Background(), s.src)
	s.Require().NoError(err)

	s.Equal([]int{2018, 2019, 2020}, c.Years())
	s.Equal(2018, c.MinYear())
	s.Equal(2020, c.MaxYear())
	s.True(c.HasYear(2019))
	s.False(c.HasYear(2021))
}

func (s *MetadataSuite) TestBuildFailsWhenEngineFails() {
	boom := errors.New("engine offline")
	s.src.failOn = models.ColumnFairnessMeasure
	s.src.failErr = boom

	_, err := Build(context.Background(), s.src)

	var initErr *InitializationError
	s.Require().ErrorAs(err, &initErr)
	s.Equal("fairness measures", initErr.Dimension)
	s.ErrorIs(err, boom)
}

func (s *MetadataSuite) TestBuildFailsOnEmptyDimension() {
	s.src.values[models.ColumnFairnessMeasure] = nil

	_, err := Build(context.Background(), s.src)

	var initErr *InitializationError
	s.Require().ErrorAs(err, &initErr)
	s.ErrorIs(err, ErrNoValues)
}

func (s *MetadataSuite) TestBuildFailsOnYearRangeError() {
	s.src.failOn = "year_range"
	s.src.failErr = errors.New("timeout")

	_, err := Build(context.Background(), s.src)

	var initErr *InitializationError
	s.Require().ErrorAs(err, &initErr)
	s.Equal("year range", initErr.Dimension)
}

func TestFromDimensionsRejectsBadYear(t *testing.T) {
	_, err := FromDimensions(Dimensions{
		States:     []string{"CA"},
		Years:      []string{"twenty"},
		Measures:   []string{"Statistical Parity"},
		Categories: []string{"race"},
		Groups:     []string{"Black"},
	})
	var initErr *InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "years", initErr.Dimension)
}

func TestFromDimensionsDerivesYearRangeFromYears(t *testing.T) {
	c, err := FromDimensions(Dimensions{
		States:     []string{"CA"},
		Years:      []string{"2021", "2017"},
		Measures:   []string{"Statistical Parity"},
		Categories: []string{"race"},
		Groups:     []string{"Black"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.YearRange{Min: 2017, Max: 2021}, c.YearRange())
	assert.Empty(t, c.GroupsByCategory("Race"), "category without groups has an empty group list")
}

func TestSnapshotIsACopy(t *testing.T) {
	c, err := FromDimensions(Dimensions{
		States:           []string{"CA", "U.S."},
		Years:            []string{"2020"},
		Measures:         []string{"Statistical Parity"},
		Categories:       []string{"race"},
		Groups:           []string{"Black"},
		GroupsByCategory: map[string][]string{"race": {"Black"}},
	})
	require.NoError(t, err)

	snap := c.Snapshot()
	snap.States[0] = "mutated"
	snap.GroupsByCategory["Race"][0] = "mutated"

	assert.Equal(t, "U.S.", c.States()[0])
	assert.Equal(t, []string{"Black"}, c.GroupsByCategory("Race"))
	assert.Len(t, snap.Tabs, 3)
}
