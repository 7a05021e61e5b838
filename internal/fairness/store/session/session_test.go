package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"fairdash/internal/fairness/filter"
	"fairdash/internal/fairness/fixtures"
	"fairdash/internal/fairness/models"
	"fairdash/internal/fairness/presentation"
	"fairdash/pkg/platform/sentinel"
)

type SessionStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreSuite))
}

func (s *SessionStoreSuite) SetupTest() {
	s.store = NewInMemoryStore(time.Minute)
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *SessionStoreSuite) newSession() *Session {
	sess := New(uuid.New(), filter.ComputeDefaults(fixtures.Metadata()), s.now)
	s.Require().NoError(s.store.Save(context.Background(), sess))
	return sess
}

func (s *SessionStoreSuite) TestLookup() {
	s.Run("returns stored session and touches it", func() {
		sess := s.newSession()
		later := s.now.Add(30 * time.Second)

		found, err := s.store.Find(context.Background(), sess.ID, later)

		s.Require().NoError(err)
		s.Same(sess, found)
		s.Equal(later, found.LastSeen())
	})

	s.Run("unknown id is not found", func() {
		_, err := s.store.Find(context.Background(), uuid.New(), s.now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("idle session expires and is removed", func() {
		sess := s.newSession()

		_, err := s.store.Find(context.Background(), sess.ID, s.now.Add(2*time.Minute))
		s.Require().ErrorIs(err, sentinel.ErrExpired)

		_, err = s.store.Find(context.Background(), sess.ID, s.now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *SessionStoreSuite) TestSweep() {
	stale := s.newSession()
	fresh := s.newSession()
	fresh.Touch(s.now.Add(90 * time.Second))

	removed := s.store.Sweep(context.Background(), s.now.Add(2*time.Minute))

	s.Equal([]uuid.UUID{stale.ID}, removed)
	s.Equal(1, s.store.Len())
}

func (s *SessionStoreSuite) TestDelete() {
	sess := s.newSession()
	s.Require().NoError(s.store.Delete(context.Background(), sess.ID))
	s.Require().ErrorIs(s.store.Delete(context.Background(), sess.ID), sentinel.ErrNotFound)
}

func (s *SessionStoreSuite) TestApplyCommitsOnlyOnSuccess() {
	sess := s.newSession()
	before := sess.Panels()

	_, err := sess.Apply(func(p *filter.Panels) error {
		p.Measures.State = "Texas"
		return errors.New("rejected")
	})
	s.Require().Error(err)
	s.Equal(before, sess.Panels())

	next, err := sess.Apply(func(p *filter.Panels) error {
		p.Measures.State = "Texas"
		return nil
	})
	s.Require().NoError(err)
	s.Equal("Texas", next.Measures.State)
	s.Equal("Texas", sess.Panels().Measures.State)
}

func (s *SessionStoreSuite) TestPanelsAreCopies() {
	sess := s.newSession()
	p := sess.Panels()
	p.Measures.Measures[0] = "mutated"
	s.NotEqual("mutated", sess.Panels().Measures.Measures[0])
}

func (s *SessionStoreSuite) TestLastRenderWins() {
	sess := s.newSession()

	_, older := sess.BeginRender(models.PanelStates)
	_, newer := sess.BeginRender(models.PanelStates)

	s.Require().NoError(sess.CompleteRender(models.PanelStates, newer, presentation.NoData(models.PanelStates)))
	err := sess.CompleteRender(models.PanelStates, older, presentation.Failed(models.PanelStates, "late"))
	s.Require().ErrorIs(err, sentinel.ErrSuperseded)

	latest, ok := sess.Latest(models.PanelStates)
	s.Require().True(ok)
	s.Equal(presentation.StatusNoData, latest.Status, "a stale result never replaces a newer one")

	_, ok = sess.Latest(models.PanelMeasures)
	s.False(ok)
}

func (s *SessionStoreSuite) TestGenerationsArePerPanel() {
	sess := s.newSession()
	_, m := sess.BeginRender(models.PanelMeasures)
	_, _ = sess.BeginRender(models.PanelStates)

	s.NoError(sess.CompleteRender(models.PanelMeasures, m, presentation.NoData(models.PanelMeasures)))
}

func (s *SessionStoreSuite) TestActivePanel() {
	sess := s.newSession()
	s.Equal(models.PanelMeasures, sess.Active())
	sess.SetActive(models.PanelStates)
	s.Equal(models.PanelStates, sess.View().Active)
}
