// Package session keeps the view sessions of the dashboard in memory. A
// session is the explicit application context of one browser view: its
// panel selections, the active tab and the latest render of each panel.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"fairdash/internal/fairness/filter"
	"fairdash/internal/fairness/models"
	"fairdash/internal/fairness/presentation"
	"fairdash/pkg/platform/sentinel"
)

// Session is safe for concurrent use. Selection changes are serialized by
// its mutex.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu          sync.Mutex
	lastSeen    time.Time
	panels      filter.Panels
	active      models.PanelID
	generations map[models.PanelID]uint64
	latest      map[models.PanelID]presentation.RenderResult
}

// View is a point-in-time copy of a session.
type View struct {
	ID        uuid.UUID      `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	LastSeen  time.Time      `json:"last_seen"`
	Panels    filter.Panels  `json:"panels"`
	Active    models.PanelID `json:"active_panel"`
}

// New starts a session on the measures tab.
func New(id uuid.UUID, panels filter.Panels, now time.Time) *Session {
	return &Session{
		ID:          id,
		CreatedAt:   now,
		lastSeen:    now,
		panels:      panels.Clone(),
		active:      models.PanelMeasures,
		generations: make(map[models.PanelID]uint64),
		latest:      make(map[models.PanelID]presentation.RenderResult),
	}
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		LastSeen:  s.lastSeen,
		Panels:    s.panels.Clone(),
		Active:    s.active,
	}
}

// Panels returns a copy of the current selections.
func (s *Session) Panels() filter.Panels {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panels.Clone()
}

// Apply runs fn on a copy of the selections and commits the copy only if
// fn succeeds, so a rejected change leaves the session untouched.
func (s *Session) Apply(fn func(p *filter.Panels) error) (filter.Panels, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.panels.Clone()
	if err := fn(&next); err != nil {
		return s.panels.Clone(), err
	}
	s.panels = next
	return next.Clone(), nil
}

func (s *Session) SetActive(panel models.PanelID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = panel
}

func (s *Session) Active() models.PanelID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// BeginRender issues a new generation for panel and returns it with the
// selections to render. Any render still running for an older generation
// is superseded.
func (s *Session) BeginRender(panel models.PanelID) (filter.Panels, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[panel]++
	return s.panels.Clone(), s.generations[panel]
}

// CompleteRender stores res as the panel's latest result unless a newer
// render was issued after generation.
func (s *Session) CompleteRender(panel models.PanelID, generation uint64, res presentation.RenderResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current := s.generations[panel]; generation != current {
		return fmt.Errorf("render %d of panel %s, latest is %d: %w", generation, panel, current, sentinel.ErrSuperseded)
	}
	s.latest[panel] = res
	return nil
}

// Latest returns the last completed render of panel.
func (s *Session) Latest(panel models.PanelID) (presentation.RenderResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.latest[panel]
	return res, ok
}

func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// InMemoryStore holds sessions until they idle past the TTL.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
}

func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &InMemoryStore{sessions: make(map[uuid.UUID]*Session), ttl: ttl}
}

func (s *InMemoryStore) Save(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// Find returns a live session and marks it seen at now. Sessions idle past
// the TTL are removed and reported as expired.
func (s *InMemoryStore) Find(_ context.Context, id uuid.UUID, now time.Time) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if now.Sub(session.LastSeen()) > s.ttl {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, sentinel.ErrExpired
	}
	session.Touch(now)
	return session, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Sweep removes every session idle past the TTL and returns their ids.
func (s *InMemoryStore) Sweep(_ context.Context, now time.Time) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []uuid.UUID
	for id, session := range s.sessions {
		if now.Sub(session.LastSeen()) > s.ttl {
			delete(s.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
