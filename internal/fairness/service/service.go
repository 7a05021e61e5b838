// Package service runs the dashboard's view sessions: it applies filter
// changes through the panel reducers, synthesizes queries, runs them on the
// engine and maps the rows onto render payloads.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fairdash/internal/fairness/events"
	"fairdash/internal/fairness/filter"
	"fairdash/internal/fairness/metadata"
	"fairdash/internal/fairness/metrics"
	"fairdash/internal/fairness/models"
	"fairdash/internal/fairness/ports"
	"fairdash/internal/fairness/presentation"
	"fairdash/internal/fairness/query"
	"fairdash/internal/fairness/store/session"
	dErrors "fairdash/pkg/domain-errors"
	"fairdash/pkg/platform/sentinel"
	"fairdash/pkg/requestcontext"
)

var tracer = otel.Tracer("fairdash/fairness/service")

// SessionStore keeps view sessions.
type SessionStore interface {
	Save(ctx context.Context, s *session.Session) error
	Find(ctx context.Context, id uuid.UUID, now time.Time) (*session.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Sweep(ctx context.Context, now time.Time) []uuid.UUID
	Len() int
}

// Service is safe for concurrent use by many sessions.
type Service struct {
	engine    ports.Engine
	md        *metadata.Cache
	defaults  filter.Panels
	sessions  SessionStore
	debouncer *Debouncer
	publisher *events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics

	queryTimeout   time.Duration
	debounceWindow time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(p *events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithSessionStore(store SessionStore) Option {
	return func(s *Service) {
		if store != nil {
			s.sessions = store
		}
	}
}

func WithQueryTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.queryTimeout = d
		}
	}
}

func WithDebounceWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.debounceWindow = d
		}
	}
}

// New builds a service over an engine and the metadata read from it.
func New(engine ports.Engine, md *metadata.Cache, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	if md == nil {
		return nil, errors.New("metadata is required")
	}
	s := &Service{
		engine:         engine,
		md:             md,
		defaults:       filter.ComputeDefaults(md),
		queryTimeout:   5 * time.Second,
		debounceWindow: 100 * time.Millisecond,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = session.NewInMemoryStore(0)
	}
	s.debouncer = NewDebouncer(s.debounceWindow)
	return s, nil
}

// Metadata returns the dataset dimensions.
func (s *Service) Metadata() metadata.Snapshot {
	return s.md.Snapshot()
}

// Defaults returns the initial selections of a new session.
func (s *Service) Defaults() filter.Panels {
	return s.defaults.Clone()
}

// CreateSession opens a view session on the default selections.
func (s *Service) CreateSession(ctx context.Context) (*SessionView, error) {
	sess := session.New(uuid.New(), s.defaults, requestcontext.Now(ctx))
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}
	s.metrics.SetActiveSessions(s.sessions.Len())
	s.emit(ctx, events.Event{Type: events.TypeSessionCreated, SessionID: sess.ID.String()})
	s.logger.InfoContext(ctx, "view session created",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", sess.ID,
	)
	return s.sessionView(sess), nil
}

// Session returns the full state of a session.
func (s *Service) Session(ctx context.Context, id uuid.UUID) (*SessionView, error) {
	sess, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.sessionView(sess), nil
}

// CloseSession ends a session and drops any pending year-range change.
func (s *Service) CloseSession(ctx context.Context, id uuid.UUID) error {
	s.debouncer.Cancel(id.String())
	if err := s.sessions.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.metrics.SetActiveSessions(s.sessions.Len())
	return nil
}

// ApplyEvent runs one control change through the panel's reducer and
// re-renders the panel. A rejected value leaves the session untouched.
func (s *Service) ApplyEvent(ctx context.Context, id uuid.UUID, panel models.PanelID, ev filter.Event) (*PanelView, error) {
	sess, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := sess.Apply(func(p *filter.Panels) error { return s.reduce(panel, p, ev) }); err != nil {
		s.metrics.IncrementFilterRejections(panel, ev.Field())
		s.emit(ctx, events.Event{
			Type:      events.TypeFilterRejected,
			SessionID: id.String(),
			Panel:     string(panel),
			Field:     ev.Field(),
			Value:     eventValue(ev),
			Reason:    dErrors.MessageOf(err),
		})
		s.logger.InfoContext(ctx, "filter change rejected",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", id,
			"panel", panel,
			"field", ev.Field(),
			"error", err,
		)
		return nil, err
	}
	s.emit(ctx, events.Event{
		Type:      events.TypeFilterChanged,
		SessionID: id.String(),
		Panel:     string(panel),
		Field:     ev.Field(),
		Value:     eventValue(ev),
	})
	return s.render(ctx, sess, panel)
}

// SetYearRange schedules a year-range change. Changes arriving within the
// debounce window replace each other and only the last is applied, after
// which both time-series panels are re-rendered.
func (s *Service) SetYearRange(ctx context.Context, id uuid.UUID, ev filter.SetYearRange) error {
	sess, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if ev.Moved != "" && ev.Moved != filter.BoundMin && ev.Moved != filter.BoundMax {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%q is not a slider bound", ev.Moved))
	}
	s.emit(ctx, events.Event{
		Type:      events.TypeYearRangeSet,
		SessionID: id.String(),
		Field:     filter.FieldYearRange,
		Value:     eventValue(ev),
	})
	detached := context.WithoutCancel(ctx)
	s.debouncer.Trigger(id.String(), func() {
		s.applyYearRange(detached, sess, ev)
	})
	return nil
}

func (s *Service) applyYearRange(ctx context.Context, sess *session.Session, ev filter.SetYearRange) {
	p, _ := sess.Apply(func(p *filter.Panels) error {
		p.YearRange = filter.ReduceYearRange(p.YearRange, ev, s.md)
		return nil
	})
	s.logger.DebugContext(ctx, "year range applied",
		"session_id", sess.ID,
		"min", p.YearRange.Min,
		"max", p.YearRange.Max,
	)
	for _, panel := range []models.PanelID{models.PanelMeasures, models.PanelDemographics} {
		if _, err := s.render(ctx, sess, panel); err != nil && !errors.Is(err, sentinel.ErrSuperseded) {
			s.logger.WarnContext(ctx, "render after year range change failed",
				"session_id", sess.ID,
				"panel", panel,
				"error", err,
			)
		}
	}
}

// Render renders a panel from the session's current selections. It is
// idempotent for unchanged selections.
func (s *Service) Render(ctx context.Context, id uuid.UUID, panel models.PanelID) (*PanelView, error) {
	sess, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, sess, panel)
}

// SetActivePanel records a tab change and renders the newly active panel.
func (s *Service) SetActivePanel(ctx context.Context, id uuid.UUID, panel models.PanelID) (*PanelView, error) {
	sess, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.SetActive(panel)
	s.emit(ctx, events.Event{Type: events.TypeTabChanged, SessionID: id.String(), Panel: string(panel)})
	return s.render(ctx, sess, panel)
}

// RenderSelection renders a panel for selections that belong to no session.
func (s *Service) RenderSelection(ctx context.Context, panel models.PanelID, p filter.Panels) presentation.RenderResult {
	return s.renderPanel(ctx, panel, p)
}

// Sweep removes sessions idle past their TTL.
func (s *Service) Sweep(ctx context.Context) int {
	removed := s.sessions.Sweep(ctx, requestcontext.Now(ctx))
	for _, id := range removed {
		s.debouncer.Cancel(id.String())
	}
	s.metrics.SetActiveSessions(s.sessions.Len())
	if len(removed) > 0 {
		s.logger.InfoContext(ctx, "expired view sessions removed", "count", len(removed))
	}
	return len(removed)
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Close drops pending debounced changes.
func (s *Service) Close() {
	s.debouncer.Stop()
}

func (s *Service) render(ctx context.Context, sess *session.Session, panel models.PanelID) (*PanelView, error) {
	start := time.Now()
	panels, generation := sess.BeginRender(panel)
	res := s.renderPanel(ctx, panel, panels)
	if err := sess.CompleteRender(panel, generation, res); err != nil {
		s.metrics.ObserveRender(panel, metrics.OutcomeSuperseded, time.Since(start))
		s.logger.DebugContext(ctx, "render superseded",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", sess.ID,
			"panel", panel,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeConflict, "a newer request for this panel replaced this one")
	}
	s.metrics.ObserveRender(panel, string(res.Status), time.Since(start))
	if res.Status == presentation.StatusError {
		s.emit(ctx, events.Event{
			Type:      events.TypeRenderFailed,
			SessionID: sess.ID.String(),
			Panel:     string(panel),
			Status:    string(res.Status),
			Reason:    res.Message,
		})
	} else {
		s.emit(ctx, events.Event{
			Type:      events.TypeRendered,
			SessionID: sess.ID.String(),
			Panel:     string(panel),
			Status:    string(res.Status),
		})
	}
	return s.panelView(sess.ID, panel, panels, res), nil
}

// renderPanel never fails: query problems become error payloads so the
// other panels and the session state are unaffected.
func (s *Service) renderPanel(ctx context.Context, panel models.PanelID, p filter.Panels) presentation.RenderResult {
	ctx, span := tracer.Start(ctx, "Service.RenderPanel", trace.WithAttributes(attribute.String("panel", string(panel))))
	defer span.End()

	cfg, err := presentation.Config(panel)
	if err != nil {
		return presentation.Failed(panel, "Unknown panel")
	}
	q, err := query.Synthesize(panel, p, s.md)
	if errors.Is(err, query.ErrEmptySelection) {
		return presentation.EmptySelection(panel)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query synthesis failed")
		s.logger.ErrorContext(ctx, "query synthesis failed",
			"request_id", requestcontext.RequestID(ctx),
			"panel", panel,
			"error", err,
		)
		return presentation.Failed(panel, "The selection could not be translated into a query")
	}

	rows, err := s.query(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		s.metrics.IncrementQueryErrors(panel)
		s.logger.ErrorContext(ctx, "panel query failed",
			"request_id", requestcontext.RequestID(ctx),
			"panel", panel,
			"query", q.String(),
			"error", err,
		)
		return presentation.Failed(panel, failureMessage(err))
	}
	span.SetAttributes(attribute.Int("rows", len(rows)))
	return presentation.Pipeline(cfg, p, rows, s.md)
}

func (s *Service) query(ctx context.Context, q query.Query) ([]models.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	start := time.Now()
	rows, err := s.engine.Query(ctx, q)
	if err != nil {
		var qe *query.QueryError
		if errors.As(err, &qe) {
			return nil, err
		}
		return nil, &query.QueryError{Query: q, Err: err}
	}
	s.metrics.ObserveQuery(q.Panel, len(rows), time.Since(start))
	return rows, nil
}

func (s *Service) reduce(panel models.PanelID, p *filter.Panels, ev filter.Event) error {
	if e, ok := ev.(filter.SetYearRange); ok {
		if !panel.IsTimeSeries() {
			return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("field %s is not available on the %s panel", ev.Field(), panel))
		}
		p.YearRange = filter.ReduceYearRange(p.YearRange, e, s.md)
		return nil
	}
	var err error
	switch panel {
	case models.PanelMeasures:
		p.Measures, err = filter.ReduceMeasures(p.Measures, ev, s.md)
	case models.PanelDemographics:
		p.Demographics, err = filter.ReduceDemographics(p.Demographics, ev, s.md)
	case models.PanelStates:
		p.States, err = filter.ReduceStates(p.States, ev, s.md)
	default:
		err = dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown panel %q", panel))
	}
	return err
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	sess, err := s.sessions.Find(ctx, id, requestcontext.Now(ctx))
	if err != nil {
		return nil, translate(err)
	}
	return sess, nil
}

func (s *Service) emit(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, events.FromContext(ctx, e)); err != nil {
		s.logger.DebugContext(ctx, "usage event not published", "type", e.Type, "error", err)
	}
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "session not found")
	case errors.Is(err, sentinel.ErrExpired):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "session expired")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "session lookup failed")
	}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The query took too long. Please try again."
	case errors.Is(err, sentinel.ErrUnavailable):
		return "The data engine is unavailable. Please try again later."
	default:
		return "The query for this selection failed."
	}
}

func eventValue(ev filter.Event) string {
	switch e := ev.(type) {
	case filter.SetState:
		return e.State
	case filter.SetGroup:
		return e.Group
	case filter.SetMeasure:
		return e.Measure
	case filter.SetMeasures:
		return strings.Join(e.Measures, ",")
	case filter.SetCategory:
		return e.Category
	case filter.SetYear:
		return strconv.Itoa(e.Year)
	case filter.SetYearRange:
		return strconv.Itoa(e.Min) + "-" + strconv.Itoa(e.Max)
	default:
		return ""
	}
}
