// Package handler exposes view sessions over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fairdash/internal/fairness/filter"
	"fairdash/internal/fairness/metadata"
	"fairdash/internal/fairness/models"
	"fairdash/internal/fairness/service"
	dErrors "fairdash/pkg/domain-errors"
	"fairdash/pkg/platform/httputil"
	"fairdash/pkg/requestcontext"
)

// Service defines the session operations the handler needs.
type Service interface {
	Metadata() metadata.Snapshot
	CreateSession(ctx context.Context) (*service.SessionView, error)
	Session(ctx context.Context, id uuid.UUID) (*service.SessionView, error)
	CloseSession(ctx context.Context, id uuid.UUID) error
	ApplyEvent(ctx context.Context, id uuid.UUID, panel models.PanelID, ev filter.Event) (*service.PanelView, error)
	SetYearRange(ctx context.Context, id uuid.UUID, ev filter.SetYearRange) error
	Render(ctx context.Context, id uuid.UUID, panel models.PanelID) (*service.PanelView, error)
	SetActivePanel(ctx context.Context, id uuid.UUID, panel models.PanelID) (*service.PanelView, error)
}

// Handler wires dashboard endpoints to the session service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the dashboard endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/metadata", h.HandleMetadata)
	r.Post("/api/sessions", h.HandleCreateSession)
	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.HandleGetSession)
		r.Delete("/", h.HandleCloseSession)
		r.Put("/active-panel", h.HandleSetActivePanel)
		r.Post("/year-range", h.HandleSetYearRange)
		r.Get("/panels/{panel}", h.HandleRender)
		r.Post("/panels/{panel}/events", h.HandleEvent)
	})
}

// HandleMetadata handles GET /api/metadata.
func (h *Handler) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Metadata())
}

// HandleCreateSession handles POST /api/sessions.
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.CreateSession(ctx)
	if err != nil {
		h.fail(ctx, w, "create session failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, view)
}

// HandleGetSession handles GET /api/sessions/{id}.
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Session(ctx, id)
	if err != nil {
		h.fail(ctx, w, "get session failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleCloseSession handles DELETE /api/sessions/{id}.
func (h *Handler) HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.service.CloseSession(ctx, id); err != nil {
		h.fail(ctx, w, "close session failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEvent handles POST /api/sessions/{id}/panels/{panel}/events.
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	panel, ok := panelID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[EventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	view, err := h.service.ApplyEvent(ctx, id, panel, req.Event())
	if err != nil {
		h.fail(ctx, w, "filter event failed", err)
		return
	}
	h.logger.InfoContext(ctx, "filter event applied",
		"request_id", requestID,
		"session_id", id,
		"panel", panel,
		"field", req.Field,
		"status", view.Render.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleSetYearRange handles POST /api/sessions/{id}/year-range. The change
// is applied after the debounce window, so the response only acknowledges it.
func (h *Handler) HandleSetYearRange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[YearRangeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.SetYearRange(ctx, id, req.event); err != nil {
		h.fail(ctx, w, "year range change failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
		"session_id": id,
		"min":        req.event.Min,
		"max":        req.event.Max,
	})
}

// HandleRender handles GET /api/sessions/{id}/panels/{panel}.
func (h *Handler) HandleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	panel, ok := panelID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Render(ctx, id, panel)
	if err != nil {
		h.fail(ctx, w, "render failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleSetActivePanel handles PUT /api/sessions/{id}/active-panel.
func (h *Handler) HandleSetActivePanel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ActivePanelRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	view, err := h.service.SetActivePanel(ctx, id, req.parsed)
	if err != nil {
		h.fail(ctx, w, "tab change failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelInfo
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid session id"))
		return uuid.Nil, false
	}
	return id, true
}

func panelID(w http.ResponseWriter, r *http.Request) (models.PanelID, bool) {
	panel, err := models.ParsePanelID(chi.URLParam(r, "panel"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return panel, true
}
