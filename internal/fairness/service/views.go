package service

import (
	"github.com/google/uuid"

	"fairdash/internal/fairness/filter"
	"fairdash/internal/fairness/models"
	"fairdash/internal/fairness/presentation"
	"fairdash/internal/fairness/store/session"
)

// PanelView is one rendered panel with the controls that produced it.
type PanelView struct {
	SessionID uuid.UUID                 `json:"session_id"`
	Panel     models.PanelID            `json:"panel"`
	Controls  []filter.Control          `json:"controls"`
	YearRange *filter.Control           `json:"year_range,omitempty"`
	Render    presentation.RenderResult `json:"render"`
}

// SessionView is the full state of a session.
type SessionView struct {
	session.View
	Tabs     []models.Tab                        `json:"tabs"`
	Controls map[models.PanelID][]filter.Control `json:"controls"`
	Loading  string                              `json:"loading_message"`
	// Renders holds the last completed render of each panel, so a client
	// reattaching to a session can paint without querying again.
	Renders map[models.PanelID]presentation.RenderResult `json:"renders,omitempty"`
}

func (s *Service) sessionView(sess *session.Session) *SessionView {
	v := sess.View()
	return &SessionView{
		View: v,
		Tabs: append([]models.Tab{}, models.Tabs...),
		Controls: map[models.PanelID][]filter.Control{
			models.PanelMeasures:     s.controls(models.PanelMeasures, v.Panels),
			models.PanelDemographics: s.controls(models.PanelDemographics, v.Panels),
			models.PanelStates:       s.controls(models.PanelStates, v.Panels),
		},
		Loading: presentation.MessageLoading,
		Renders: latestRenders(sess),
	}
}

func latestRenders(sess *session.Session) map[models.PanelID]presentation.RenderResult {
	var out map[models.PanelID]presentation.RenderResult
	for _, tab := range models.Tabs {
		res, ok := sess.Latest(tab.ID)
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[models.PanelID]presentation.RenderResult)
		}
		out[tab.ID] = res
	}
	return out
}

func (s *Service) panelView(id uuid.UUID, panel models.PanelID, p filter.Panels, res presentation.RenderResult) *PanelView {
	v := &PanelView{
		SessionID: id,
		Panel:     panel,
		Controls:  s.controls(panel, p),
		Render:    res,
	}
	if panel.IsTimeSeries() {
		c := filter.YearRangeControl(p.YearRange, s.md)
		v.YearRange = &c
	}
	return v
}

func (s *Service) controls(panel models.PanelID, p filter.Panels) []filter.Control {
	switch panel {
	case models.PanelMeasures:
		return filter.MeasuresControls(p.Measures, s.md)
	case models.PanelDemographics:
		return filter.DemographicsControls(p.Demographics, s.md)
	case models.PanelStates:
		return filter.StatesControls(p.States, s.md)
	default:
		return nil
	}
}
