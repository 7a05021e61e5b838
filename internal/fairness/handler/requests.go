package handler

import (
	"fmt"
	"strings"

	"fairdash/internal/fairness/filter"
	"fairdash/internal/fairness/models"
	dErrors "fairdash/pkg/domain-errors"
)

const maxValues = 32

// EventRequest is the body of POST /api/sessions/{id}/panels/{panel}/events.
// Which value field is read depends on Field.
type EventRequest struct {
	Field  string   `json:"field"`
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
	Year   int      `json:"year,omitempty"`
	Min    int      `json:"min,omitempty"`
	Max    int      `json:"max,omitempty"`
	Moved  string   `json:"moved,omitempty"`

	event filter.Event
}

// Validate parses the body into a filter event.
func (r *EventRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Values) > maxValues {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("values must have at most %d entries", maxValues))
	}
	r.Field = strings.TrimSpace(r.Field)
	r.Value = strings.TrimSpace(r.Value)

	needValue := func() error {
		if r.Value == "" {
			return dErrors.New(dErrors.CodeValidation, "value is required")
		}
		return nil
	}
	switch r.Field {
	case "":
		return dErrors.New(dErrors.CodeValidation, "field is required")
	case filter.FieldState:
		if err := needValue(); err != nil {
			return err
		}
		r.event = filter.SetState{State: r.Value}
	case filter.FieldGroup:
		if err := needValue(); err != nil {
			return err
		}
		r.event = filter.SetGroup{Group: r.Value}
	case filter.FieldMeasure:
		if err := needValue(); err != nil {
			return err
		}
		r.event = filter.SetMeasure{Measure: r.Value}
	case filter.FieldCategory:
		if err := needValue(); err != nil {
			return err
		}
		r.event = filter.SetCategory{Category: r.Value}
	case filter.FieldMeasures:
		r.event = filter.SetMeasures{Measures: append([]string{}, r.Values...)}
	case filter.FieldYear:
		if r.Year == 0 {
			return dErrors.New(dErrors.CodeValidation, "year is required")
		}
		r.event = filter.SetYear{Year: r.Year}
	case filter.FieldYearRange:
		ev, err := yearRange(r.Min, r.Max, r.Moved)
		if err != nil {
			return err
		}
		r.event = ev
	default:
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown field %q", r.Field))
	}
	return nil
}

// Event returns the parsed event. Only valid after Validate.
func (r *EventRequest) Event() filter.Event { return r.event }

// YearRangeRequest is the body of POST /api/sessions/{id}/year-range.
type YearRangeRequest struct {
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Moved string `json:"moved,omitempty"`

	event filter.SetYearRange
}

func (r *YearRangeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	ev, err := yearRange(r.Min, r.Max, r.Moved)
	if err != nil {
		return err
	}
	r.event = ev
	return nil
}

// ActivePanelRequest is the body of PUT /api/sessions/{id}/active-panel.
type ActivePanelRequest struct {
	Panel string `json:"panel"`

	parsed models.PanelID
}

func (r *ActivePanelRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Panel) == "" {
		return dErrors.New(dErrors.CodeValidation, "panel is required")
	}
	panel, err := models.ParsePanelID(r.Panel)
	if err != nil {
		return err
	}
	r.parsed = panel
	return nil
}

func yearRange(lo, hi int, moved string) (filter.SetYearRange, error) {
	if lo == 0 || hi == 0 {
		return filter.SetYearRange{}, dErrors.New(dErrors.CodeValidation, "min and max are required")
	}
	bound := filter.Bound(strings.ToLower(strings.TrimSpace(moved)))
	switch bound {
	case "", filter.BoundMin, filter.BoundMax:
	default:
		return filter.SetYearRange{}, dErrors.New(dErrors.CodeValidation, "moved must be min or max")
	}
	return filter.SetYearRange{Min: lo, Max: hi, Moved: bound}, nil
}
