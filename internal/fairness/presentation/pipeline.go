package presentation

import (
	"fmt"
	"strconv"

	"fairdash/internal/fairness/catalog"
	"fairdash/internal/fairness/filter"
	"fairdash/internal/fairness/metadata"
	"fairdash/internal/fairness/models"
	pkgstrings "fairdash/pkg/platform/strings"
)

// Status of a render payload.
type Status string

const (
	StatusOK             Status = "ok"
	StatusNoData         Status = "no_data"
	StatusEmptySelection Status = "empty_selection"
	StatusError          Status = "error"
)

// Messages shown in place of a chart.
const (
	MessageLoading        = "Loading..."
	MessageEmptySelection = "Please select at least one fairness measure"
	MessageNoData         = "No data for selection"
)

// YLabel labels the value axis of every chart.
const YLabel = "Fairness violation"

// Selection is the part of a panel's state the pipeline needs, with
// display values.
type Selection struct {
	Measures []string
	State    string
	Category string
	Group    string
	Year     int
}

// PanelConfig is what differs between panels. Everything else runs through
// Pipeline.
type PanelConfig struct {
	Panel models.PanelID
	// SeriesKind is empty for panels without a legend.
	SeriesKind SeriesKind
	// MultiMeasure selects the plural caption wording.
	MultiMeasure bool
	// Choropleth attaches a color scale and tile coordinates.
	Choropleth bool
	Select     func(filter.Panels) Selection
	// Reference names the group captions compare against.
	Reference func(Selection) string
	Title     func(s Selection, reference string) (title, subtitle string)
}

var configs = map[models.PanelID]PanelConfig{
	models.PanelMeasures: {
		Panel:        models.PanelMeasures,
		SeriesKind:   SeriesMeasures,
		MultiMeasure: true,
		Select: func(p filter.Panels) Selection {
			return Selection{
				Measures: append([]string{}, p.Measures.Measures...),
				State:    p.Measures.State,
				Group:    p.Measures.DemographicGroup,
			}
		},
		Reference: func(s Selection) string { return models.ReferenceGroup(s.Group) },
		Title: func(s Selection, reference string) (string, string) {
			return fmt.Sprintf("Comparing Fairness Measures for %s Applicants — %s", s.Group, s.State),
				fmt.Sprintf("Percentage point differences compared to %s applicants", reference)
		},
	},
	models.PanelDemographics: {
		Panel:      models.PanelDemographics,
		SeriesKind: SeriesGroups,
		Select: func(p filter.Panels) Selection {
			return Selection{
				Measures: single(p.Demographics.Measure),
				State:    p.Demographics.State,
				Category: p.Demographics.DemographicCategory,
			}
		},
		Reference: func(s Selection) string { return models.ReferenceGroupForCategory(s.Category) },
		Title: func(s Selection, _ string) (string, string) {
			return fmt.Sprintf("%s over time by %s — %s", first(s.Measures), s.Category, s.State), ""
		},
	},
	models.PanelStates: {
		Panel:      models.PanelStates,
		Choropleth: true,
		Select: func(p filter.Panels) Selection {
			return Selection{
				Measures: single(p.States.Measure),
				Category: p.States.DemographicCategory,
				Group:    p.States.DemographicGroup,
				Year:     p.States.Year,
			}
		},
		Reference: func(s Selection) string { return models.ReferenceGroup(s.Group) },
		Title: func(s Selection, _ string) (string, string) {
			return fmt.Sprintf("%s by state (%d) — %s", first(s.Measures), s.Year, s.Group), ""
		},
	},
}

// Config returns the pipeline configuration of a panel.
func Config(panel models.PanelID) (PanelConfig, error) {
	cfg, ok := configs[panel]
	if !ok {
		return PanelConfig{}, fmt.Errorf("no presentation config for panel %q", panel)
	}
	return cfg, nil
}

// Point is one plotted value with its hover text.
type Point struct {
	Series       string            `json:"series,omitempty"`
	State        string            `json:"state"`
	StateCode    string            `json:"state_code"`
	Year         int               `json:"year"`
	Value        float64           `json:"value"`
	SampleSize   int               `json:"sample_size"`
	TooltipTitle string            `json:"tooltip_title"`
	Tooltip      string            `json:"tooltip"`
	Hex          *catalog.HexCoord `json:"hex,omitempty"`
}

// RenderResult is everything a view needs to draw one panel.
type RenderResult struct {
	Panel    models.PanelID `json:"panel"`
	Status   Status         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Title    string         `json:"title,omitempty"`
	Subtitle string         `json:"subtitle,omitempty"`
	YLabel   string         `json:"y_label,omitempty"`
	Decimals int            `json:"decimals"`
	Series   []Series       `json:"series,omitempty"`
	Points   []Point        `json:"points"`
	Scale    *Scale         `json:"scale,omitempty"`
	Caption  *Caption       `json:"caption,omitempty"`
}

// Pipeline maps the rows of a panel query onto its render payload.
func Pipeline(cfg PanelConfig, p filter.Panels, rows []models.Row, md *metadata.Cache) RenderResult {
	sel := cfg.Select(p)
	if len(rows) == 0 {
		return NoData(cfg.Panel)
	}

	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.Value != nil {
			values = append(values, *r.Value)
		}
	}
	if len(values) == 0 {
		return NoData(cfg.Panel)
	}
	decimals := Precision(values)
	reference := cfg.Reference(sel)
	title, subtitle := cfg.Title(sel, reference)
	caption := CaptionFor(sel.Measures, reference, cfg.MultiMeasure)

	res := RenderResult{
		Panel:    cfg.Panel,
		Status:   StatusOK,
		Title:    title,
		Subtitle: subtitle,
		YLabel:   YLabel,
		Decimals: decimals,
		Points:   make([]Point, 0, len(values)),
		Caption:  &caption,
	}

	var keys []string
	seen := make(map[string]bool)
	for _, r := range rows {
		if r.Value == nil {
			continue
		}
		state := md.StateDisplay(r.State)
		pt := Point{
			State:      state,
			StateCode:  r.State,
			Year:       r.Year,
			Value:      *r.Value,
			SampleSize: r.CoalescedN,
			Tooltip: Narrative(r.FairnessMeasure, state, r.DemographicGroup,
				models.ReferenceGroup(r.DemographicGroup), *r.Value, decimals, r.CoalescedN),
		}
		switch cfg.SeriesKind {
		case SeriesMeasures:
			pt.Series = r.FairnessMeasure
		case SeriesGroups:
			pt.Series = r.DemographicGroup
		}
		if pt.Series != "" && !seen[pt.Series] {
			seen[pt.Series] = true
			keys = append(keys, pt.Series)
		}
		label := pt.Series
		if label == "" {
			label = state
		}
		pt.TooltipTitle = label + ", " + strconv.Itoa(r.Year)
		if cfg.Choropleth {
			if hex, ok := catalog.HexCoordFor(r.State); ok {
				pt.Hex = &hex
			}
		}
		res.Points = append(res.Points, pt)
	}

	// The legend lists only series present in the rows. Measures follow
	// dataset order whatever order the engine returned them in.
	if cfg.SeriesKind == SeriesMeasures {
		keys = pkgstrings.OrderLike(keys, md.FairnessMeasures())
	}
	if cfg.SeriesKind != "" {
		res.Series = SeriesColors(keys, md, cfg.SeriesKind)
	}
	if cfg.Choropleth {
		scale := Choropleth(values)
		res.Scale = &scale
	}
	return res
}

// NoData is the payload of a query that matched nothing.
func NoData(panel models.PanelID) RenderResult {
	return RenderResult{Panel: panel, Status: StatusNoData, Message: MessageNoData, Decimals: DefaultDecimals, Points: []Point{}}
}

// EmptySelection is the payload of a panel with nothing selected. No query
// runs for it.
func EmptySelection(panel models.PanelID) RenderResult {
	return RenderResult{Panel: panel, Status: StatusEmptySelection, Message: MessageEmptySelection, Decimals: DefaultDecimals, Points: []Point{}}
}

// Failed is the payload of a panel whose query could not run.
func Failed(panel models.PanelID, message string) RenderResult {
	return RenderResult{Panel: panel, Status: StatusError, Message: message, Decimals: DefaultDecimals, Points: []Point{}}
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
