// Package models holds the fairness dataset row shape and the fixed
// vocabulary (panels, measures, reference groups) shared by every layer.
package models

import (
	"fmt"
	"strconv"
	"strings"

	dErrors "fairdash/pkg/domain-errors"
)

// Dataset columns. These are the only identifiers the query layer will
// place into SQL text.
const (
	ColumnState               = "state"
	ColumnYear                = "year"
	ColumnDemographicCategory = "demographic_category"
	ColumnDemographicGroup    = "demographic_group"
	ColumnFairnessMeasure     = "fairness_measure"
	ColumnValue               = "value"
	ColumnCoalescedN          = "coalesced_n"
)

// Columns lists every dataset column in storage order.
var Columns = []string{
	ColumnState,
	ColumnYear,
	ColumnDemographicCategory,
	ColumnDemographicGroup,
	ColumnFairnessMeasure,
	ColumnValue,
	ColumnCoalescedN,
}

// IsColumn reports whether name is a known dataset column.
func IsColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Row is one precomputed fairness metric. Rows below the disclosure
// threshold are absent from the dataset, and a nil Value is never
// rendered as zero.
type Row struct {
	State               string   `json:"state"`
	Year                int      `json:"year"`
	DemographicCategory string   `json:"demographic_category"`
	DemographicGroup    string   `json:"demographic_group"`
	FairnessMeasure     string   `json:"fairness_measure"`
	Value               *float64 `json:"value"`
	CoalescedN          int      `json:"coalesced_n"`
}

// Field returns the string form of a grouping column for this row.
func (r Row) Field(column string) string {
	switch column {
	case ColumnState:
		return r.State
	case ColumnYear:
		return strconv.Itoa(r.Year)
	case ColumnDemographicCategory:
		return r.DemographicCategory
	case ColumnDemographicGroup:
		return r.DemographicGroup
	case ColumnFairnessMeasure:
		return r.FairnessMeasure
	default:
		return ""
	}
}

// Condition is an equality filter used for distinct-value lookups.
type Condition struct {
	Column string
	Value  string
}

// YearRange is an inclusive span of calendar years.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

// PanelID identifies one of the dashboard views.
type PanelID string

const (
	PanelMeasures     PanelID = "measures"
	PanelDemographics PanelID = "demographics"
	PanelStates       PanelID = "states"
)

// Tab is a selectable view with its display label.
type Tab struct {
	ID    PanelID `json:"id"`
	Label string  `json:"label"`
}

// Tabs lists the panels in display order.
var Tabs = []Tab{
	{ID: PanelMeasures, Label: "Compare Fairness Measures"},
	{ID: PanelDemographics, Label: "Compare Demographics"},
	{ID: PanelStates, Label: "Compare States"},
}

// ParsePanelID validates a panel identifier.
func ParsePanelID(raw string) (PanelID, error) {
	switch p := PanelID(strings.TrimSpace(strings.ToLower(raw))); p {
	case PanelMeasures, PanelDemographics, PanelStates:
		return p, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown panel %q", raw))
	}
}

// IsTimeSeries reports whether the panel plots values over the shared year range.
func (p PanelID) IsTimeSeries() bool {
	return p == PanelMeasures || p == PanelDemographics
}
