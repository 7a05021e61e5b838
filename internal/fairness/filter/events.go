package filter

// Event is a single field change coming from a control.
type Event interface {
	// Field names the control the event came from.
	Field() string
	isEvent()
}

// Field names used by controls and events.
const (
	FieldState     = "state"
	FieldGroup     = "demographic_group"
	FieldMeasure   = "measure"
	FieldMeasures  = "measures"
	FieldCategory  = "demographic_category"
	FieldYear      = "year"
	FieldYearRange = "year_range"
)

type SetState struct{ State string }

type SetGroup struct{ Group string }

type SetMeasure struct{ Measure string }

type SetMeasures struct{ Measures []string }

type SetCategory struct{ Category string }

type SetYear struct{ Year int }

// Bound identifies which end of the year-range slider moved.
type Bound string

const (
	BoundMin Bound = "min"
	BoundMax Bound = "max"
)

// SetYearRange moves one or both ends of the shared year range.
type SetYearRange struct {
	Min   int
	Max   int
	Moved Bound
}

func (SetState) Field() string     { return FieldState }
func (SetGroup) Field() string     { return FieldGroup }
func (SetMeasure) Field() string   { return FieldMeasure }
func (SetMeasures) Field() string  { return FieldMeasures }
func (SetCategory) Field() string  { return FieldCategory }
func (SetYear) Field() string      { return FieldYear }
func (SetYearRange) Field() string { return FieldYearRange }

func (SetState) isEvent()     {}
func (SetGroup) isEvent()     {}
func (SetMeasure) isEvent()   {}
func (SetMeasures) isEvent()  {}
func (SetCategory) isEvent()  {}
func (SetYear) isEvent()      {}
func (SetYearRange) isEvent() {}
