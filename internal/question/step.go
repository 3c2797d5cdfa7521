package question

// Type is the input kind a step collects
type Type string

const (
	TypeText        Type = "text"
	TypeTextarea    Type = "textarea"
	TypeSelect      Type = "select"
	TypeMultiselect Type = "multiselect"
	TypeDate        Type = "date"
	TypeTime        Type = "time"
	TypeTimeList    Type = "time-list"
	TypeNumber      Type = "number"
)

var knownTypes = map[Type]bool{
	TypeText:        true,
	TypeTextarea:    true,
	TypeSelect:      true,
	TypeMultiselect: true,
	TypeDate:        true,
	TypeTime:        true,
	TypeTimeList:    true,
	TypeNumber:      true,
}

// Predicate decides visibility from the full answer map
type Predicate func(Answers) bool

// Step is one question in the flow
type Step struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Type        Type     `json:"type"`
	Question    string   `json:"question"`
	Required    bool     `json:"required"`
	Options     []string `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	HelpText    string   `json:"helpText,omitempty"`

	// ShowIf hides the step when it returns false. Nil means always shown.
	ShowIf Predicate `json:"-"`

	// SatisfiedByAnyOf lists step ids (usually including this one) of which
	// at least one must be answered. It replaces the Required check.
	SatisfiedByAnyOf []string `json:"satisfiedByAnyOf,omitempty"`
}

// Visible evaluates the step's predicate against answers
func (s Step) Visible(answers Answers) bool {
	return s.ShowIf == nil || s.ShowIf(answers)
}

// Conditional reports whether the step has a visibility predicate
func (s Step) Conditional() bool {
	return s.ShowIf != nil
}

// Section is an ordered group of steps
type Section struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`
}

// InstructionPage is shown before the first section
type InstructionPage struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Instructions []string `json:"instructions"`
}

// Position addresses a step by section and step index
type Position struct {
	Section int `json:"sectionIndex"`
	Step    int `json:"stepIndex"`
}
