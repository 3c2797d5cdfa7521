// Package flow implements the add-medication wizard as pure state
// transitions over a question catalog.
package flow

import "github.com/mitchsteamy/crome-lab-fmsp/internal/question"

// State is the position and accumulated answers of one wizard run
type State struct {
	SectionIndex        int              `json:"sectionIndex"`
	StepIndex           int              `json:"stepIndex"`
	Answers             question.Answers `json:"answers"`
	Completed           bool             `json:"completed"`
	ShowingInstructions bool             `json:"showingInstructions"`

	// Valid is whether the displayed step could proceed after the most
	// recent answer.
	Valid bool `json:"isValid"`
}

func (s State) position() question.Position {
	return question.Position{Section: s.SectionIndex, Step: s.StepIndex}
}

func (s State) at(p question.Position) State {
	s.SectionIndex = p.Section
	s.StepIndex = p.Step
	return s
}

// Progress is the wizard's completion indicator
type Progress struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// ActionType names a recorded transition
type ActionType string

const (
	ActionStart    ActionType = "start"
	ActionNext     ActionType = "next"
	ActionPrevious ActionType = "previous"
	ActionJump     ActionType = "jump"
	ActionAnswer   ActionType = "answer"
	ActionComplete ActionType = "complete"
	ActionReset    ActionType = "reset"
)

// Action is one entry of a replayable transition log
type Action struct {
	Type     ActionType        `json:"type"`
	StepID   string            `json:"stepId,omitempty"`
	Value    question.Value    `json:"value"`
	Position question.Position `json:"position"`
}
