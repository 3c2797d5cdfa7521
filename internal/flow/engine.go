package flow

import (
	"math"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/question"
)

// Engine applies wizard transitions for one catalog. It holds no
// session state; every method maps a State to a new State.
type Engine struct {
	catalog *question.Catalog
}

func NewEngine(catalog *question.Catalog) *Engine {
	if catalog == nil {
		panic("flow: nil catalog")
	}
	return &Engine{catalog: catalog}
}

// Catalog returns the catalog the engine walks
func (e *Engine) Catalog() *question.Catalog {
	return e.catalog
}

// Start returns the initial state, showing the instruction page
func (e *Engine) Start() State {
	return State{
		Answers:             question.Answers{},
		ShowingInstructions: true,
		Valid:               true,
	}
}

// Reset discards the run and returns to the instruction page
func (e *Engine) Reset() State {
	return e.Start()
}

// CurrentStep returns the displayed step
func (e *Engine) CurrentStep(s State) (question.Step, bool) {
	if s.ShowingInstructions || s.Completed {
		return question.Step{}, false
	}
	return e.catalog.StepAt(s.position())
}

// CurrentSection returns the section of the displayed step
func (e *Engine) CurrentSection(s State) (question.Section, bool) {
	if s.ShowingInstructions || s.Completed {
		return question.Section{}, false
	}
	return e.catalog.Section(s.SectionIndex)
}

// UpdateAnswer records value for stepID. The step must exist in the
// catalog; an unknown id panics.
func (e *Engine) UpdateAnswer(s State, stepID string, value question.Value) State {
	e.catalog.Step(stepID)

	s.Answers = s.Answers.With(stepID, value)
	s.Valid = e.CanProceed(s)
	return s
}

// Next moves to the next visible step, or completes the run when none
// remain.
func (e *Engine) Next(s State) State {
	if s.Completed {
		return s
	}

	var (
		candidate question.Position
		ok        bool
	)
	if s.ShowingInstructions {
		candidate, ok = question.Position{}, e.catalog.SectionCount() > 0
	} else {
		candidate, ok = e.catalog.Advance(s.position())
	}

	pos, ok := e.nextVisible(candidate, ok, s.Answers)
	s.ShowingInstructions = false
	if !ok {
		s.Completed = true
		return s.at(question.Position{Section: e.catalog.SectionCount()})
	}
	return e.revalidate(s.at(pos))
}

// Previous moves to the previous visible step. Retreating past the
// first step shows the instruction page; on the instruction page it is
// a no-op. A completed run reopens on its last visible step.
func (e *Engine) Previous(s State) State {
	if s.ShowingInstructions {
		return s
	}
	from := s.position()
	if s.Completed {
		s.Completed = false
		from = question.Position{Section: e.catalog.SectionCount()}
	}

	candidate, ok := e.catalog.Retreat(from)
	for ok && !e.catalog.Visible(candidate, s.Answers) {
		candidate, ok = e.catalog.Retreat(candidate)
	}
	if !ok {
		s.ShowingInstructions = true
		return e.revalidate(s.at(question.Position{}))
	}
	return e.revalidate(s.at(candidate))
}

// JumpTo moves directly to p when it holds a visible step
func (e *Engine) JumpTo(s State, p question.Position) (State, bool) {
	if !e.catalog.Visible(p, s.Answers) {
		return s, false
	}
	s.ShowingInstructions = false
	s.Completed = false
	return e.revalidate(s.at(p)), true
}

// Complete marks the run finished without moving through the
// remaining steps.
func (e *Engine) Complete(s State) State {
	s.Completed = true
	s.ShowingInstructions = false
	return s.at(question.Position{Section: e.catalog.SectionCount()})
}

// CanProceed reports whether the displayed step is satisfied
func (e *Engine) CanProceed(s State) bool {
	if s.ShowingInstructions {
		return true
	}
	step, ok := e.CurrentStep(s)
	if !ok {
		return false
	}

	if len(step.SatisfiedByAnyOf) > 0 {
		for _, id := range step.SatisfiedByAnyOf {
			if s.Answers.Filled(id) {
				return true
			}
		}
		return false
	}

	return !step.Required || s.Answers.Filled(step.ID)
}

// Progress counts every catalog step, visible or not, plus the
// instruction page.
func (e *Engine) Progress(s State) Progress {
	total := e.catalog.TotalSteps() + 1

	current := 1
	switch {
	case s.Completed:
		current = total
	case !s.ShowingInstructions:
		current += e.catalog.StepsBefore(s.SectionIndex) + s.StepIndex + 1
	}

	return Progress{
		Current:    current,
		Total:      total,
		Percentage: int(math.Round(float64(current) / float64(total) * 100)),
	}
}

// Apply performs one recorded action
func (e *Engine) Apply(s State, a Action) State {
	switch a.Type {
	case ActionStart, ActionReset:
		return e.Start()
	case ActionNext:
		return e.Next(s)
	case ActionPrevious:
		return e.Previous(s)
	case ActionJump:
		next, _ := e.JumpTo(s, a.Position)
		return next
	case ActionAnswer:
		return e.UpdateAnswer(s, a.StepID, a.Value)
	case ActionComplete:
		return e.Complete(s)
	default:
		return s
	}
}

// Replay folds actions over a fresh run
func (e *Engine) Replay(actions ...Action) State {
	s := e.Start()
	for _, a := range actions {
		s = e.Apply(s, a)
	}
	return s
}

func (e *Engine) nextVisible(p question.Position, ok bool, answers question.Answers) (question.Position, bool) {
	for ok && !e.catalog.Visible(p, answers) {
		p, ok = e.catalog.Advance(p)
	}
	return p, ok
}

func (e *Engine) revalidate(s State) State {
	s.Valid = e.CanProceed(s)
	return s
}
