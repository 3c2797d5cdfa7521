package question

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateStep = errors.New("duplicate step id")
	ErrEmptyStepID   = errors.New("empty step id")
	ErrUnknownStep   = errors.New("unknown step id")
	ErrMissingOption = errors.New("select step without options")
	ErrUnknownType   = errors.New("unknown step type")
)

// Catalog is an immutable, validated set of sections
type Catalog struct {
	intro    InstructionPage
	sections []Section
	index    map[string]Position
	total    int
}

// NewCatalog validates the sections and builds the id index
func NewCatalog(intro InstructionPage, sections ...Section) (*Catalog, error) {
	c := &Catalog{
		intro:    copyIntro(intro),
		sections: make([]Section, len(sections)),
		index:    make(map[string]Position),
	}

	for si, section := range sections {
		steps := make([]Step, len(section.Steps))
		for pi, step := range section.Steps {
			if step.ID == "" {
				return nil, fmt.Errorf("section %q step %d: %w", section.ID, pi, ErrEmptyStepID)
			}
			if _, exists := c.index[step.ID]; exists {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateStep, step.ID)
			}
			if !knownTypes[step.Type] {
				return nil, fmt.Errorf("step %s: %w: %q", step.ID, ErrUnknownType, step.Type)
			}
			if (step.Type == TypeSelect || step.Type == TypeMultiselect) && len(step.Options) == 0 {
				return nil, fmt.Errorf("step %s: %w", step.ID, ErrMissingOption)
			}
			step.Options = append([]string(nil), step.Options...)
			step.SatisfiedByAnyOf = append([]string(nil), step.SatisfiedByAnyOf...)
			steps[pi] = step
			c.index[step.ID] = Position{Section: si, Step: pi}
		}
		section.Steps = steps
		c.sections[si] = section
		c.total += len(steps)
	}

	// Alternative groups may point forward, so check after indexing.
	for _, section := range c.sections {
		for _, step := range section.Steps {
			for _, alt := range step.SatisfiedByAnyOf {
				if _, ok := c.index[alt]; !ok {
					return nil, fmt.Errorf("step %s alternative %s: %w", step.ID, alt, ErrUnknownStep)
				}
			}
		}
	}

	return c, nil
}

// MustCatalog is NewCatalog that panics on an invalid definition
func MustCatalog(intro InstructionPage, sections ...Section) *Catalog {
	c, err := NewCatalog(intro, sections...)
	if err != nil {
		panic(fmt.Sprintf("invalid question catalog: %v", err))
	}
	return c
}

func copyIntro(intro InstructionPage) InstructionPage {
	intro.Instructions = append([]string(nil), intro.Instructions...)
	return intro
}

// Intro returns the instruction page
func (c *Catalog) Intro() InstructionPage {
	return copyIntro(c.intro)
}

// Sections returns a copy of the section list
func (c *Catalog) Sections() []Section {
	out := make([]Section, len(c.sections))
	copy(out, c.sections)
	return out
}

// SectionCount returns the number of sections
func (c *Catalog) SectionCount() int {
	return len(c.sections)
}

// Section returns the section at index i
func (c *Catalog) Section(i int) (Section, bool) {
	if i < 0 || i >= len(c.sections) {
		return Section{}, false
	}
	return c.sections[i], true
}

// TotalSteps counts every step regardless of visibility
func (c *Catalog) TotalSteps() int {
	return c.total
}

// StepsBefore counts the steps in all sections before section i
func (c *Catalog) StepsBefore(i int) int {
	n := 0
	for s := 0; s < i && s < len(c.sections); s++ {
		n += len(c.sections[s].Steps)
	}
	return n
}

// StepAt returns the step at p when p is in range
func (c *Catalog) StepAt(p Position) (Step, bool) {
	if p.Section < 0 || p.Section >= len(c.sections) {
		return Step{}, false
	}
	steps := c.sections[p.Section].Steps
	if p.Step < 0 || p.Step >= len(steps) {
		return Step{}, false
	}
	return steps[p.Step], true
}

// Find looks up a step by id
func (c *Catalog) Find(id string) (Step, Position, bool) {
	p, ok := c.index[id]
	if !ok {
		return Step{}, Position{}, false
	}
	step, _ := c.StepAt(p)
	return step, p, true
}

// Step looks up a step by id and panics when it does not exist
func (c *Catalog) Step(id string) Step {
	step, _, ok := c.Find(id)
	if !ok {
		panic(fmt.Sprintf("question catalog: %v: %s", ErrUnknownStep, id))
	}
	return step
}

// Advance returns the position after p in declaration order. It may
// land on a position with no step when a section is empty; callers
// skip those the same way they skip hidden steps.
func (c *Catalog) Advance(p Position) (Position, bool) {
	if p.Section < 0 {
		return Position{}, len(c.sections) > 0
	}
	if p.Section >= len(c.sections) {
		return p, false
	}
	if p.Step+1 < len(c.sections[p.Section].Steps) {
		return Position{Section: p.Section, Step: p.Step + 1}, true
	}
	if p.Section+1 >= len(c.sections) {
		return Position{Section: len(c.sections)}, false
	}
	return Position{Section: p.Section + 1}, true
}

// Retreat returns the position before p. A position past the last
// section retreats onto the final step.
func (c *Catalog) Retreat(p Position) (Position, bool) {
	if p.Section >= len(c.sections) {
		if len(c.sections) == 0 {
			return Position{}, false
		}
		last := len(c.sections) - 1
		return Position{Section: last, Step: len(c.sections[last].Steps) - 1}, true
	}
	if p.Step > 0 {
		return Position{Section: p.Section, Step: p.Step - 1}, true
	}
	if p.Section <= 0 {
		return Position{}, false
	}
	prev := p.Section - 1
	return Position{Section: prev, Step: len(c.sections[prev].Steps) - 1}, true
}

// Visible reports whether p holds a step that is shown for answers
func (c *Catalog) Visible(p Position, answers Answers) bool {
	step, ok := c.StepAt(p)
	return ok && step.Visible(answers)
}
