package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHousehold_Shape(t *testing.T) {
	c := Household()

	require.Equal(t, 6, c.SectionCount())
	assert.Equal(t, 35, c.TotalSteps())
	assert.Equal(t, "Family Medication Safety Plan", c.Intro().Title)
	assert.Len(t, c.Intro().Instructions, 4)

	ids := []string{"basic_info", "dosage_admin", "schedule", "safety_info", "storage_disposal", "communication_safety"}
	for i, id := range ids {
		section, ok := c.Section(i)
		require.True(t, ok)
		assert.Equal(t, id, section.ID)
	}
	assert.Equal(t, 6+5, c.StepsBefore(2))
}

func TestHousehold_Predicates(t *testing.T) {
	c := Household()

	assert.False(t, c.Step(PatientName).Visible(Answers{}))
	assert.True(t, c.Step(PatientName).Visible(Answers{PatientRelationship: String("other")}))

	daily := Answers{ScheduleFrequency: String("every day")}
	assert.True(t, c.Step(DailyFrequency).Visible(daily))
	assert.True(t, c.Step(FirstDoseTime).Visible(daily))
	assert.False(t, c.Step(DoseTimes).Visible(daily))

	withTimes := daily.
		With(DailyFrequency, String("twice")).
		With(FirstDoseTime, String("2024-01-01T08:00:00Z"))
	assert.True(t, c.Step(DoseTimes).Visible(withTimes))
	assert.False(t, c.Step(DoseTimes).Visible(withTimes.With(DailyFrequency, String("once"))))

	weekly := Answers{ScheduleFrequency: String("every-x-weeks")}
	assert.True(t, c.Step(IntervalWeeks).Visible(weekly))
	assert.False(t, c.Step(FirstDoseTime).Visible(weekly))
	assert.False(t, c.Step(DailyFrequency).Visible(weekly))
}

func TestNewCatalog_RejectsDuplicateIDs(t *testing.T) {
	_, err := NewCatalog(InstructionPage{},
		Section{ID: "a", Steps: []Step{{ID: "x", Type: TypeText}}},
		Section{ID: "b", Steps: []Step{{ID: "x", Type: TypeText}}},
	)
	assert.ErrorIs(t, err, ErrDuplicateStep)
}

func TestNewCatalog_RejectsInvalidSteps(t *testing.T) {
	_, err := NewCatalog(InstructionPage{}, Section{ID: "a", Steps: []Step{{ID: "", Type: TypeText}}})
	assert.ErrorIs(t, err, ErrEmptyStepID)

	_, err = NewCatalog(InstructionPage{}, Section{ID: "a", Steps: []Step{{ID: "pick", Type: TypeSelect}}})
	assert.ErrorIs(t, err, ErrMissingOption)

	_, err = NewCatalog(InstructionPage{}, Section{ID: "a", Steps: []Step{{ID: "odd", Type: "slider"}}})
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = NewCatalog(InstructionPage{}, Section{ID: "a", Steps: []Step{
		{ID: "x", Type: TypeText, SatisfiedByAnyOf: []string{"x", "missing"}},
	}})
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestMustCatalog_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustCatalog(InstructionPage{},
			Section{ID: "a", Steps: []Step{{ID: "x", Type: TypeText}, {ID: "x", Type: TypeText}}},
		)
	})
}

func TestCatalog_StepLookup(t *testing.T) {
	c := Household()

	step, pos, ok := c.Find(GenericName)
	require.True(t, ok)
	assert.Equal(t, Position{Section: 0, Step: 4}, pos)
	assert.Equal(t, []string{BrandName, GenericName}, step.SatisfiedByAnyOf)

	_, _, ok = c.Find("nope")
	assert.False(t, ok)
	assert.Panics(t, func() { c.Step("nope") })
}

func TestCatalog_AdvanceRetreat(t *testing.T) {
	c := MustCatalog(InstructionPage{},
		Section{ID: "a", Steps: []Step{{ID: "a1", Type: TypeText}, {ID: "a2", Type: TypeText}}},
		Section{ID: "empty"},
		Section{ID: "b", Steps: []Step{{ID: "b1", Type: TypeText}}},
	)

	p, ok := c.Advance(Position{0, 0})
	require.True(t, ok)
	assert.Equal(t, Position{0, 1}, p)

	p, ok = c.Advance(p)
	require.True(t, ok)
	assert.Equal(t, Position{1, 0}, p)
	assert.False(t, c.Visible(p, nil))

	p, ok = c.Advance(p)
	require.True(t, ok)
	assert.Equal(t, Position{2, 0}, p)

	_, ok = c.Advance(p)
	assert.False(t, ok)

	p, ok = c.Retreat(Position{2, 0})
	require.True(t, ok)
	assert.Equal(t, Position{1, -1}, p)
	assert.False(t, c.Visible(p, nil))

	p, ok = c.Retreat(p)
	require.True(t, ok)
	assert.Equal(t, Position{0, 1}, p)

	p, ok = c.Retreat(Position{Section: 3})
	require.True(t, ok)
	assert.Equal(t, Position{2, 0}, p)

	_, ok = c.Retreat(Position{0, 0})
	assert.False(t, ok)
}

func TestCatalog_IsImmutable(t *testing.T) {
	c := Household()
	sections := c.Sections()
	sections[0].Title = "changed"

	first, _ := c.Section(0)
	assert.Equal(t, "Basic Info", first.Title)
}
