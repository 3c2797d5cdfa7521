// Package builder maps a finished set of wizard answers onto a
// Medication record.
package builder

import (
	"strings"
	"time"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/question"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/schedule"

	"github.com/oklog/ulid/v2"
)

// Defaults for answers that were skipped or left blank.
const (
	DefaultPatientName          = "Patient"
	DefaultDosageAmount         = "1"
	DefaultDosageUnit           = "tablet"
	DefaultAdministrationMethod = "by mouth"
	DefaultFoodRequirement      = "no food requirement"
	DefaultContactRole          = "Healthcare Provider"
	OverdoseInstructions        = "Contact emergency services (911) or poison control (1-800-222-1222)"
)

// DefaultDoseTime is used when no dose time can be derived at all.
var DefaultDoseTime = model.DoseTime{Hour: 9, Minute: 0}

// Builder turns answers into medications
type Builder struct {
	now   func() time.Time
	newID func() string
}

type Option func(*Builder)

// WithClock sets the source of creation timestamps
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithIDGenerator sets the source of medication ids
func WithIDGenerator(newID func() string) Option {
	return func(b *Builder) { b.newID = newID }
}

func New(opts ...Option) *Builder {
	b := &Builder{
		now:   time.Now,
		newID: func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles a new active medication from answers. Every field has
// a default, so Build never fails.
func (b *Builder) Build(a question.Answers) model.Medication {
	now := b.now().UTC().Round(0)
	frequency := model.ScheduleFrequency(textOr(a, question.ScheduleFrequency, string(model.FrequencyEveryDay)))

	med := model.Medication{
		ID: b.newID(),

		PatientName:      patientName(a),
		BrandName:        text(a, question.BrandName),
		GenericName:      text(a, question.GenericName),
		PrescriptionType: model.PrescriptionType(textOr(a, question.PrescriptionType, string(model.PrescriptionTypeOverTheCounter))),
		ReasonForUse:     text(a, question.ReasonForUse),

		DosageAmount:         textOr(a, question.DosageAmount, DefaultDosageAmount),
		DosageUnit:           textOr(a, question.DosageUnit, DefaultDosageUnit),
		DosageStrength:       text(a, question.DosageStrength),
		AdministrationMethod: textOr(a, question.AdministrationMethod, DefaultAdministrationMethod),
		FoodRequirement:      textOr(a, question.FoodRequirement, DefaultFoodRequirement),

		Schedule: model.Schedule{
			Frequency:      frequency,
			DailyFrequency: model.DailyFrequency(text(a, question.DailyFrequency)),
			DoseTimes:      doseTimes(a),
			DaysOfWeek:     days(a),
			IntervalDays:   count(a, question.IntervalDays),
			IntervalWeeks:  count(a, question.IntervalWeeks),
			IntervalMonths: count(a, question.IntervalMonths),
			IntervalHours:  count(a, question.IntervalHours),
			IsAsNeeded:     frequency == model.FrequencyAsNeeded,
		},
		StartDate: now,
		EndDate:   date(a, question.EndDate),

		Benefits:         text(a, question.Benefits),
		SideEffects:      text(a, question.SideEffects),
		DrugInteractions: text(a, question.DrugInteractions),
		FoodInteractions: text(a, question.FoodInteractions),

		Storage: model.Storage{
			Instructions:         text(a, question.StorageInstructions),
			Location:             text(a, question.StorageLocation),
			ExpirationDate:       date(a, question.ExpirationDate),
			DisposalInstructions: text(a, question.DisposalInstructions),
		},

		Communication: model.Communication{
			QuestionsAboutMedication: text(a, question.QuestionsAboutMedication),
			PrimaryContact: model.Contact{
				Name:  text(a, question.ContactName),
				Phone: text(a, question.ContactInfo),
				Role:  DefaultContactRole,
			},
			OverdoseInstructions: OverdoseInstructions,
			SchoolPlan:           text(a, question.SchoolPlan),
			AdditionalConcerns:   text(a, question.AdditionalInstructions),
		},

		IsActive:  true,
		IsExpired: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if start := date(a, question.StartDate); start != nil {
		med.StartDate = *start
	}
	return med
}

func patientName(a question.Answers) string {
	if a.Is(question.PatientRelationship, "myself") {
		return model.SelfPatientName
	}
	return textOr(a, question.PatientName, DefaultPatientName)
}

// doseTimes prefers a hand-edited list, then derivation, then the first
// dose alone, then the fixed default.
func doseTimes(a question.Answers) []model.DoseTime {
	in := schedule.FromAnswers(a)
	if times := schedule.Derive(in); len(times) > 0 {
		return times
	}
	if in.FirstDose != nil {
		return []model.DoseTime{*in.FirstDose}
	}
	return []model.DoseTime{DefaultDoseTime}
}

func days(a question.Answers) []string {
	items := a[question.SpecificDays].Items()
	if items == nil {
		return []string{}
	}
	return items
}

func text(a question.Answers, id string) string {
	return strings.TrimSpace(a.Text(id))
}

func textOr(a question.Answers, id, fallback string) string {
	if v := text(a, id); v != "" {
		return v
	}
	return fallback
}

func count(a question.Answers, id string) *int {
	n := schedule.ParseCount(a[id])
	if n == 0 {
		return nil
	}
	return &n
}

func date(a question.Answers, id string) *time.Time {
	t, ok := a[id].Time()
	if !ok {
		return nil
	}
	t = t.UTC().Round(0)
	return &t
}
