package model

import "time"

// PrescriptionType represents how the medicine was obtained
type PrescriptionType string

const (
	PrescriptionTypePrescription  PrescriptionType = "prescription"
	PrescriptionTypeOverTheCounter PrescriptionType = "over-the-counter"
)

// ScheduleFrequency represents how often a medicine is taken
type ScheduleFrequency string

const (
	FrequencyEveryDay      ScheduleFrequency = "every day"
	FrequencyEveryOtherDay ScheduleFrequency = "every-other-day"
	FrequencySpecificDays  ScheduleFrequency = "specific-days"
	FrequencyEveryXDays    ScheduleFrequency = "every-x-days"
	FrequencyEveryXWeeks   ScheduleFrequency = "every-x-weeks"
	FrequencyEveryXMonths  ScheduleFrequency = "every-x-months"
	FrequencyAsNeeded      ScheduleFrequency = "as-needed"
)

// DailyFrequency represents how many doses are taken on a dosing day
type DailyFrequency string

const (
	DailyOnce         DailyFrequency = "once"
	DailyTwice        DailyFrequency = "twice"
	DailyThreeTimes   DailyFrequency = "three-times"
	DailyFourTimes    DailyFrequency = "four-times"
	DailyMoreThanFour DailyFrequency = "more-than-four"
	DailyEveryXHours  DailyFrequency = "every-x-hours"
)

var scheduleFrequencies = map[ScheduleFrequency]bool{
	FrequencyEveryDay:      true,
	FrequencyEveryOtherDay: true,
	FrequencySpecificDays:  true,
	FrequencyEveryXDays:    true,
	FrequencyEveryXWeeks:   true,
	FrequencyEveryXMonths:  true,
	FrequencyAsNeeded:      true,
}

var dailyFrequencies = map[DailyFrequency]bool{
	DailyOnce:         true,
	DailyTwice:        true,
	DailyThreeTimes:   true,
	DailyFourTimes:    true,
	DailyMoreThanFour: true,
	DailyEveryXHours:  true,
}

// Valid reports whether f is a known schedule frequency
func (f ScheduleFrequency) Valid() bool {
	return scheduleFrequencies[f]
}

// Valid reports whether d is a known daily frequency
func (d DailyFrequency) Valid() bool {
	return dailyFrequencies[d]
}

// DoseTime is a clock time at which one dose is taken
type DoseTime struct {
	Hour   int    `json:"hour" validate:"min=0,max=23"`
	Minute int    `json:"minute" validate:"min=0,max=59"`
	Label  string `json:"label,omitempty"`
}

// Schedule describes when a medicine is taken
type Schedule struct {
	Frequency        ScheduleFrequency `json:"frequency" validate:"frequency"`
	DailyFrequency   DailyFrequency    `json:"dailyFrequency,omitempty" validate:"daily_frequency"`
	DoseTimes        []DoseTime        `json:"doseTimes" validate:"dive"`
	DaysOfWeek       []string          `json:"daysOfWeek"`
	IntervalDays     *int              `json:"intervalDays,omitempty" validate:"omitempty,min=1"`
	IntervalWeeks    *int              `json:"intervalWeeks,omitempty" validate:"omitempty,min=1"`
	IntervalMonths   *int              `json:"intervalMonths,omitempty" validate:"omitempty,min=1"`
	IntervalHours    *int              `json:"intervalHours,omitempty" validate:"omitempty,min=1"`
	MaxDailyDoses    *int              `json:"maxDailyDoses,omitempty" validate:"omitempty,min=1"`
	MinIntervalHours *int              `json:"minIntervalHours,omitempty" validate:"omitempty,min=0"`
	IsAsNeeded       bool              `json:"isAsNeeded"`
}

// Contact is someone to call about a medicine
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// Storage describes how a medicine is kept and disposed of
type Storage struct {
	Instructions         string     `json:"instructions"`
	Location             string     `json:"location"`
	ExpirationDate       *time.Time `json:"expirationDate,omitempty"`
	DisposalInstructions string     `json:"disposalInstructions"`
}

// Communication holds contacts and safety notes
type Communication struct {
	QuestionsAboutMedication string   `json:"questionsAboutMedication"`
	PrimaryContact           Contact  `json:"primaryContact"`
	SecondaryContact         *Contact `json:"secondaryContact,omitempty"`
	OverdoseInstructions     string   `json:"overdoseInstructions"`
	SchoolPlan               string   `json:"schoolPlan"`
	AdditionalConcerns       string   `json:"additionalConcerns"`
}

// Medication is one tracked medicine in the household plan
type Medication struct {
	ID string `json:"id"`

	PatientName      string           `json:"patientName" validate:"required"`
	BrandName        string           `json:"brandName" validate:"required_without=GenericName"`
	GenericName      string           `json:"genericName" validate:"required_without=BrandName"`
	ReasonForUse     string           `json:"reasonForUse"`
	PrescriptionType PrescriptionType `json:"prescriptionType" validate:"omitempty,oneof=prescription over-the-counter"`

	DosageAmount         string `json:"dosageAmount" validate:"required"`
	DosageUnit           string `json:"dosageUnit" validate:"required"`
	DosageStrength       string `json:"dosageStrength"`
	AdministrationMethod string `json:"administrationMethod"`

	Schedule  Schedule   `json:"schedule"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`

	FoodRequirement string `json:"foodRequirement"`

	Benefits         string `json:"benefits"`
	SideEffects      string `json:"sideEffects"`
	DrugInteractions string `json:"drugInteractions"`
	FoodInteractions string `json:"foodInteractions"`

	Storage       Storage       `json:"storage"`
	Communication Communication `json:"communication"`

	IsActive  bool      `json:"isActive"`
	IsExpired bool      `json:"isExpired"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats summarizes the stored collection
type Stats struct {
	TotalMedications   int      `json:"totalMedications"`
	ActiveMedications  int      `json:"activeMedications"`
	ExpiredMedications int      `json:"expiredMedications"`
	Patients           []string `json:"patients"`
}
