package question

// Step ids of the household catalog, used as answer keys.
const (
	PatientRelationship = "patient_relationship"
	PatientName         = "patient_name"
	PrescriptionType    = "prescription_type"
	BrandName           = "brand_name"
	GenericName         = "generic_name"
	ReasonForUse        = "reason_for_use"

	DosageUnit           = "dosage_unit"
	DosageAmount         = "dosage_amount"
	DosageStrength       = "dosage_strength"
	AdministrationMethod = "administration_method"
	FoodRequirement      = "food_requirement"

	ScheduleFrequency = "schedule_frequency"
	IntervalDays      = "interval_days"
	IntervalWeeks     = "interval_weeks"
	IntervalMonths    = "interval_months"
	DailyFrequency    = "daily_frequency"
	IntervalHours     = "interval_hours"
	SpecificDays      = "specific_days"
	FirstDoseTime     = "first_dose_time"
	DoseTimes         = "dose_times"
	StartDate         = "start_date"
	EndDate           = "end_date"

	Benefits         = "benefits"
	SideEffects      = "side_effects"
	DrugInteractions = "drug_interactions"
	FoodInteractions = "food_interactions"

	StorageInstructions  = "storage_instructions"
	StorageLocation      = "storage_location"
	ExpirationDate       = "expiration_date"
	DisposalInstructions = "disposal_instructions"

	SchoolPlan               = "school_plan"
	QuestionsAboutMedication = "questions_about_medication"
	ContactName              = "poc_name"
	ContactInfo              = "poc_info"
	AdditionalInstructions   = "additional_instructions"
)

var medicineNames = []string{BrandName, GenericName}

// Frequencies for which the first dose and daily times are asked.
var dailyTimeFrequencies = map[string]bool{
	"every day":       true,
	"every-other-day": true,
	"specific-days":   true,
}

func answerIs(id, want string) Predicate {
	return func(a Answers) bool { return a.Is(id, want) }
}

func asksFirstDose(a Answers) bool {
	return dailyTimeFrequencies[a.Text(ScheduleFrequency)] && !a.Is(DailyFrequency, "as-needed")
}

func asksDoseTimes(a Answers) bool {
	daily := a.Text(DailyFrequency)
	return dailyTimeFrequencies[a.Text(ScheduleFrequency)] &&
		daily != "" && daily != "as-needed" && daily != "once" &&
		a.Filled(FirstDoseTime)
}

var householdIntro = InstructionPage{
	Title:       "Family Medication Safety Plan",
	Description: "Welcome to your personalized medication safety plan",
	Instructions: []string{
		"Let's add your medicine! We'll ask you some questions to build your safety plan.",
		"Answer as best you can. It's okay to check your medicine bottle, ask your pharmacist for help, or look it up.",
		"When you're done, we'll save your medicine to your plan.",
		"You can print or share your plan anytime.",
	},
}

var basicInfo = Section{
	ID:          "basic_info",
	Title:       "Basic Info",
	Description: "Let's start with some basics about your medicine",
	Steps: []Step{
		{
			ID:       PatientRelationship,
			Title:    "Who Is This For?",
			Type:     TypeSelect,
			Question: "Who is this medicine for?",
			Required: true,
			Options:  []string{"myself", "other"},
			HelpText: "Let us know if this is for you or someone else",
		},
		{
			ID:          PatientName,
			Title:       "Patient Name",
			Type:        TypeText,
			Question:    "What's their first name or nickname?",
			Required:    true,
			Placeholder: "Like Sam, Mom, or Buddy",
			HelpText:    "Use a first name or nickname for privacy. Don't use full names.",
			ShowIf:      answerIs(PatientRelationship, "other"),
		},
		{
			ID:       PrescriptionType,
			Title:    "Prescription Type",
			Type:     TypeSelect,
			Question: "Is this medicine a prescription or over-the-counter?",
			Required: true,
			Options:  []string{"prescription", "over-the-counter"},
			HelpText: "This helps us know how to store and dispose of it safely",
		},
		{
			ID:               BrandName,
			Title:            "Brand Name",
			Type:             TypeText,
			Question:         "What's the brand name?",
			Placeholder:      "Like Tylenol, Advil, or Lipitor",
			HelpText:         "The name you see on the front of the package. You need either a brand name or generic name.",
			SatisfiedByAnyOf: medicineNames,
		},
		{
			ID:               GenericName,
			Title:            "Generic Name",
			Type:             TypeText,
			Question:         "What's the generic name?",
			Placeholder:      "Like acetaminophen, ibuprofen, or atorvastatin",
			HelpText:         "Usually in smaller print. You need either a brand name or generic name.",
			SatisfiedByAnyOf: medicineNames,
		},
		{
			ID:          ReasonForUse,
			Title:       "Reason for Use",
			Type:        TypeTextarea,
			Question:    "Why do you take this medicine?",
			Required:    true,
			Placeholder: "Like for headaches, blood pressure, or diabetes",
			HelpText:    "Tell us what it helps with",
		},
	},
}

var dosageAdmin = Section{
	ID:          "dosage_admin",
	Title:       "How You Take It",
	Description: "Tell us how you take this medicine",
	Steps: []Step{
		{
			ID:       DosageUnit,
			Title:    "Dosage Unit",
			Type:     TypeSelect,
			Question: "How is it measured?",
			Required: true,
			Options:  []string{"tablet", "capsule", "teaspoon", "tablespoon", "drops", "puff", "patch", "injection"},
			HelpText: "Pick what matches your medicine",
		},
		{
			ID:          DosageAmount,
			Title:       "How Much",
			Type:        TypeText,
			Question:    "How much do you take each time?",
			Required:    true,
			Placeholder: "Like 1, 2, 1/2, or 5",
			HelpText:    "Use the amount on your medicine bottle",
		},
		{
			ID:          DosageStrength,
			Title:       "Strength",
			Type:        TypeText,
			Question:    "What's the strength of each dose?",
			Placeholder: "Like 5mg, 250mg, 10mg/mL, or 500mg",
			HelpText:    "This is usually on your bottle. Like '5mg per tablet' or '250mg per teaspoon.' Leave blank if you're not sure.",
		},
		{
			ID:       AdministrationMethod,
			Title:    "How You Take It",
			Type:     TypeSelect,
			Question: "How do you take it?",
			Required: true,
			Options: []string{
				"by mouth",
				"under tongue",
				"between cheek and gums",
				"inhaled into lungs",
				"rubbed on skin",
				"injection",
				"eye",
				"ear",
				"nasal",
				"vaginal",
				"rectal",
			},
			HelpText: "Pick how you use this medicine",
		},
		{
			ID:       FoodRequirement,
			Title:    "Food Requirements",
			Type:     TypeSelect,
			Question: "Do you take it with food?",
			Required: true,
			Options:  []string{"before food", "with food", "after food", "no food requirement"},
			HelpText: "Check your bottle or ask your pharmacist if you're not sure",
		},
	},
}

var scheduleSection = Section{
	ID:          "schedule",
	Title:       "When You Take It",
	Description: "When and how often do you take this medicine?",
	Steps: []Step{
		{
			ID:       ScheduleFrequency,
			Title:    "How Often",
			Type:     TypeSelect,
			Question: "How often do you take this medicine?",
			Required: true,
			Options: []string{
				"every day",
				"every-other-day",
				"specific-days",
				"every-x-days",
				"every-x-weeks",
				"every-x-months",
				"as-needed",
			},
			HelpText: "Pick what matches your prescription",
		},
		{
			ID:          IntervalDays,
			Title:       "Days Between Doses",
			Type:        TypeNumber,
			Question:    "How many days between doses?",
			Required:    true,
			Placeholder: "Enter number of days",
			HelpText:    "Like every 3 days, every 7 days, etc.",
			ShowIf:      answerIs(ScheduleFrequency, "every-x-days"),
		},
		{
			ID:          IntervalWeeks,
			Title:       "Weeks Between Doses",
			Type:        TypeNumber,
			Question:    "How many weeks between doses?",
			Required:    true,
			Placeholder: "Enter number of weeks",
			HelpText:    "Like every 2 weeks, every 4 weeks, etc.",
			ShowIf:      answerIs(ScheduleFrequency, "every-x-weeks"),
		},
		{
			ID:          IntervalMonths,
			Title:       "Months Between Doses",
			Type:        TypeNumber,
			Question:    "How many months between doses?",
			Required:    true,
			Placeholder: "Enter number of months",
			HelpText:    "Like every 1 month, every 3 months, etc.",
			ShowIf:      answerIs(ScheduleFrequency, "every-x-months"),
		},
		{
			ID:       DailyFrequency,
			Title:    "Times Per Day",
			Type:     TypeSelect,
			Question: "How many times a day do you take this medicine?",
			Required: true,
			Options:  []string{"once", "twice", "three-times", "four-times", "more-than-four", "every-x-hours"},
			HelpText: "This helps set up your daily schedule",
			ShowIf:   answerIs(ScheduleFrequency, "every day"),
		},
		{
			ID:          IntervalHours,
			Title:       "Hours Between",
			Type:        TypeNumber,
			Question:    "How many hours between each dose?",
			Required:    true,
			Placeholder: "Enter number of hours",
			HelpText:    "Like every 4 hours, every 6 hours, etc.",
			ShowIf:      answerIs(DailyFrequency, "every-x-hours"),
		},
		{
			ID:       SpecificDays,
			Title:    "Which Days",
			Type:     TypeMultiselect,
			Question: "What days do you take this medicine?",
			Required: true,
			Options:  []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
			HelpText: "Check all days that apply",
			ShowIf:   answerIs(ScheduleFrequency, "specific-days"),
		},
		{
			ID:       FirstDoseTime,
			Title:    "First Dose Time",
			Type:     TypeTime,
			Question: "What time is your first dose?",
			Required: true,
			HelpText: "Pick the time for your first daily dose",
			ShowIf:   asksFirstDose,
		},
		{
			ID:       DoseTimes,
			Title:    "Your Daily Times",
			Type:     TypeTimeList,
			Question: "Check your daily times:",
			HelpText: "Tap any time to change it. We calculated these based on when you take your first dose.",
			ShowIf:   asksDoseTimes,
		},
		{
			ID:       StartDate,
			Title:    "Start Date",
			Type:     TypeDate,
			Question: "When did you start taking this medicine?",
			Required: true,
			HelpText: "Pick the date you started or will start",
		},
		{
			ID:       EndDate,
			Title:    "End Date",
			Type:     TypeDate,
			Question: "When will you stop taking this medicine?",
			HelpText: "Leave blank if you're not sure or if it's ongoing",
		},
	},
}

var safetyInfo = Section{
	ID:          "safety_info",
	Title:       "Safety Information",
	Description: "Important safety information",
	Steps: []Step{
		{
			ID:          Benefits,
			Title:       "Benefits",
			Type:        TypeTextarea,
			Question:    "What does this medicine do for you?",
			Placeholder: "Like reduces pain, helps you sleep, or controls blood pressure",
			HelpText:    "Tell us how it helps",
		},
		{
			ID:          SideEffects,
			Title:       "Side Effects",
			Type:        TypeTextarea,
			Question:    "What are the side effects of this medicine?",
			Placeholder: "Like feeling sleepy, upset stomach, or dizziness",
			HelpText:    "List any side effects you've had or been told about",
		},
		{
			ID:          DrugInteractions,
			Title:       "Drug Interactions",
			Type:        TypeTextarea,
			Question:    "Does it interact with other medicines?",
			Placeholder: "Like don't take with blood thinners or other pain medicine",
			HelpText:    "List medicines you shouldn't take with this one",
		},
		{
			ID:          FoodInteractions,
			Title:       "Food Interactions",
			Type:        TypeTextarea,
			Question:    "Does it interact with any foods?",
			Placeholder: "Like avoid alcohol or don't take with milk",
			HelpText:    "List foods or drinks to avoid with this medicine",
		},
	},
}

var storageDisposal = Section{
	ID:          "storage_disposal",
	Title:       "Storage & Disposal",
	Description: "How do you store and dispose of this medicine safely?",
	Steps: []Step{
		{
			ID:          StorageInstructions,
			Title:       "Storage Instructions",
			Type:        TypeTextarea,
			Question:    "How should you store this medicine?",
			Placeholder: "Like keep it cool and dry, in the fridge, or away from light",
			HelpText:    "Check your medicine bottle for how to store it",
		},
		{
			ID:          StorageLocation,
			Title:       "Where You Keep It",
			Type:        TypeTextarea,
			Question:    "Where will you keep this medicine?",
			Placeholder: "e.g., medicine cabinet in bathroom, kitchen counter, refrigerator",
			HelpText:    "Where do you plan to keep this medicine safe?",
		},
		{
			ID:       ExpirationDate,
			Title:    "Expiration Date",
			Type:     TypeDate,
			Question: "When does it expire?",
			HelpText: "Check the date on your package. Leave blank if you're not sure.",
		},
		{
			ID:          DisposalInstructions,
			Title:       "Disposal Instructions",
			Type:        TypeTextarea,
			Question:    "How should you get rid of this medicine?",
			Placeholder: "Like return to pharmacy, use a take-back program, or flush it",
			HelpText:    "How to safely get rid of unused medicine",
		},
	},
}

var communicationSafety = Section{
	ID:          "communication_safety",
	Title:       "Communication & Safety",
	Description: "Who to contact if you have questions",
	Steps: []Step{
		{
			ID:          SchoolPlan,
			Title:       "School Plan",
			Type:        TypeTextarea,
			Question:    "How will you use this medicine at school?",
			Placeholder: "Like kept in nurse's office or you'll take it yourself",
			HelpText:    "Tell us your plan for this medicine at school. Leave blank if it doesn't apply.",
		},
		{
			ID:          QuestionsAboutMedication,
			Title:       "Your Questions",
			Type:        TypeTextarea,
			Question:    "Do you have any questions about this medicine?",
			Placeholder: "Like worried about side effects, not sure about timing, or need help with dosage",
			HelpText:    "Write down questions to ask your doctor or pharmacist",
		},
		{
			ID:          ContactName,
			Title:       "Who Can You Contact",
			Type:        TypeText,
			Question:    "Who should you call with questions?",
			Required:    true,
			Placeholder: "Like Dr. Smith or Dr. Jones",
			HelpText:    "The doctor or pharmacist you'd call about this medicine",
		},
		{
			ID:          ContactInfo,
			Title:       "Contact Info",
			Type:        TypeText,
			Question:    "What's their phone number or email?",
			Required:    true,
			Placeholder: "Like 859-867-5309 or john.doe@email.com",
			HelpText:    "How to reach them",
		},
		{
			ID:          AdditionalInstructions,
			Title:       "Other Instructions",
			Type:        TypeTextarea,
			Question:    "Any other instructions for this medicine?",
			Placeholder: "Like take with a full glass of water, don't crush it, or shake well first",
			HelpText:    "Anything else important about taking this medicine",
		},
	},
}

var household = MustCatalog(
	householdIntro,
	basicInfo,
	dosageAdmin,
	scheduleSection,
	safetyInfo,
	storageDisposal,
	communicationSafety,
)

// Household returns the built-in add-medication catalog
func Household() *Catalog {
	return household
}
