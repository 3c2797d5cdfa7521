package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// SelfPatientName is the patient name used when the medicine is for the user
const SelfPatientName = "Myself"

// UnknownPatientName groups records that carry no patient name
const UnknownPatientName = "Unknown"

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid medication")

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("frequency", validateFrequency)
	validate.RegisterValidation("daily_frequency", validateDailyFrequency)
}

func validateFrequency(fl validator.FieldLevel) bool {
	return ScheduleFrequency(fl.Field().String()).Valid()
}

// Daily frequency is optional; only non-daily schedules omit it.
func validateDailyFrequency(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || DailyFrequency(value).Valid()
}

// Validate checks the record's required fields and enums
func (m Medication) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if m.Schedule.IsAsNeeded != (m.Schedule.Frequency == FrequencyAsNeeded) {
		return fmt.Errorf("%w: isAsNeeded must match frequency %q", ErrInvalid, m.Schedule.Frequency)
	}
	return nil
}

// DisplayName returns "Brand (generic)" or whichever name is set
func (m Medication) DisplayName() string {
	switch {
	case m.BrandName != "" && m.GenericName != "" && !strings.EqualFold(m.BrandName, m.GenericName):
		return fmt.Sprintf("%s (%s)", m.BrandName, m.GenericName)
	case m.BrandName != "":
		return m.BrandName
	default:
		return m.GenericName
	}
}

// ShouldExpire reports whether the expiration date or end date has passed
func (m Medication) ShouldExpire(now time.Time) bool {
	if m.Storage.ExpirationDate != nil && m.Storage.ExpirationDate.Before(now) {
		return true
	}
	return m.EndDate != nil && m.EndDate.Before(now)
}

// Matches reports whether term appears in the brand, generic, patient or reason fields
func (m Medication) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{m.BrandName, m.GenericName, m.PatientName, m.ReasonForUse} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// PatientGroups holds medications keyed by patient, with display order
type PatientGroups struct {
	Grouped  map[string][]Medication `json:"grouped"`
	Patients []string                `json:"patients"`
}

// GroupByPatient groups medications by patient name. The user's own
// medicines come first, the rest are ordered alphabetically.
func GroupByPatient(meds []Medication) PatientGroups {
	groups := PatientGroups{Grouped: make(map[string][]Medication)}
	for _, med := range meds {
		name := med.PatientName
		if name == "" {
			name = UnknownPatientName
		}
		if _, ok := groups.Grouped[name]; !ok {
			groups.Patients = append(groups.Patients, name)
		}
		groups.Grouped[name] = append(groups.Grouped[name], med)
	}

	sort.SliceStable(groups.Patients, func(i, j int) bool {
		a, b := groups.Patients[i], groups.Patients[j]
		if a == SelfPatientName {
			return b != SelfPatientName
		}
		if b == SelfPatientName {
			return false
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})
	if groups.Patients == nil {
		groups.Patients = []string{}
	}
	return groups
}

// ComputeStats counts active and expired records and lists patients
func ComputeStats(meds []Medication) Stats {
	stats := Stats{TotalMedications: len(meds), Patients: []string{}}
	seen := make(map[string]bool)
	for _, med := range meds {
		if med.IsActive {
			stats.ActiveMedications++
		}
		if med.IsExpired {
			stats.ExpiredMedications++
		}
		if !seen[med.PatientName] {
			seen[med.PatientName] = true
			stats.Patients = append(stats.Patients, med.PatientName)
		}
	}
	sort.Strings(stats.Patients)
	return stats
}
