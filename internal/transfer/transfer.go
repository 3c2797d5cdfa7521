// Package transfer reads and writes the medication export file.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/schema"
)

// Version is written into every export
const Version = "1.0"

var (
	ErrInvalidJSON       = errors.New("invalid file format: not valid JSON")
	ErrInvalidEnvelope   = errors.New("invalid file format")
	ErrNoMedicationArray = errors.New("invalid file format: medications array not found")
	ErrEmptyExport       = errors.New("the selected file contains no medications")
	ErrMissingFields     = errors.New("invalid file format: medications missing required fields")
)

// Envelope is the export file layout
type Envelope struct {
	Version         string             `json:"version"`
	ExportDate      time.Time          `json:"exportDate"`
	MedicationCount int                `json:"medicationCount"`
	Medications     []model.Medication `json:"medications"`
}

// Export encodes meds as an indented envelope stamped with now
func Export(meds []model.Medication, now time.Time) ([]byte, error) {
	if meds == nil {
		meds = []model.Medication{}
	}
	env := Envelope{
		Version:         Version,
		ExportDate:      now.UTC().Round(0),
		MedicationCount: len(meds),
		Medications:     meds,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return data, nil
}

// FileName returns the download name for an export made at now
func FileName(now time.Time) string {
	return fmt.Sprintf("fmsp_export_%s.json", now.Format("2006-01-02"))
}

// Parser validates export files
type Parser struct {
	schemas *schema.Compiler
	now     func() time.Time
}

// NewParser returns a parser. A nil compiler skips the schema check.
func NewParser(schemas *schema.Compiler, now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{schemas: schemas, now: now}
}

// dateFields may be blank in hand-edited files; blank means unset
var dateFields = []string{"startDate", "endDate", "createdAt", "updatedAt"}

// Parse checks data and returns its medications. Missing start and
// creation dates are set to now.
func (p *Parser) Parse(ctx context.Context, data []byte) ([]model.Medication, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}

	if p.schemas != nil {
		if err := p.schemas.ValidateJSON(ctx, schema.ExportEnvelope, data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
		}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrNoMedicationArray
	}
	list, ok := raw["medications"]
	if !ok {
		return nil, ErrNoMedicationArray
	}
	var records []map[string]interface{}
	if err := json.Unmarshal(list, &records); err != nil || records == nil {
		return nil, ErrNoMedicationArray
	}
	if len(records) == 0 {
		return nil, ErrEmptyExport
	}

	now := p.now().UTC().Round(0)
	meds := make([]model.Medication, 0, len(records))
	for i, record := range records {
		if !hasRequiredFields(record) {
			return nil, fmt.Errorf("%w: medication %d", ErrMissingFields, i)
		}
		med, err := decodeRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: medication %d: %v", ErrInvalidEnvelope, i, err)
		}
		fillDefaults(&med, now)
		meds = append(meds, med)
	}
	return meds, nil
}

func hasRequiredFields(record map[string]interface{}) bool {
	named := present(record, "brandName") || present(record, "genericName")
	return named && present(record, "dosageAmount") && present(record, "dosageUnit")
}

func present(record map[string]interface{}, key string) bool {
	s, ok := record[key].(string)
	return ok && strings.TrimSpace(s) != ""
}

func decodeRecord(record map[string]interface{}) (model.Medication, error) {
	for _, key := range dateFields {
		dropBlank(record, key)
	}
	if storage, ok := record["storage"].(map[string]interface{}); ok {
		dropBlank(storage, "expirationDate")
	}

	buf, err := json.Marshal(record)
	if err != nil {
		return model.Medication{}, err
	}
	var med model.Medication
	if err := json.Unmarshal(buf, &med); err != nil {
		return model.Medication{}, err
	}
	return med, nil
}

func dropBlank(record map[string]interface{}, key string) {
	switch v := record[key].(type) {
	case nil:
		delete(record, key)
	case string:
		if strings.TrimSpace(v) == "" {
			delete(record, key)
		}
	}
}

func fillDefaults(med *model.Medication, now time.Time) {
	if med.StartDate.IsZero() {
		med.StartDate = now
	}
	if med.CreatedAt.IsZero() {
		med.CreatedAt = now
	}
	if med.UpdatedAt.IsZero() {
		med.UpdatedAt = now
	}
	if med.Schedule.Frequency == "" {
		med.Schedule.Frequency = model.FrequencyEveryDay
	}
	if med.Schedule.DoseTimes == nil {
		med.Schedule.DoseTimes = []model.DoseTime{}
	}
	if med.Schedule.DaysOfWeek == nil {
		med.Schedule.DaysOfWeek = []string{}
	}
}
