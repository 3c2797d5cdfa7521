package service

// Event types published on the bus
const (
	EventMedicationSaved    = "medication.saved"
	EventMedicationDeleted  = "medication.deleted"
	EventMedicationExpired  = "medication.expired"
	EventMedicationImported = "medication.imported"
	EventMedicationsCleared = "medication.cleared"

	EventSessionUpdated   = "session.updated"
	EventSessionCompleted = "session.completed"
)

type EventBus interface {
	PublishMedication(event map[string]interface{}) error
	PublishSession(sessionID string, event map[string]interface{}) error
}

// NopBus drops every event
type NopBus struct{}

func (NopBus) PublishMedication(event map[string]interface{}) error { return nil }

func (NopBus) PublishSession(sessionID string, event map[string]interface{}) error { return nil }
