package service

import (
	"errors"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/schedule"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/schema"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/storage"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/store"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/transfer"
)

// Error codes shared by the HTTP and WebSocket surfaces
const (
	CodeNotFound      = "not_found"
	CodeInvalidInput  = "invalid_input"
	CodeCannotProceed = "cannot_proceed"
	CodeNotCompleted  = "not_completed"
	CodeInvalidImport = "invalid_import"
	CodeNotConfigured = "not_configured"
	CodeStoreFailed   = "store_failed"
)

// ErrorCode classifies err into one of the wire error codes
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, storage.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrCannotProceed):
		return CodeCannotProceed
	case errors.Is(err, ErrNotCompleted):
		return CodeNotCompleted
	case errors.Is(err, ErrUnknownStep),
		errors.Is(err, ErrInvalidPosition),
		errors.Is(err, schedule.ErrUnknownSlot),
		errors.Is(err, schedule.ErrInvalidTime),
		errors.Is(err, model.ErrInvalid),
		errors.Is(err, store.ErrMissingID),
		errors.Is(err, storage.ErrInvalidName):
		return CodeInvalidInput
	case errors.Is(err, transfer.ErrInvalidJSON),
		errors.Is(err, transfer.ErrInvalidEnvelope),
		errors.Is(err, transfer.ErrNoMedicationArray),
		errors.Is(err, transfer.ErrEmptyExport),
		errors.Is(err, transfer.ErrMissingFields),
		errors.Is(err, schema.ErrInvalid):
		return CodeInvalidImport
	case errors.Is(err, ErrNoArchive), errors.Is(err, ErrNoJobClient):
		return CodeNotConfigured
	default:
		return CodeStoreFailed
	}
}
