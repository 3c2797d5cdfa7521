package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/schedule"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/store"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/transfer"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{nil, ""},
		{ErrSessionNotFound, CodeNotFound},
		{fmt.Errorf("failed to get medication: %w", store.ErrNotFound), CodeNotFound},
		{ErrCannotProceed, CodeCannotProceed},
		{ErrNotCompleted, CodeNotCompleted},
		{fmt.Errorf("%w: brandName", model.ErrInvalid), CodeInvalidInput},
		{schedule.ErrUnknownSlot, CodeInvalidInput},
		{transfer.ErrEmptyExport, CodeInvalidImport},
		{ErrNoArchive, CodeNotConfigured},
		{errors.New("disk on fire"), CodeStoreFailed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, ErrorCode(tt.err), "%v", tt.err)
	}
}
