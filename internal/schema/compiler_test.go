package schema

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompiler_Prepare(t *testing.T) {
	compiler := NewCompilerWithCache(64, time.Hour)
	ctx := context.Background()

	raw := []byte(`{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`)

	first, err := compiler.Prepare(ctx, raw)
	require.NoError(t, err)
	second, err := compiler.Prepare(ctx, raw)
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = compiler.Prepare(ctx, []byte(`{"type": 12}`))
	assert.Error(t, err)
}

func TestCompiler_NamedUnknown(t *testing.T) {
	compiler := NewCompilerWithCache(8, 0)
	_, err := compiler.Named(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownSchema)
}

func TestCompiler_ValidateEnvelope(t *testing.T) {
	compiler := NewCompilerWithCache(8, time.Minute)
	ctx := context.Background()

	valid := `{
		"version": "1.0",
		"exportDate": "2026-03-01T10:00:00Z",
		"medicationCount": 1,
		"medications": [{
			"brandName": "Advil",
			"dosageAmount": "1",
			"dosageUnit": "tablet",
			"schedule": {"frequency": "every day", "doseTimes": [{"hour": 8, "minute": 0}]},
			"endDate": null
		}]
	}`
	assert.NoError(t, compiler.ValidateJSON(ctx, ExportEnvelope, []byte(valid)))

	// The shape check leaves missing fields to the importer.
	assert.NoError(t, compiler.ValidateJSON(ctx, ExportEnvelope, []byte(`{}`)))

	tests := []struct {
		name string
		doc  string
	}{
		{"not an object", `[1, 2]`},
		{"count is text", `{"medicationCount": "one"}`},
		{"dose hour out of range", `{"medications": [{"schedule": {"doseTimes": [{"hour": 24, "minute": 0}]}}]}`},
		{"amount is a number", `{"medications": [{"dosageAmount": 2}]}`},
		{"bad prescription type", `{"medications": [{"prescriptionType": "black market"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := compiler.ValidateJSON(ctx, ExportEnvelope, []byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
