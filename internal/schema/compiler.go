// Package schema compiles and caches the JSON Schemas used to check
// documents before they are decoded.
package schema

import (
	"bytes"
	"context"
	"crypto/sha256"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	js "github.com/santhosh-tekuri/jsonschema/v5"
)

// ExportEnvelope names the schema of the import/export file
const ExportEnvelope = "export-envelope"

var (
	ErrUnknownSchema = errors.New("unknown schema")
	ErrInvalid       = errors.New("document does not match schema")
)

//go:embed schemas/*.json
var builtin embed.FS

type Compiler struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *js.Schema]
}

// NewCompilerWithCache creates a compiler that keeps up to maxSize
// compiled schemas for ttl
func NewCompilerWithCache(maxSize int, ttl time.Duration) *Compiler {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Compiler{
		cache: expirable.NewLRU[string, *js.Schema](maxSize, nil, ttl),
	}
}

// Named returns the compiled form of an embedded schema
func (c *Compiler) Named(ctx context.Context, name string) (*js.Schema, error) {
	raw, err := builtin.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	return c.Prepare(ctx, raw)
}

// Prepare compiles and caches a schema document
func (c *Compiler) Prepare(ctx context.Context, raw []byte) (*js.Schema, error) {
	sum := sha256.Sum256(raw)
	key := fmt.Sprintf("%x", sum[:8])
	if compiled, ok := c.cache.Get(key); ok {
		return compiled, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	compiler := js.NewCompiler()
	compiler.Draft = js.Draft7
	resourceURL := fmt.Sprintf("mem://schema/%s.json", key)
	if err := compiler.AddResource(resourceURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}

	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	c.cache.Add(key, compiled)
	return compiled, nil
}

// ValidateJSON checks a JSON document against the named schema. The
// document must already be well-formed JSON.
func (c *Compiler) ValidateJSON(ctx context.Context, name string, data []byte) error {
	compiled, err := c.Named(ctx, name)
	if err != nil {
		return err
	}

	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, describe(err))
	}
	return nil
}

// describe flattens a validation error into its first concrete cause
func describe(err error) string {
	var ve *js.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return ve.InstanceLocation + ": " + ve.Message
}
