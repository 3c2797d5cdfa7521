// Package store persists medication records.
//
// Every backend keeps the record's JSON document as the source of truth
// and copies a few fields into columns for ordering and filtering.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
)

var (
	ErrNotFound  = errors.New("medication not found")
	ErrMissingID = errors.New("medication id is required")
)

// Store is implemented by every medication backend
type Store interface {
	// List returns all records ordered by creation time
	List(ctx context.Context) ([]model.Medication, error)
	// Get returns ErrNotFound when id is unknown
	Get(ctx context.Context, id string) (model.Medication, error)
	// Put inserts or replaces the record and stamps UpdatedAt
	Put(ctx context.Context, med *model.Medication) error
	// Delete is a no-op for unknown ids
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int, error)
	Clear(ctx context.Context) error
	Close() error
}

// Opts holds configuration shared by the backends
type Opts struct {
	DSN string
	Now func() time.Time
}

// Option configures a store
type Option func(*Opts)

// WithDSN sets the connection string or database file path
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithClock sets the clock used to stamp UpdatedAt
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

func applyOptions(opts []Option) Opts {
	cfg := Opts{Now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return cfg
}

// stamp prepares med for writing
func stamp(med *model.Medication, now func() time.Time) error {
	if med.ID == "" {
		return ErrMissingID
	}
	t := now().UTC().Round(0)
	if med.CreatedAt.IsZero() {
		med.CreatedAt = t
	}
	med.UpdatedAt = t
	return nil
}

func encode(med model.Medication) ([]byte, error) {
	doc, err := json.Marshal(med)
	if err != nil {
		return nil, fmt.Errorf("failed to encode medication %s: %w", med.ID, err)
	}
	return doc, nil
}

func decode(doc []byte) (model.Medication, error) {
	var med model.Medication
	if err := json.Unmarshal(doc, &med); err != nil {
		return model.Medication{}, fmt.Errorf("failed to decode medication: %w", err)
	}
	return med, nil
}

func sortByCreated(meds []model.Medication) {
	sort.SliceStable(meds, func(i, j int) bool {
		if meds[i].CreatedAt.Equal(meds[j].CreatedAt) {
			return meds[i].ID < meds[j].ID
		}
		return meds[i].CreatedAt.Before(meds[j].CreatedAt)
	})
}
