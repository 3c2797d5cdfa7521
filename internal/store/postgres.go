package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/db"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
)

// PostgresStore keeps records in the medications table managed by the
// goose migrations.
type PostgresStore struct {
	q     *db.Queries
	close func()
	now   func() time.Time
}

// NewPostgresStore wraps an open pool. Close closes the pool.
func NewPostgresStore(pool *db.Pool, opts ...Option) *PostgresStore {
	cfg := applyOptions(opts)
	return &PostgresStore{q: pool.Queries, close: pool.Close, now: cfg.Now}
}

func (s *PostgresStore) List(ctx context.Context) ([]model.Medication, error) {
	rows, err := s.q.ListMedications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	meds := make([]model.Medication, 0, len(rows))
	for _, row := range rows {
		med, err := decode(row.Doc)
		if err != nil {
			return nil, err
		}
		meds = append(meds, med)
	}
	return meds, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (model.Medication, error) {
	row, err := s.q.GetMedication(ctx, id)
	if db.IsNoRows(err) {
		return model.Medication{}, ErrNotFound
	}
	if err != nil {
		return model.Medication{}, fmt.Errorf("failed to get medication %s: %w", id, err)
	}
	return decode(row.Doc)
}

func (s *PostgresStore) Put(ctx context.Context, med *model.Medication) error {
	if err := stamp(med, s.now); err != nil {
		return err
	}
	doc, err := encode(*med)
	if err != nil {
		return err
	}
	err = s.q.UpsertMedication(ctx, db.MedicationRow{
		ID:          med.ID,
		PatientName: med.PatientName,
		IsActive:    med.IsActive,
		IsExpired:   med.IsExpired,
		Doc:         doc,
		CreatedAt:   med.CreatedAt,
		UpdatedAt:   med.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to save medication %s: %w", med.ID, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if err := s.q.DeleteMedication(ctx, id); err != nil {
		return fmt.Errorf("failed to delete medication %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) DeleteMany(ctx context.Context, ids []string) (int, error) {
	n, err := s.q.DeleteMedications(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete medications: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if err := s.q.ClearMedications(ctx); err != nil {
		return fmt.Errorf("failed to clear medications: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}
