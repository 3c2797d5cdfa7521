package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoRows is returned when a lookup matches nothing
var ErrNoRows = pgx.ErrNoRows

// Queries wraps database queries
type Queries struct {
	*pgxpool.Pool
}

// NewQueries creates a new Queries instance
func NewQueries(pool *pgxpool.Pool) *Queries {
	return &Queries{Pool: pool}
}

// MedicationRow is one row of the medications table. Doc holds the full
// record as JSON; the other columns are copies used for filtering.
type MedicationRow struct {
	ID          string
	PatientName string
	IsActive    bool
	IsExpired   bool
	Doc         []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const medicationColumns = "id, patient_name, is_active, is_expired, doc, created_at, updated_at"

func scanMedication(row pgx.Row) (MedicationRow, error) {
	var m MedicationRow
	err := row.Scan(&m.ID, &m.PatientName, &m.IsActive, &m.IsExpired, &m.Doc, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (q *Queries) ListMedications(ctx context.Context) ([]MedicationRow, error) {
	rows, err := q.Pool.Query(ctx,
		"SELECT "+medicationColumns+" FROM medications ORDER BY created_at, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MedicationRow
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (q *Queries) GetMedication(ctx context.Context, id string) (MedicationRow, error) {
	return scanMedication(q.Pool.QueryRow(ctx,
		"SELECT "+medicationColumns+" FROM medications WHERE id = $1",
		id,
	))
}

// UpsertMedication inserts or replaces the row with m.ID. created_at is
// kept from the first insert.
func (q *Queries) UpsertMedication(ctx context.Context, m MedicationRow) error {
	_, err := q.Pool.Exec(ctx,
		`INSERT INTO medications (id, patient_name, is_active, is_expired, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			patient_name = EXCLUDED.patient_name,
			is_active = EXCLUDED.is_active,
			is_expired = EXCLUDED.is_expired,
			doc = EXCLUDED.doc,
			updated_at = EXCLUDED.updated_at`,
		m.ID, m.PatientName, m.IsActive, m.IsExpired, m.Doc, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

func (q *Queries) DeleteMedication(ctx context.Context, id string) error {
	_, err := q.Pool.Exec(ctx, "DELETE FROM medications WHERE id = $1", id)
	return err
}

// DeleteMedications removes every listed id and returns how many rows went
func (q *Queries) DeleteMedications(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := q.Pool.Exec(ctx, "DELETE FROM medications WHERE id = ANY($1)", ids)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (q *Queries) ClearMedications(ctx context.Context) error {
	_, err := q.Pool.Exec(ctx, "DELETE FROM medications")
	return err
}

// IsNoRows reports whether err is a no-rows lookup miss
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
