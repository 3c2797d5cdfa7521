package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
)

// DefaultDirPermissions applies to a database directory created on open
const DefaultDirPermissions = 0755

//go:embed schema_sqlite.sql
var sqliteSchema string

// SQLiteStore keeps one household's records in a local database file
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens the database at the DSN path, creating the
// directory and tables when missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	cfg := applyOptions(opts)
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	if !strings.HasPrefix(cfg.DSN, "file:") && cfg.DSN != ":memory:" {
		dir := filepath.Dir(cfg.DSN)
		if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db, now: cfg.Now}, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]model.Medication, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM medications ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query medications: %w", err)
	}
	defer rows.Close()

	meds := []model.Medication{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan medication row: %w", err)
		}
		med, err := decode([]byte(doc))
		if err != nil {
			return nil, err
		}
		meds = append(meds, med)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medication rows: %w", err)
	}
	return meds, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (model.Medication, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM medications WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Medication{}, ErrNotFound
	}
	if err != nil {
		return model.Medication{}, fmt.Errorf("failed to get medication %s: %w", id, err)
	}
	return decode([]byte(doc))
}

func (s *SQLiteStore) Put(ctx context.Context, med *model.Medication) error {
	if err := stamp(med, s.now); err != nil {
		return err
	}
	doc, err := encode(*med)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO medications (id, patient_name, is_active, is_expired, doc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			patient_name = excluded.patient_name,
			is_active = excluded.is_active,
			is_expired = excluded.is_expired,
			doc = excluded.doc,
			updated_at = excluded.updated_at`,
		med.ID, med.PatientName, med.IsActive, med.IsExpired, string(doc),
		med.CreatedAt.UnixNano(), med.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save medication %s: %w", med.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM medications WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete medication %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteMany(ctx context.Context, ids []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	n := 0
	for _, id := range ids {
		res, err := tx.ExecContext(ctx, `DELETE FROM medications WHERE id = ?`, id)
		if err != nil {
			return 0, fmt.Errorf("failed to delete medication %s: %w", id, err)
		}
		affected, _ := res.RowsAffected()
		n += int(affected)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch delete: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM medications`); err != nil {
		return fmt.Errorf("failed to clear medications: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
