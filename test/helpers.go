package test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/db"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
	"github.com/mitchsteamy/crome-lab-fmsp/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// setupTestDB migrates and connects to TEST_DATABASE_URL, skipping the
// test when it is unset or unreachable
func setupTestDB(t *testing.T) *db.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	if err := runMigrations(databaseURL); err != nil {
		t.Skipf("Postgres not available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := db.NewPool(ctx, databaseURL, zap.NewNop())
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	return pool
}

func runMigrations(databaseURL string) error {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to test database: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(sqlDB, ".")
}

// setupRedis connects to TEST_REDIS_ADDR, skipping the test when it is
// unset or unreachable
func setupRedis(t *testing.T) (*redis.Client, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb, addr
}

func testMedication(id, brand string) *model.Medication {
	return &model.Medication{
		ID:           id,
		PatientName:  "Myself",
		BrandName:    brand,
		DosageAmount: "1",
		DosageUnit:   "tablet",
		Schedule: model.Schedule{
			Frequency:  model.FrequencyEveryDay,
			DoseTimes:  []model.DoseTime{{Hour: 9}},
			DaysOfWeek: []string{},
		},
		IsActive: true,
	}
}
