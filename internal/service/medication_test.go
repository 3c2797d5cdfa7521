package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/schema"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/storage"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/store"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/transfer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMedicationService(t *testing.T) (*MedicationService, *MockEventBus) {
	t.Helper()
	bus := &MockEventBus{}
	parser := transfer.NewParser(schema.NewCompilerWithCache(4, time.Minute), fixedClock)
	svc := NewMedicationService(store.NewMemoryStore(), bus, parser, zap.NewNop())
	svc.SetClock(fixedClock)
	return svc, bus
}

func medication(patient, brand string) model.Medication {
	return model.Medication{
		PatientName:  patient,
		BrandName:    brand,
		DosageAmount: "1",
		DosageUnit:   "tablet",
		Schedule: model.Schedule{
			Frequency: model.FrequencyEveryDay,
			DoseTimes: []model.DoseTime{{Hour: 9}},
		},
		StartDate: testNow,
		IsActive:  true,
	}
}

func save(t *testing.T, svc *MedicationService, med model.Medication) model.Medication {
	t.Helper()
	require.NoError(t, svc.Save(context.Background(), &med))
	return med
}

func TestMedicationService_Save(t *testing.T) {
	svc, bus := newMedicationService(t)
	ctx := context.Background()

	med := medication("Myself", "Advil")
	require.NoError(t, svc.Save(ctx, &med))
	assert.NotEmpty(t, med.ID)
	assert.NotNil(t, med.Schedule.DaysOfWeek)

	got, err := svc.Get(ctx, med.ID)
	require.NoError(t, err)
	assert.Equal(t, "Advil", got.BrandName)
	assert.Equal(t, []string{EventMedicationSaved}, bus.types())

	invalid := medication("Myself", "")
	err = svc.Save(ctx, &invalid)
	assert.ErrorIs(t, err, model.ErrInvalid)
}

func TestMedicationService_Replace(t *testing.T) {
	svc, _ := newMedicationService(t)
	ctx := context.Background()

	med := save(t, svc, medication("Sam", "Advil"))

	replacement := medication("Sam", "Motrin")
	require.NoError(t, svc.Replace(ctx, med.ID, &replacement))
	assert.Equal(t, med.ID, replacement.ID)
	assert.True(t, replacement.CreatedAt.Equal(med.CreatedAt))

	got, err := svc.Get(ctx, med.ID)
	require.NoError(t, err)
	assert.Equal(t, "Motrin", got.BrandName)

	missing := medication("Sam", "Aleve")
	assert.ErrorIs(t, svc.Replace(ctx, "nope", &missing), store.ErrNotFound)
}

func TestMedicationService_Queries(t *testing.T) {
	svc, _ := newMedicationService(t)
	ctx := context.Background()

	save(t, svc, medication("Myself", "Advil"))
	inactive := medication("Sam", "Zyrtec")
	inactive.IsActive = false
	save(t, svc, inactive)
	expired := medication("Sam", "Tylenol")
	expired.IsExpired = true
	save(t, svc, expired)

	sam, err := svc.ListByPatient(ctx, "Sam")
	require.NoError(t, err)
	assert.Len(t, sam, 2)

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Advil", active[0].BrandName)

	found, err := svc.Search(ctx, "zyr")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Zyrtec", found[0].BrandName)

	all, err := svc.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := svc.Search(ctx, "insulin")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{
		TotalMedications:   3,
		ActiveMedications:  2,
		ExpiredMedications: 1,
		Patients:           []string{"Myself", "Sam"},
	}, stats)

	groups, err := svc.Groups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Myself", "Sam"}, groups.Patients)
}

func TestMedicationService_SetActive(t *testing.T) {
	svc, _ := newMedicationService(t)
	ctx := context.Background()

	med := save(t, svc, medication("Sam", "Advil"))
	updated, err := svc.SetActive(ctx, med.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	got, err := svc.Get(ctx, med.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = svc.SetActive(ctx, "missing", true)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMedicationService_MarkExpired(t *testing.T) {
	svc, bus := newMedicationService(t)
	ctx := context.Background()

	past := testNow.Add(-24 * time.Hour)
	future := testNow.Add(24 * time.Hour)

	byExpiration := medication("Sam", "Old syrup")
	byExpiration.Storage.ExpirationDate = &past
	byExpiration = save(t, svc, byExpiration)

	byEndDate := medication("Sam", "Antibiotic")
	byEndDate.EndDate = &past
	save(t, svc, byEndDate)

	fresh := medication("Sam", "New syrup")
	fresh.Storage.ExpirationDate = &future
	save(t, svc, fresh)

	already := medication("Sam", "Flagged")
	already.EndDate = &past
	already.IsExpired = true
	save(t, svc, already)

	n, err := svc.MarkExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := svc.Get(ctx, byExpiration.ID)
	require.NoError(t, err)
	assert.True(t, got.IsExpired)
	assert.True(t, got.IsActive)

	n, err = svc.MarkExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, bus.types(), EventMedicationExpired)
}

func TestMedicationService_Delete(t *testing.T) {
	svc, _ := newMedicationService(t)
	ctx := context.Background()

	a := save(t, svc, medication("Sam", "A"))
	b := save(t, svc, medication("Sam", "B"))
	c := save(t, svc, medication("Sam", "C"))

	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err := svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	n, err := svc.DeleteMany(ctx, []string{b.ID, "unknown"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, svc.Clear(ctx))
	_, err = svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMedicationService_ExportImport(t *testing.T) {
	svc, bus := newMedicationService(t)
	ctx := context.Background()

	first := save(t, svc, medication("Myself", "Advil"))
	save(t, svc, medication("Sam", "Zyrtec"))

	data, name, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fmsp_export_2026-04-01.json", name)

	result, err := svc.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Added: 2, Skipped: 0}, result)
	assert.Contains(t, bus.types(), EventMedicationImported)

	meds, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, meds, 4)

	ids := map[string]bool{}
	for _, m := range meds {
		assert.False(t, ids[m.ID], "duplicate id %s", m.ID)
		ids[m.ID] = true
	}
	assert.True(t, ids[first.ID])

	_, err = svc.Import(ctx, []byte(`{"medications": []}`))
	assert.ErrorIs(t, err, transfer.ErrEmptyExport)

	_, err = svc.Import(ctx, []byte(`{"medications": [{"patientName": "x"}]}`))
	assert.ErrorIs(t, err, transfer.ErrMissingFields)
}

type failingStore struct {
	*store.MemoryStore
	failOn string
}

func (f *failingStore) Put(ctx context.Context, med *model.Medication) error {
	if med.BrandName == f.failOn {
		return errors.New("write failed")
	}
	return f.MemoryStore.Put(ctx, med)
}

func TestMedicationService_ImportSkipsFailures(t *testing.T) {
	st := &failingStore{MemoryStore: store.NewMemoryStore(), failOn: "Broken"}
	svc := NewMedicationService(st, nil, nil, nil)

	doc := `{"medications": [
		{"brandName": "Advil", "dosageAmount": "1", "dosageUnit": "tablet"},
		{"brandName": "Broken", "dosageAmount": "1", "dosageUnit": "tablet"}
	]}`
	result, err := svc.Import(context.Background(), []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Added: 1, Skipped: 1}, result)
}

func TestMedicationService_Archive(t *testing.T) {
	svc, _ := newMedicationService(t)
	ctx := context.Background()

	_, err := svc.Archive(ctx)
	assert.ErrorIs(t, err, ErrNoArchive)

	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc.SetArchive(archive)
	save(t, svc, medication("Myself", "Advil"))

	obj, err := svc.Archive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fmsp_export_2026-04-01.json", obj.Name)
	assert.Len(t, obj.SHA256, 64)

	rc, err := svc.OpenArchive(ctx, obj.Name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, obj.Size, int64(len(data)))

	objects, err := svc.ListArchives(ctx)
	require.NoError(t, err)
	assert.Len(t, objects, 1)
}

func TestMedicationService_EnqueueSweep(t *testing.T) {
	svc, _ := newMedicationService(t)
	assert.ErrorIs(t, svc.EnqueueSweep("manual"), ErrNoJobClient)

	jobs := &mockJobClient{}
	svc.SetJobClient(jobs)
	require.NoError(t, svc.EnqueueSweep("manual"))
	assert.Equal(t, []string{"manual"}, jobs.reasons)
}
