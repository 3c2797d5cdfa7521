package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/storage"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/store"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/transfer"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

var (
	ErrNoArchive   = errors.New("export archive is not configured")
	ErrNoJobClient = errors.New("background jobs are not configured")
)

type MedicationService struct {
	store     store.Store
	bus       EventBus
	parser    *transfer.Parser
	archive   storage.Storage
	jobClient JobClient
	now       func() time.Time
	newID     func() string
	log       *zap.Logger
}

func NewMedicationService(st store.Store, bus EventBus, parser *transfer.Parser, log *zap.Logger) *MedicationService {
	if bus == nil {
		bus = NopBus{}
	}
	if parser == nil {
		parser = transfer.NewParser(nil, nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MedicationService{
		store:  st,
		bus:    bus,
		parser: parser,
		now:    time.Now,
		newID:  func() string { return ulid.Make().String() },
		log:    log,
	}
}

// SetArchive sets the backend used by Archive
func (s *MedicationService) SetArchive(archive storage.Storage) {
	s.archive = archive
}

// SetJobClient sets the job client for scheduling background jobs
func (s *MedicationService) SetJobClient(client JobClient) {
	s.jobClient = client
}

// SetClock replaces the time source
func (s *MedicationService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *MedicationService) List(ctx context.Context) ([]model.Medication, error) {
	meds, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return meds, nil
}

func (s *MedicationService) Get(ctx context.Context, id string) (model.Medication, error) {
	return s.store.Get(ctx, id)
}

// Save validates med and stores it. A record without an id gets one.
func (s *MedicationService) Save(ctx context.Context, med *model.Medication) error {
	if med.ID == "" {
		med.ID = s.newID()
	}
	if med.Schedule.DaysOfWeek == nil {
		med.Schedule.DaysOfWeek = []string{}
	}
	if err := med.Validate(); err != nil {
		return err
	}
	if err := s.store.Put(ctx, med); err != nil {
		return fmt.Errorf("failed to save medication: %w", err)
	}

	s.publish(EventMedicationSaved, map[string]interface{}{
		"medicationId": med.ID,
		"patientName":  med.PatientName,
	})
	return nil
}

// Replace overwrites an existing record, keeping its id and creation time
func (s *MedicationService) Replace(ctx context.Context, id string, med *model.Medication) error {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	med.ID = id
	med.CreatedAt = existing.CreatedAt
	return s.Save(ctx, med)
}

func (s *MedicationService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	s.publish(EventMedicationDeleted, map[string]interface{}{
		"medicationIds": []string{id},
	})
	return nil
}

func (s *MedicationService) DeleteMany(ctx context.Context, ids []string) (int, error) {
	n, err := s.store.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete medications: %w", err)
	}
	if n > 0 {
		s.publish(EventMedicationDeleted, map[string]interface{}{
			"medicationIds": ids,
			"count":         n,
		})
	}
	return n, nil
}

// ListByPatient returns the records whose patient name equals name
func (s *MedicationService) ListByPatient(ctx context.Context, name string) ([]model.Medication, error) {
	return s.filter(ctx, func(m model.Medication) bool {
		return m.PatientName == name
	})
}

// Active returns records that are active and not expired
func (s *MedicationService) Active(ctx context.Context) ([]model.Medication, error) {
	return s.filter(ctx, func(m model.Medication) bool {
		return m.IsActive && !m.IsExpired
	})
}

// Search matches term case-insensitively against names and reason
func (s *MedicationService) Search(ctx context.Context, term string) ([]model.Medication, error) {
	if strings.TrimSpace(term) == "" {
		return s.List(ctx)
	}
	return s.filter(ctx, func(m model.Medication) bool {
		return m.Matches(term)
	})
}

func (s *MedicationService) filter(ctx context.Context, keep func(model.Medication) bool) ([]model.Medication, error) {
	meds, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []model.Medication{}
	for _, m := range meds {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

// SetActive changes the active flag of one record
func (s *MedicationService) SetActive(ctx context.Context, id string, active bool) (model.Medication, error) {
	med, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Medication{}, err
	}
	med.IsActive = active
	if err := s.store.Put(ctx, &med); err != nil {
		return model.Medication{}, fmt.Errorf("failed to update status: %w", err)
	}
	s.publish(EventMedicationSaved, map[string]interface{}{
		"medicationId": med.ID,
		"isActive":     active,
	})
	return med, nil
}

// MarkExpired flags every record whose expiration or end date has
// passed. Records already flagged are not counted again.
func (s *MedicationService) MarkExpired(ctx context.Context) (int, error) {
	meds, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	var expired []string
	for i := range meds {
		med := meds[i]
		if med.IsExpired || !med.ShouldExpire(now) {
			continue
		}
		med.IsExpired = true
		if err := s.store.Put(ctx, &med); err != nil {
			return len(expired), fmt.Errorf("failed to mark medication %s expired: %w", med.ID, err)
		}
		expired = append(expired, med.ID)
	}

	if len(expired) > 0 {
		s.log.Info("Medications expired", zap.Int("count", len(expired)))
		s.publish(EventMedicationExpired, map[string]interface{}{
			"medicationIds": expired,
			"count":         len(expired),
		})
	}
	return len(expired), nil
}

func (s *MedicationService) Stats(ctx context.Context) (model.Stats, error) {
	meds, err := s.List(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	return model.ComputeStats(meds), nil
}

func (s *MedicationService) Groups(ctx context.Context) (model.PatientGroups, error) {
	meds, err := s.List(ctx)
	if err != nil {
		return model.PatientGroups{}, err
	}
	return model.GroupByPatient(meds), nil
}

func (s *MedicationService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear medications: %w", err)
	}
	s.publish(EventMedicationsCleared, map[string]interface{}{})
	return nil
}

// Export returns the encoded envelope and its download name
func (s *MedicationService) Export(ctx context.Context) ([]byte, string, error) {
	meds, err := s.List(ctx)
	if err != nil {
		return nil, "", err
	}
	now := s.now()
	data, err := transfer.Export(meds, now)
	if err != nil {
		return nil, "", err
	}
	return data, transfer.FileName(now), nil
}

// ImportResult counts the outcome of a merge
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Import parses an export file and adds every record as a new
// medication. Existing records are left alone.
func (s *MedicationService) Import(ctx context.Context, data []byte) (ImportResult, error) {
	meds, err := s.parser.Parse(ctx, data)
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	var ids []string
	for i := range meds {
		med := meds[i]
		med.ID = s.newID()
		med.CreatedAt = time.Time{}
		if err := s.store.Put(ctx, &med); err != nil {
			s.log.Warn("Skipped imported medication", zap.Int("index", i), zap.Error(err))
			result.Skipped++
			continue
		}
		ids = append(ids, med.ID)
		result.Added++
	}

	s.publish(EventMedicationImported, map[string]interface{}{
		"medicationIds": ids,
		"added":         result.Added,
		"skipped":       result.Skipped,
	})
	return result, nil
}

// Archive writes the current export to the archive backend
func (s *MedicationService) Archive(ctx context.Context) (storage.ExportObject, error) {
	if s.archive == nil {
		return storage.ExportObject{}, ErrNoArchive
	}

	data, name, err := s.Export(ctx)
	if err != nil {
		return storage.ExportObject{}, err
	}
	obj, err := storage.NewExportObject(name, data, s.now())
	if err != nil {
		return storage.ExportObject{}, err
	}
	if err := s.archive.Put(ctx, obj.Name, bytes.NewReader(data), obj.Size, obj.MIME); err != nil {
		return storage.ExportObject{}, fmt.Errorf("failed to archive export: %w", err)
	}

	s.log.Info("Export archived", zap.String("name", obj.Name), zap.Int64("size", obj.Size))
	return obj, nil
}

// OpenArchive streams a previously archived export
func (s *MedicationService) OpenArchive(ctx context.Context, name string) (io.ReadCloser, error) {
	if s.archive == nil {
		return nil, ErrNoArchive
	}
	return s.archive.Get(ctx, name)
}

// ListArchives lists archived exports
func (s *MedicationService) ListArchives(ctx context.Context) ([]storage.ObjectInfo, error) {
	if s.archive == nil {
		return nil, ErrNoArchive
	}
	return s.archive.List(ctx)
}

// EnqueueSweep asks the job server to run the expiry sweep
func (s *MedicationService) EnqueueSweep(reason string) error {
	if s.jobClient == nil {
		return ErrNoJobClient
	}
	return s.jobClient.EnqueueExpireSweep(reason)
}

func (s *MedicationService) publish(eventType string, event map[string]interface{}) {
	event["type"] = eventType
	if err := s.bus.PublishMedication(event); err != nil {
		s.log.Warn("Failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
