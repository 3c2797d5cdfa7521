package store

import (
	"context"
	"sync"
	"time"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
)

// MemoryStore keeps records in process memory. Records are stored as
// encoded documents so callers never share slices with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
	now  func() time.Time
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	cfg := applyOptions(opts)
	return &MemoryStore{
		docs: make(map[string][]byte),
		now:  cfg.Now,
	}
}

func (s *MemoryStore) List(ctx context.Context) ([]model.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meds := make([]model.Medication, 0, len(s.docs))
	for _, doc := range s.docs {
		med, err := decode(doc)
		if err != nil {
			return nil, err
		}
		meds = append(meds, med)
	}
	sortByCreated(meds)
	return meds, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (model.Medication, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return model.Medication{}, ErrNotFound
	}
	return decode(doc)
}

func (s *MemoryStore) Put(ctx context.Context, med *model.Medication) error {
	if err := stamp(med, s.now); err != nil {
		return err
	}
	doc, err := encode(*med)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[med.ID] = doc
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) DeleteMany(ctx context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, id := range ids {
		if _, ok := s.docs[id]; ok {
			delete(s.docs, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string][]byte)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
