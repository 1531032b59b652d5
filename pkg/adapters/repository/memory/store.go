// Package memory is an in-process AnalyticsRepository. State is lost on
// restart; it backs tests and single-instance development runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/wadjakorntonsri/folio/pkg/core/domain"
	"github.com/wadjakorntonsri/folio/pkg/ports"
)

type entry struct {
	mu  sync.Mutex
	rec *domain.AggregateRecord
}

type Store struct {
	mu      sync.RWMutex
	records map[string]*entry
	keys    map[string]string // lower(subjectKey) -> subjectID
}

func NewStore() *Store {
	return &Store{
		records: make(map[string]*entry),
		keys:    make(map[string]string),
	}
}

func (s *Store) GetOrCreate(ctx context.Context, subjectID, subjectKey string) (*domain.AggregateRecord, error) {
	if e := s.lookup(subjectID); e != nil {
		return e.snapshot(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-checked: another caller may have created it meanwhile.
	if e, ok := s.records[subjectID]; ok {
		return e.snapshot(), nil
	}

	e := &entry{rec: domain.NewAggregateRecord(subjectID, subjectKey)}
	s.records[subjectID] = e
	if subjectKey != "" {
		s.keys[strings.ToLower(subjectKey)] = subjectID
	}
	return e.snapshot(), nil
}

func (s *Store) Get(ctx context.Context, subjectID string) (*domain.AggregateRecord, error) {
	if e := s.lookup(subjectID); e != nil {
		return e.snapshot(), nil
	}
	return nil, nil
}

func (s *Store) GetByKey(ctx context.Context, subjectKey string) (*domain.AggregateRecord, error) {
	s.mu.RLock()
	id, ok := s.keys[strings.ToLower(subjectKey)]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return s.Get(ctx, id)
}

func (s *Store) Update(ctx context.Context, subjectID string, mutate func(*domain.AggregateRecord) error) (*domain.AggregateRecord, error) {
	e := s.lookup(subjectID)
	if e == nil {
		return nil, domain.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	next := e.rec.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	e.rec = next
	return next.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.records[subjectID]
	if !ok {
		return nil
	}
	delete(s.records, subjectID)
	delete(s.keys, strings.ToLower(e.snapshot().SubjectKey))
	return nil
}

func (s *Store) Dump(ctx context.Context) ([]domain.AggregateRecord, error) {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.records))
	for _, e := range s.records {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]domain.AggregateRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectID < out[j].SubjectID })
	return out, nil
}

func (s *Store) Restore(ctx context.Context, rec *domain.AggregateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.SubjectID] = &entry{rec: rec.Clone()}
	if rec.SubjectKey != "" {
		s.keys[strings.ToLower(rec.SubjectKey)] = rec.SubjectID
	}
	return nil
}

func (s *Store) lookup(subjectID string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[subjectID]
}

func (e *entry) snapshot() *domain.AggregateRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.Clone()
}

var _ ports.AnalyticsRepository = (*Store)(nil)
