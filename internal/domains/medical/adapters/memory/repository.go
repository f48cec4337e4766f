package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	animalmemory "github.com/Apurer/shelter-api/internal/domains/animals/adapters/memory"
	"github.com/Apurer/shelter-api/internal/domains/medical/domain"
	"github.com/Apurer/shelter-api/internal/domains/medical/ports"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps medical records next to the in-memory animal store, under its lock.
type Repository struct {
	mu      *sync.RWMutex
	animals *animalmemory.Repository
	records map[int64]*storedRecord
	nextID  int64
	now     func() time.Time
}

type storedRecord struct {
	record   *domain.Record
	metadata projection.Metadata
}

// NewRepository attaches a medical record store to animals and registers its delete guard.
func NewRepository(animals *animalmemory.Repository) *Repository {
	r := &Repository{
		mu:      animals.Locker(),
		animals: animals,
		records: map[int64]*storedRecord{},
		now:     time.Now,
	}
	animals.AddReferenceCheck(r.referencesLocked)
	return r
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) referencesLocked(animalID int64) bool {
	for _, entry := range r.records {
		if entry.record.AnimalID == animalID {
			return true
		}
	}
	return false
}

func (r *Repository) AnimalExists(_ context.Context, animalID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.animals.StatusLocked(animalID)
	return ok, nil
}

func (r *Repository) Create(_ context.Context, record *domain.Record) (*projection.Projection[*domain.Record], error) {
	if record == nil {
		return nil, errors.New("medical record is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.animals.StatusLocked(record.AnimalID); !ok {
		return nil, ports.ErrAnimalNotFound
	}
	r.nextID++
	stored := &storedRecord{record: record.Clone()}
	stored.record.ID = r.nextID
	ts := r.now()
	stored.metadata = projection.Metadata{CreatedAt: ts, UpdatedAt: ts}
	r.records[stored.record.ID] = stored
	return projectionCopy(stored), nil
}

// Update replaces the record. AnimalID keeps its stored value.
func (r *Repository) Update(_ context.Context, record *domain.Record) (*projection.Projection[*domain.Record], error) {
	if record == nil {
		return nil, errors.New("medical record is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.records[record.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	next := record.Clone()
	next.AnimalID = entry.record.AnimalID
	entry.record = next
	entry.metadata.UpdatedAt = r.now()
	return projectionCopy(entry), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*projection.Projection[*domain.Record], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.records[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter, page query.Request) ([]*projection.Projection[*domain.Record], int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.sortedLocked(filter, page.Sort)
	total := int64(len(matched))
	start := min(max(page.Offset(), 0), len(matched))
	end := min(start+page.Size, len(matched))
	list := make([]*projection.Projection[*domain.Record], 0, end-start)
	for _, entry := range matched[start:end] {
		list = append(list, projectionCopy(entry))
	}
	return list, total, nil
}

func (r *Repository) Recent(_ context.Context, animalID int64, limit int) ([]*projection.Projection[*domain.Record], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.sortedLocked(ports.ListFilter{AnimalID: &animalID}, query.Sort{Field: "performedAt", Direction: query.Desc})
	matched = matched[:min(max(limit, 0), len(matched))]
	list := make([]*projection.Projection[*domain.Record], 0, len(matched))
	for _, entry := range matched {
		list = append(list, projectionCopy(entry))
	}
	return list, nil
}

func (r *Repository) sortedLocked(filter ports.ListFilter, order query.Sort) []*storedRecord {
	var matched []*storedRecord
	for _, entry := range r.records {
		if matches(entry.record, filter) {
			matched = append(matched, entry)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		cmp := compare(matched[i], matched[j], order.Field)
		if cmp == 0 {
			cmp = compareInt(matched[i].record.ID, matched[j].record.ID)
		}
		if order.Descending() {
			return cmp > 0
		}
		return cmp < 0
	})
	return matched
}

func matches(rec *domain.Record, f ports.ListFilter) bool {
	if f.AnimalID != nil && rec.AnimalID != *f.AnimalID {
		return false
	}
	if f.Type != nil && rec.Type != *f.Type {
		return false
	}
	if f.PerformedFrom != nil && rec.PerformedAt.Before(*f.PerformedFrom) {
		return false
	}
	if f.PerformedTo != nil && rec.PerformedAt.After(*f.PerformedTo) {
		return false
	}
	return true
}

// compare ranks an unknown cost above every known one, matching PostgreSQL's NULL ordering.
func compare(a, b *storedRecord, field string) int {
	switch field {
	case "cost":
		switch {
		case a.record.Cost == nil && b.record.Cost == nil:
			return 0
		case a.record.Cost == nil:
			return 1
		case b.record.Cost == nil:
			return -1
		}
		return compareInt(*a.record.Cost, *b.record.Cost)
	case "createdAt":
		return a.metadata.CreatedAt.Compare(b.metadata.CreatedAt)
	default:
		return a.record.PerformedAt.Compare(b.record.PerformedAt)
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func projectionCopy(entry *storedRecord) *projection.Projection[*domain.Record] {
	return &projection.Projection[*domain.Record]{
		Entity:   entry.record.Clone(),
		Metadata: entry.metadata,
	}
}
