package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/shelter-api/internal/domains/animals/domain"
	"github.com/Apurer/shelter-api/internal/domains/animals/ports"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory animal store. Its lock can be shared with other in-memory
// stores so that cross-entity writes are applied under a single critical section.
type Repository struct {
	mu         *sync.RWMutex
	animals    map[int64]*storedAnimal
	nextID     int64
	now        func() time.Time
	referenced []func(animalID int64) bool
}

type storedAnimal struct {
	animal   *domain.Animal
	metadata projection.Metadata
}

// NewRepository constructs an empty store.
func NewRepository() *Repository {
	return &Repository{
		mu:      &sync.RWMutex{},
		animals: map[int64]*storedAnimal{},
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Locker exposes the lock guarding the store.
func (r *Repository) Locker() *sync.RWMutex { return r.mu }

// SetReferenceCheck replaces every check consulted by Delete with fn. A nil fn clears them.
func (r *Repository) SetReferenceCheck(fn func(animalID int64) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.referenced = nil
	if fn != nil {
		r.referenced = append(r.referenced, fn)
	}
}

// AddReferenceCheck registers another store that can pin an animal. Checks run with the lock held.
func (r *Repository) AddReferenceCheck(fn func(animalID int64) bool) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.referenced = append(r.referenced, fn)
}

func (r *Repository) referencedLocked(id int64) bool {
	for _, check := range r.referenced {
		if check(id) {
			return true
		}
	}
	return false
}

// StatusLocked returns the stored status. The caller must hold Locker().
func (r *Repository) StatusLocked(id int64) (domain.Status, bool) {
	entry, ok := r.animals[id]
	if !ok {
		return "", false
	}
	return entry.animal.Status, true
}

// SetStatusLocked overwrites the stored status. The caller must hold Locker() for writing.
func (r *Repository) SetStatusLocked(id int64, status domain.Status) error {
	entry, ok := r.animals[id]
	if !ok {
		return ports.ErrNotFound
	}
	entry.animal.Status = status
	entry.metadata.UpdatedAt = r.now()
	return nil
}

// Create assigns an ID and stores the animal.
func (r *Repository) Create(_ context.Context, animal *domain.Animal) (*projection.Projection[*domain.Animal], error) {
	if animal == nil {
		return nil, errors.New("cannot save nil animal")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := &storedAnimal{animal: animal.Clone()}
	stored.animal.ID = r.nextID
	ts := r.now()
	stored.metadata = projection.Metadata{CreatedAt: ts, UpdatedAt: ts}
	r.animals[stored.animal.ID] = stored
	return projectionCopy(stored), nil
}

// Update replaces the animal if its stored status still equals expected.
func (r *Repository) Update(_ context.Context, animal *domain.Animal, expected domain.Status) (*projection.Projection[*domain.Animal], error) {
	if animal == nil {
		return nil, errors.New("cannot save nil animal")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.animals[animal.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if entry.animal.Status != expected {
		return nil, ports.ErrStatusChanged
	}
	entry.animal = animal.Clone()
	entry.metadata.UpdatedAt = r.now()
	return projectionCopy(entry), nil
}

// GetByID fetches an animal if present.
func (r *Repository) GetByID(_ context.Context, id int64) (*projection.Projection[*domain.Animal], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.animals[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

// Delete removes an animal unless adoptions still reference it.
func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.animals[id]; !ok {
		return ports.ErrNotFound
	}
	if r.referencedLocked(id) {
		return ports.ErrReferenced
	}
	delete(r.animals, id)
	return nil
}

// List filters, sorts and pages the stored animals.
func (r *Repository) List(_ context.Context, filter ports.ListFilter, page query.Request) ([]*projection.Projection[*domain.Animal], int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*storedAnimal
	for _, entry := range r.animals {
		if matches(entry.animal, filter) {
			matched = append(matched, entry)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i], matched[j], page.Sort)
	})

	total := int64(len(matched))
	start := min(max(page.Offset(), 0), len(matched))
	end := min(start+page.Size, len(matched))
	list := make([]*projection.Projection[*domain.Animal], 0, end-start)
	for _, entry := range matched[start:end] {
		list = append(list, projectionCopy(entry))
	}
	return list, total, nil
}

func matches(a *domain.Animal, f ports.ListFilter) bool {
	if f.Species != nil && a.Species != *f.Species {
		return false
	}
	if f.Neutered != nil && a.Neutered != *f.Neutered {
		return false
	}
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.IntakeFrom != nil && a.IntakeDate.Before(*f.IntakeFrom) {
		return false
	}
	if f.IntakeTo != nil && a.IntakeDate.After(*f.IntakeTo) {
		return false
	}
	if f.Keyword != nil {
		kw := strings.ToLower(*f.Keyword)
		if !strings.Contains(strings.ToLower(a.Name), kw) && !strings.Contains(strings.ToLower(a.Breed), kw) {
			return false
		}
	}
	return true
}

func less(a, b *storedAnimal, s query.Sort) bool {
	cmp := compare(a, b, s.Field)
	if cmp == 0 {
		cmp = compareInt(a.animal.ID, b.animal.ID)
	}
	if s.Descending() {
		return cmp > 0
	}
	return cmp < 0
}

func compare(a, b *storedAnimal, field string) int {
	switch field {
	case "intakeDate":
		return a.animal.IntakeDate.Compare(b.animal.IntakeDate)
	case "updatedAt":
		return a.metadata.UpdatedAt.Compare(b.metadata.UpdatedAt)
	case "ageYears":
		return compareInt(ageOrMinus(a.animal), ageOrMinus(b.animal))
	case "species":
		return strings.Compare(a.animal.Species, b.animal.Species)
	case "status":
		return strings.Compare(string(a.animal.Status), string(b.animal.Status))
	default:
		return a.metadata.CreatedAt.Compare(b.metadata.CreatedAt)
	}
}

func ageOrMinus(a *domain.Animal) int64 {
	if a.AgeYears == nil {
		return -1
	}
	return int64(*a.AgeYears)
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

func projectionCopy(entry *storedAnimal) *projection.Projection[*domain.Animal] {
	return &projection.Projection[*domain.Animal]{
		Entity:   entry.animal.Clone(),
		Metadata: entry.metadata,
	}
}
