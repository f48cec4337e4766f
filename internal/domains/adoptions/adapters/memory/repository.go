package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/shelter-api/internal/domains/adoptions/domain"
	"github.com/Apurer/shelter-api/internal/domains/adoptions/ports"
	animalmemory "github.com/Apurer/shelter-api/internal/domains/animals/adapters/memory"
	animaldomain "github.com/Apurer/shelter-api/internal/domains/animals/domain"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps adoptions in memory next to an in-memory animal store.
// Both stores share one lock, so a unit of work touching both is applied atomically.
type Repository struct {
	mu        *sync.RWMutex
	animals   *animalmemory.Repository
	adoptions map[int64]*storedAdoption
	nextID    int64
	now       func() time.Time
}

type storedAdoption struct {
	adoption *domain.Adoption
	metadata projection.Metadata
}

// NewRepository attaches an adoption store to animals and registers the delete guard on it.
func NewRepository(animals *animalmemory.Repository) *Repository {
	r := &Repository{
		mu:        animals.Locker(),
		animals:   animals,
		adoptions: map[int64]*storedAdoption{},
		now:       time.Now,
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
	for _, entry := range r.adoptions {
		if entry.adoption.AnimalID == animalID {
			return true
		}
	}
	return false
}

// FindAnimal reads the animal's current status.
func (r *Repository) FindAnimal(_ context.Context, animalID int64) (*ports.AnimalRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	status, ok := r.animals.StatusLocked(animalID)
	if !ok {
		return nil, ports.ErrAnimalNotFound
	}
	return &ports.AnimalRef{ID: animalID, Status: status}, nil
}

// FindByID fetches an adoption if present.
func (r *Repository) FindByID(_ context.Context, id int64) (*projection.Projection[*domain.Adoption], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.adoptions[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

// Create assigns an ID and stores the adoption. The referenced animal must exist.
func (r *Repository) Create(_ context.Context, adoption *domain.Adoption) (*projection.Projection[*domain.Adoption], error) {
	if adoption == nil {
		return nil, errors.New("cannot save nil adoption")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.animals.StatusLocked(adoption.AnimalID); !ok {
		return nil, ports.ErrAnimalNotFound
	}
	r.nextID++
	stored := &storedAdoption{adoption: adoption.Clone()}
	stored.adoption.ID = r.nextID
	ts := r.now()
	stored.metadata = projection.Metadata{CreatedAt: ts, UpdatedAt: ts}
	r.adoptions[stored.adoption.ID] = stored
	return projectionCopy(stored), nil
}

// Update replaces the adoption if its stored status still equals expected.
func (r *Repository) Update(_ context.Context, adoption *domain.Adoption, expected domain.Status) (*projection.Projection[*domain.Adoption], error) {
	if adoption == nil {
		return nil, errors.New("cannot save nil adoption")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, err := r.checkLocked(adoption.ID, expected)
	if err != nil {
		return nil, err
	}
	r.replaceLocked(entry, adoption)
	return projectionCopy(entry), nil
}

func (r *Repository) checkLocked(id int64, expected domain.Status) (*storedAdoption, error) {
	entry, ok := r.adoptions[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if entry.adoption.Status != expected {
		return nil, ports.ErrStatusChanged
	}
	return entry, nil
}

func (r *Repository) replaceLocked(entry *storedAdoption, adoption *domain.Adoption) {
	entry.adoption = adoption.Clone()
	entry.metadata.UpdatedAt = r.now()
}

// RunInTx holds the shared write lock for the whole of fn and applies the buffered writes only if fn succeeds.
// fn must not call back into Repository methods.
func (r *Repository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &unitOfWork{
		repo:      r,
		adoptions: map[int64]*domain.Adoption{},
		animals:   map[int64]animaldomain.Status{},
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, status := range tx.animals {
		if err := r.animals.SetStatusLocked(id, status); err != nil {
			return err
		}
	}
	for id, adoption := range tx.adoptions {
		r.replaceLocked(r.adoptions[id], adoption)
	}
	return nil
}

// List filters, sorts and pages the stored adoptions.
func (r *Repository) List(_ context.Context, filter ports.ListFilter, page query.Request) ([]*projection.Projection[*domain.Adoption], int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*storedAdoption
	for _, entry := range r.adoptions {
		if matches(entry.adoption, filter) {
			matched = append(matched, entry)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i], matched[j], page.Sort)
	})

	total := int64(len(matched))
	start := min(max(page.Offset(), 0), len(matched))
	end := min(start+page.Size, len(matched))
	list := make([]*projection.Projection[*domain.Adoption], 0, end-start)
	for _, entry := range matched[start:end] {
		list = append(list, projectionCopy(entry))
	}
	return list, total, nil
}

// unitOfWork buffers writes made inside RunInTx. Reads see the buffered state first.
type unitOfWork struct {
	repo      *Repository
	adoptions map[int64]*domain.Adoption
	animals   map[int64]animaldomain.Status
}

func (u *unitOfWork) UpdateAdoption(_ context.Context, adoption *domain.Adoption, expected domain.Status) (*projection.Projection[*domain.Adoption], error) {
	if adoption == nil {
		return nil, errors.New("cannot save nil adoption")
	}
	entry, ok := u.repo.adoptions[adoption.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	current := entry.adoption.Status
	if pending, ok := u.adoptions[adoption.ID]; ok {
		current = pending.Status
	}
	if current != expected {
		return nil, ports.ErrStatusChanged
	}
	u.adoptions[adoption.ID] = adoption.Clone()
	return &projection.Projection[*domain.Adoption]{
		Entity: adoption.Clone(),
		Metadata: projection.Metadata{
			CreatedAt: entry.metadata.CreatedAt,
			UpdatedAt: u.repo.now(),
		},
	}, nil
}

func (u *unitOfWork) MarkAnimalAdopted(_ context.Context, animalID int64) (animaldomain.Status, error) {
	status, ok := u.repo.animals.StatusLocked(animalID)
	if !ok {
		return "", ports.ErrAnimalNotFound
	}
	if pending, ok := u.animals[animalID]; ok {
		status = pending
	}
	if !status.Adoptable() {
		return status, ports.ErrAnimalUnavailable
	}
	u.animals[animalID] = animaldomain.StatusAdopted
	return status, nil
}

func matches(a *domain.Adoption, f ports.ListFilter) bool {
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.AnimalID != nil && a.AnimalID != *f.AnimalID {
		return false
	}
	if f.RequestedFrom != nil && a.RequestedAt.Before(*f.RequestedFrom) {
		return false
	}
	if f.RequestedTo != nil && a.RequestedAt.After(*f.RequestedTo) {
		return false
	}
	if f.Keyword != nil && !strings.Contains(strings.ToLower(a.ApplicantName), strings.ToLower(*f.Keyword)) {
		return false
	}
	return true
}

func less(a, b *storedAdoption, s query.Sort) bool {
	cmp := compare(a, b, s.Field)
	if cmp == 0 {
		cmp = compareInt(a.adoption.ID, b.adoption.ID)
	}
	if s.Descending() {
		return cmp > 0
	}
	return cmp < 0
}

func compare(a, b *storedAdoption, field string) int {
	switch field {
	case "approvedAt":
		return compareOptional(a.adoption.ApprovedAt, b.adoption.ApprovedAt)
	case "adoptedAt":
		return compareOptional(a.adoption.AdoptedAt, b.adoption.AdoptedAt)
	case "createdAt":
		return a.metadata.CreatedAt.Compare(b.metadata.CreatedAt)
	default:
		return a.adoption.RequestedAt.Compare(b.adoption.RequestedAt)
	}
}

// compareOptional orders nil after any value, matching Postgres NULLS LAST for ascending sorts.
func compareOptional(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
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

func projectionCopy(entry *storedAdoption) *projection.Projection[*domain.Adoption] {
	return &projection.Projection[*domain.Adoption]{
		Entity:   entry.adoption.Clone(),
		Metadata: entry.metadata,
	}
}
