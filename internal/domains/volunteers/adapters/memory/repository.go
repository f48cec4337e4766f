package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/shelter-api/internal/domains/volunteers/domain"
	"github.com/Apurer/shelter-api/internal/domains/volunteers/ports"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory volunteer persistence adapter.
type Repository struct {
	mu         sync.RWMutex
	volunteers map[int64]*storedVolunteer
	nextID     int64
	now        func() time.Time
}

type storedVolunteer struct {
	volunteer *domain.Volunteer
	metadata  projection.Metadata
}

func NewRepository() *Repository {
	return &Repository{volunteers: map[int64]*storedVolunteer{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, volunteer *domain.Volunteer) (*projection.Projection[*domain.Volunteer], error) {
	if volunteer == nil {
		return nil, errors.New("volunteer is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := &storedVolunteer{volunteer: volunteer.Clone()}
	stored.volunteer.ID = r.nextID
	ts := r.now()
	stored.metadata = projection.Metadata{CreatedAt: ts, UpdatedAt: ts}
	r.volunteers[stored.volunteer.ID] = stored
	return projectionCopy(stored), nil
}

func (r *Repository) Update(_ context.Context, volunteer *domain.Volunteer) (*projection.Projection[*domain.Volunteer], error) {
	if volunteer == nil {
		return nil, errors.New("volunteer is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.volunteers[volunteer.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	next := volunteer.Clone()
	next.Status = entry.volunteer.Status
	entry.volunteer = next
	entry.metadata.UpdatedAt = r.now()
	return projectionCopy(entry), nil
}

func (r *Repository) UpdateStatus(_ context.Context, id int64, expected, next domain.Status) (*projection.Projection[*domain.Volunteer], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.volunteers[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if entry.volunteer.Status != expected {
		return nil, ports.ErrStatusChanged
	}
	entry.volunteer.Status = next
	entry.metadata.UpdatedAt = r.now()
	return projectionCopy(entry), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*projection.Projection[*domain.Volunteer], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.volunteers[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.volunteers[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.volunteers, id)
	return nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter, page query.Request) ([]*projection.Projection[*domain.Volunteer], int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*storedVolunteer
	for _, entry := range r.volunteers {
		if matches(entry.volunteer, filter) {
			matched = append(matched, entry)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		cmp := compare(matched[i], matched[j], page.Sort.Field)
		if cmp == 0 {
			cmp = compareInt(matched[i].volunteer.ID, matched[j].volunteer.ID)
		}
		if page.Sort.Descending() {
			return cmp > 0
		}
		return cmp < 0
	})

	total := int64(len(matched))
	start := min(max(page.Offset(), 0), len(matched))
	end := min(start+page.Size, len(matched))
	list := make([]*projection.Projection[*domain.Volunteer], 0, end-start)
	for _, entry := range matched[start:end] {
		list = append(list, projectionCopy(entry))
	}
	return list, total, nil
}

func (r *Repository) CountByStatus(_ context.Context) ([]ports.StatusCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := map[domain.Status]int64{}
	for _, entry := range r.volunteers {
		counts[entry.volunteer.Status]++
	}
	out := make([]ports.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, ports.StatusCount{Status: status, Count: n})
	}
	return out, nil
}

func matches(v *domain.Volunteer, f ports.ListFilter) bool {
	if f.Status != nil && v.Status != *f.Status {
		return false
	}
	if f.Keyword != nil {
		kw := strings.ToLower(*f.Keyword)
		hit := false
		for _, field := range []string{v.Name, v.Phone, v.Email} {
			if strings.Contains(strings.ToLower(field), kw) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func compare(a, b *storedVolunteer, field string) int {
	switch field {
	case "joinedAt":
		return a.volunteer.JoinedAt.Compare(b.volunteer.JoinedAt)
	case "name":
		return strings.Compare(a.volunteer.Name, b.volunteer.Name)
	case "status":
		return strings.Compare(string(a.volunteer.Status), string(b.volunteer.Status))
	default:
		return a.metadata.CreatedAt.Compare(b.metadata.CreatedAt)
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

func projectionCopy(entry *storedVolunteer) *projection.Projection[*domain.Volunteer] {
	return &projection.Projection[*domain.Volunteer]{
		Entity:   entry.volunteer.Clone(),
		Metadata: entry.metadata,
	}
}
