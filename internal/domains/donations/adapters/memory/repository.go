package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/shelter-api/internal/domains/donations/domain"
	"github.com/Apurer/shelter-api/internal/domains/donations/ports"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory donation persistence adapter.
type Repository struct {
	mu        sync.RWMutex
	donations map[int64]*storedDonation
	nextID    int64
	now       func() time.Time
}

type storedDonation struct {
	donation *domain.Donation
	metadata projection.Metadata
}

func NewRepository() *Repository {
	return &Repository{donations: map[int64]*storedDonation{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, donation *domain.Donation) (*projection.Projection[*domain.Donation], error) {
	if donation == nil {
		return nil, errors.New("donation is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := &storedDonation{donation: donation.Clone()}
	stored.donation.ID = r.nextID
	ts := r.now()
	stored.metadata = projection.Metadata{CreatedAt: ts, UpdatedAt: ts}
	r.donations[stored.donation.ID] = stored
	return projectionCopy(stored), nil
}

func (r *Repository) Update(_ context.Context, donation *domain.Donation) (*projection.Projection[*domain.Donation], error) {
	if donation == nil {
		return nil, errors.New("donation is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.donations[donation.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	entry.donation = donation.Clone()
	entry.metadata.UpdatedAt = r.now()
	return projectionCopy(entry), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*projection.Projection[*domain.Donation], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.donations[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.donations[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.donations, id)
	return nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter, page query.Request) ([]*projection.Projection[*domain.Donation], int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*storedDonation
	for _, entry := range r.donations {
		if matches(entry.donation, filter) {
			matched = append(matched, entry)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		cmp := compare(matched[i], matched[j], page.Sort.Field)
		if cmp == 0 {
			cmp = compareInt(matched[i].donation.ID, matched[j].donation.ID)
		}
		if page.Sort.Descending() {
			return cmp > 0
		}
		return cmp < 0
	})

	total := int64(len(matched))
	start := min(max(page.Offset(), 0), len(matched))
	end := min(start+page.Size, len(matched))
	list := make([]*projection.Projection[*domain.Donation], 0, end-start)
	for _, entry := range matched[start:end] {
		list = append(list, projectionCopy(entry))
	}
	return list, total, nil
}

func matches(d *domain.Donation, f ports.ListFilter) bool {
	if f.Keyword != nil && !strings.Contains(strings.ToLower(d.DonorName), strings.ToLower(*f.Keyword)) {
		return false
	}
	if f.ReceiptIssued != nil && d.ReceiptIssued != *f.ReceiptIssued {
		return false
	}
	if f.MinAmount != nil && d.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && d.Amount > *f.MaxAmount {
		return false
	}
	if f.DonatedFrom != nil && d.DonatedAt.Before(*f.DonatedFrom) {
		return false
	}
	if f.DonatedTo != nil && d.DonatedAt.After(*f.DonatedTo) {
		return false
	}
	return true
}

func compare(a, b *storedDonation, field string) int {
	switch field {
	case "amount":
		return compareInt(a.donation.Amount, b.donation.Amount)
	case "createdAt":
		return a.metadata.CreatedAt.Compare(b.metadata.CreatedAt)
	default:
		return a.donation.DonatedAt.Compare(b.donation.DonatedAt)
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

func projectionCopy(entry *storedDonation) *projection.Projection[*domain.Donation] {
	return &projection.Projection[*domain.Donation]{
		Entity:   entry.donation.Clone(),
		Metadata: entry.metadata,
	}
}
