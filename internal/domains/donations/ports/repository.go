package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/shelter-api/internal/domains/donations/domain"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var ErrNotFound = errors.New("donation not found")

// SortFields maps API sort keys to storage columns.
var SortFields = map[string]string{
	"donatedAt": "donated_at",
	"amount":    "amount",
	"createdAt": "created_at",
}

// DefaultSort applies when the request names no sort.
var DefaultSort = query.Sort{Field: "donatedAt", Direction: query.Desc}

// ListFilter narrows donation listings. Nil fields are ignored.
type ListFilter struct {
	Keyword       *string
	ReceiptIssued *bool
	MinAmount     *int64
	MaxAmount     *int64
	DonatedFrom   *time.Time
	DonatedTo     *time.Time
}

// Repository is the persistence port for donations.
type Repository interface {
	Create(ctx context.Context, donation *domain.Donation) (*projection.Projection[*domain.Donation], error)
	Update(ctx context.Context, donation *domain.Donation) (*projection.Projection[*domain.Donation], error)
	GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.Donation], error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter, page query.Request) ([]*projection.Projection[*domain.Donation], int64, error)
}
