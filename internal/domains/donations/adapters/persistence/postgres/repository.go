package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/shelter-api/internal/domains/donations/domain"
	"github.com/Apurer/shelter-api/internal/domains/donations/ports"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists donations in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type donationRecord struct {
	ID            int64     `gorm:"primaryKey;column:id"`
	DonorName     string    `gorm:"column:donor_name;size:50"`
	DonorContact  string    `gorm:"column:donor_contact;size:50"`
	Amount        int64     `gorm:"column:amount"`
	DonatedAt     time.Time `gorm:"column:donated_at;index"`
	ReceiptIssued bool      `gorm:"column:receipt_issued"`
	Note          string    `gorm:"column:note;size:255"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (donationRecord) TableName() string { return "donations" }

func (r *Repository) Create(ctx context.Context, donation *domain.Donation) (*projection.Projection[*domain.Donation], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, errors.New("donation is nil")
	}
	record := toRecord(donation)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *Repository) Update(ctx context.Context, donation *domain.Donation) (*projection.Projection[*domain.Donation], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, errors.New("donation is nil")
	}
	record := toRecord(donation)
	result := r.db.WithContext(ctx).
		Model(&donationRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"donor_name":     record.DonorName,
			"donor_contact":  record.DonorContact,
			"amount":         record.Amount,
			"donated_at":     record.DonatedAt,
			"receipt_issued": record.ReceiptIssued,
			"note":           record.Note,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, record.ID)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.Donation], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record donationRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&donationRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter, page query.Request) ([]*projection.Projection[*domain.Donation], int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&donationRecord{}).Scopes(filterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	column, ok := ports.SortFields[page.Sort.Field]
	if !ok {
		column = "donated_at"
	}
	var records []donationRecord
	if err := r.db.WithContext(ctx).
		Scopes(filterScope(filter)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: page.Sort.Descending()}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: page.Sort.Descending()}).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	list := make([]*projection.Projection[*domain.Donation], 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list, total, nil
}

func filterScope(f ports.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Keyword != nil {
			db = db.Where("donor_name ILIKE ?", "%"+likeEscaper.Replace(*f.Keyword)+"%")
		}
		if f.ReceiptIssued != nil {
			db = db.Where("receipt_issued = ?", *f.ReceiptIssued)
		}
		if f.MinAmount != nil {
			db = db.Where("amount >= ?", *f.MinAmount)
		}
		if f.MaxAmount != nil {
			db = db.Where("amount <= ?", *f.MaxAmount)
		}
		if f.DonatedFrom != nil {
			db = db.Where("donated_at >= ?", *f.DonatedFrom)
		}
		if f.DonatedTo != nil {
			db = db.Where("donated_at <= ?", *f.DonatedTo)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres donation repository not configured")
	}
	return nil
}

func toRecord(d *domain.Donation) donationRecord {
	return donationRecord{
		ID:            d.ID,
		DonorName:     d.DonorName,
		DonorContact:  d.DonorContact,
		Amount:        d.Amount,
		DonatedAt:     d.DonatedAt,
		ReceiptIssued: d.ReceiptIssued,
		Note:          d.Note,
	}
}

func (r donationRecord) toProjection() *projection.Projection[*domain.Donation] {
	return &projection.Projection[*domain.Donation]{
		Entity: &domain.Donation{
			ID:            r.ID,
			DonorName:     r.DonorName,
			DonorContact:  r.DonorContact,
			Amount:        r.Amount,
			DonatedAt:     r.DonatedAt.UTC(),
			ReceiptIssued: r.ReceiptIssued,
			Note:          r.Note,
		},
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}
