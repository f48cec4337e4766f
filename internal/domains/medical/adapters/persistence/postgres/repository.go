package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/shelter-api/internal/domains/medical/domain"
	"github.com/Apurer/shelter-api/internal/domains/medical/ports"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists medical records in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type medicalRecord struct {
	ID          int64     `gorm:"primaryKey;column:id"`
	AnimalID    int64     `gorm:"column:animal_id"`
	Type        string    `gorm:"column:type;size:16"`
	PerformedAt time.Time `gorm:"column:performed_at"`
	Cost        *int64    `gorm:"column:cost"`
	Description string    `gorm:"column:description;size:255"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (medicalRecord) TableName() string { return "medical_records" }

func (r *Repository) AnimalExists(ctx context.Context, animalID int64) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Table("animals").Where("id = ?", animalID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a record. The animal foreign key turns a dangling reference into ErrAnimalNotFound.
func (r *Repository) Create(ctx context.Context, record *domain.Record) (*projection.Projection[*domain.Record], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.New("medical record is nil")
	}
	row := toRow(record)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ports.ErrAnimalNotFound
		}
		return nil, err
	}
	return row.toProjection(), nil
}

func (r *Repository) Update(ctx context.Context, record *domain.Record) (*projection.Projection[*domain.Record], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.New("medical record is nil")
	}
	row := toRow(record)
	result := r.db.WithContext(ctx).
		Model(&medicalRecord{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"type":         row.Type,
			"performed_at": row.PerformedAt,
			"cost":         row.Cost,
			"description":  row.Description,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, row.ID)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.Record], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var row medicalRecord
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return row.toProjection(), nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&medicalRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter, page query.Request) ([]*projection.Projection[*domain.Record], int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&medicalRecord{}).Scopes(filterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	column, ok := ports.SortFields[page.Sort.Field]
	if !ok {
		column = "performed_at"
	}
	var rows []medicalRecord
	if err := r.db.WithContext(ctx).
		Scopes(filterScope(filter)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: page.Sort.Descending()}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: page.Sort.Descending()}).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toProjections(rows), total, nil
}

func (r *Repository) Recent(ctx context.Context, animalID int64, limit int) ([]*projection.Projection[*domain.Record], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var rows []medicalRecord
	if err := r.db.WithContext(ctx).
		Where("animal_id = ?", animalID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "performed_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProjections(rows), nil
}

func filterScope(f ports.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.AnimalID != nil {
			db = db.Where("animal_id = ?", *f.AnimalID)
		}
		if f.Type != nil {
			db = db.Where("type = ?", string(*f.Type))
		}
		if f.PerformedFrom != nil {
			db = db.Where("performed_at >= ?", *f.PerformedFrom)
		}
		if f.PerformedTo != nil {
			db = db.Where("performed_at <= ?", *f.PerformedTo)
		}
		return db
	}
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres medical record repository not configured")
	}
	return nil
}

func toRow(rec *domain.Record) medicalRecord {
	return medicalRecord{
		ID:          rec.ID,
		AnimalID:    rec.AnimalID,
		Type:        string(rec.Type),
		PerformedAt: rec.PerformedAt,
		Cost:        rec.Cost,
		Description: rec.Description,
	}
}

func toProjections(rows []medicalRecord) []*projection.Projection[*domain.Record] {
	list := make([]*projection.Projection[*domain.Record], 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toProjection())
	}
	return list
}

func (r medicalRecord) toProjection() *projection.Projection[*domain.Record] {
	return &projection.Projection[*domain.Record]{
		Entity: &domain.Record{
			ID:          r.ID,
			AnimalID:    r.AnimalID,
			Type:        domain.Type(r.Type),
			PerformedAt: r.PerformedAt.UTC(),
			Cost:        r.Cost,
			Description: r.Description,
		},
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}
