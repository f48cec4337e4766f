package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/shelter-api/internal/domains/volunteers/domain"
	"github.com/Apurer/shelter-api/internal/domains/volunteers/ports"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists volunteers in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type volunteerRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;size:50"`
	Phone     string    `gorm:"column:phone;size:20"`
	Email     string    `gorm:"column:email;size:100"`
	Note      string    `gorm:"column:note;size:255"`
	Status    string    `gorm:"column:status;size:16"`
	JoinedAt  time.Time `gorm:"column:joined_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (volunteerRecord) TableName() string { return "volunteers" }

func (r *Repository) Create(ctx context.Context, volunteer *domain.Volunteer) (*projection.Projection[*domain.Volunteer], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if volunteer == nil {
		return nil, errors.New("volunteer is nil")
	}
	record := toRecord(volunteer)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toProjection(), nil
}

// Update writes the profile columns only; status belongs to UpdateStatus.
func (r *Repository) Update(ctx context.Context, volunteer *domain.Volunteer) (*projection.Projection[*domain.Volunteer], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if volunteer == nil {
		return nil, errors.New("volunteer is nil")
	}
	record := toRecord(volunteer)
	result := r.db.WithContext(ctx).
		Model(&volunteerRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"name":       record.Name,
			"phone":      record.Phone,
			"email":      record.Email,
			"note":       record.Note,
			"joined_at":  record.JoinedAt,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, record.ID)
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, expected, next domain.Status) (*projection.Projection[*domain.Volunteer], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).
		Model(&volunteerRecord{}).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(map[string]any{
			"status":     string(next),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ports.ErrStatusChanged
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.Volunteer], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record volunteerRecord
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
	result := r.db.WithContext(ctx).Delete(&volunteerRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter, page query.Request) ([]*projection.Projection[*domain.Volunteer], int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&volunteerRecord{}).Scopes(filterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	column, ok := ports.SortFields[page.Sort.Field]
	if !ok {
		column = "created_at"
	}
	var records []volunteerRecord
	if err := r.db.WithContext(ctx).
		Scopes(filterScope(filter)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: page.Sort.Descending()}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: page.Sort.Descending()}).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	list := make([]*projection.Projection[*domain.Volunteer], 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list, total, nil
}

func (r *Repository) CountByStatus(ctx context.Context) ([]ports.StatusCount, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&volunteerRecord{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ports.StatusCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.StatusCount{Status: domain.Status(row.Status), Count: row.Count})
	}
	return out, nil
}

func filterScope(f ports.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != nil {
			db = db.Where("status = ?", string(*f.Status))
		}
		if f.Keyword != nil {
			pattern := "%" + likeEscaper.Replace(*f.Keyword) + "%"
			db = db.Where("(name ILIKE ? OR phone ILIKE ? OR email ILIKE ?)", pattern, pattern, pattern)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres volunteer repository not configured")
	}
	return nil
}

func toRecord(v *domain.Volunteer) volunteerRecord {
	return volunteerRecord{
		ID:       v.ID,
		Name:     v.Name,
		Phone:    v.Phone,
		Email:    v.Email,
		Note:     v.Note,
		Status:   string(v.Status),
		JoinedAt: v.JoinedAt,
	}
}

func (r volunteerRecord) toProjection() *projection.Projection[*domain.Volunteer] {
	return &projection.Projection[*domain.Volunteer]{
		Entity: &domain.Volunteer{
			ID:       r.ID,
			Name:     r.Name,
			Phone:    r.Phone,
			Email:    r.Email,
			Note:     r.Note,
			Status:   domain.Status(r.Status),
			JoinedAt: r.JoinedAt.UTC(),
		},
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}
