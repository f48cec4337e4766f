package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/shelter-api/internal/domains/animals/domain"
	"github.com/Apurer/shelter-api/internal/domains/animals/ports"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists animals in PostgreSQL using GORM. Caller manages DB lifecycle and schema.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type animalRecord struct {
	ID         int64     `gorm:"primaryKey;column:id"`
	Name       string    `gorm:"column:name;size:50"`
	Species    string    `gorm:"column:species;size:30;index"`
	Breed      string    `gorm:"column:breed;size:50"`
	Sex        string    `gorm:"column:sex;type:varchar(16)"`
	AgeYears   *int      `gorm:"column:age_years"`
	IntakeDate time.Time `gorm:"column:intake_date;index"`
	Neutered   bool      `gorm:"column:neutered"`
	Status     string    `gorm:"column:status;type:varchar(32);index"`
	Note       string    `gorm:"column:note;size:255"`
	CreatedAt  time.Time `gorm:"column:created_at;index"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (animalRecord) TableName() string { return "animals" }

// Create inserts a new animal and lets the database assign its ID.
func (r *Repository) Create(ctx context.Context, animal *domain.Animal) (*projection.Projection[*domain.Animal], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if animal == nil {
		return nil, errors.New("animal is nil")
	}
	record := toRecord(animal)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toProjection(), nil
}

// Update writes every column if the stored status still equals expected.
func (r *Repository) Update(ctx context.Context, animal *domain.Animal, expected domain.Status) (*projection.Projection[*domain.Animal], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if animal == nil {
		return nil, errors.New("animal is nil")
	}
	record := toRecord(animal)
	result := r.db.WithContext(ctx).
		Model(&animalRecord{}).
		Where("id = ? AND status = ?", record.ID, string(expected)).
		Updates(map[string]any{
			"name":        record.Name,
			"species":     record.Species,
			"breed":       record.Breed,
			"sex":         record.Sex,
			"age_years":   record.AgeYears,
			"intake_date": record.IntakeDate,
			"neutered":    record.Neutered,
			"status":      record.Status,
			"note":        record.Note,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, record.ID); err != nil {
			return nil, err
		}
		return nil, ports.ErrStatusChanged
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches an animal by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.Animal], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record animalRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// Delete removes an animal. The adoption and medical record foreign keys reject deleting referenced rows.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&animalRecord{}, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return ports.ErrReferenced
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns a filtered, ordered page plus the total match count.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter, page query.Request) ([]*projection.Projection[*domain.Animal], int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&animalRecord{}).Scopes(filterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	column, ok := ports.SortFields[page.Sort.Field]
	if !ok {
		column = "created_at"
	}
	var records []animalRecord
	if err := r.db.WithContext(ctx).
		Scopes(filterScope(filter)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: page.Sort.Descending()}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: page.Sort.Descending()}).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	list := make([]*projection.Projection[*domain.Animal], 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list, total, nil
}

func filterScope(f ports.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Species != nil {
			db = db.Where("species = ?", *f.Species)
		}
		if f.Neutered != nil {
			db = db.Where("neutered = ?", *f.Neutered)
		}
		if f.Status != nil {
			db = db.Where("status = ?", string(*f.Status))
		}
		if f.IntakeFrom != nil {
			db = db.Where("intake_date >= ?", *f.IntakeFrom)
		}
		if f.IntakeTo != nil {
			db = db.Where("intake_date <= ?", *f.IntakeTo)
		}
		if f.Keyword != nil {
			like := "%" + escapeLike(*f.Keyword) + "%"
			db = db.Where("(name ILIKE ? OR breed ILIKE ?)", like, like)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres animal repository not configured")
	}
	return nil
}

func toRecord(a *domain.Animal) animalRecord {
	return animalRecord{
		ID:         a.ID,
		Name:       a.Name,
		Species:    a.Species,
		Breed:      a.Breed,
		Sex:        string(a.Sex),
		AgeYears:   a.AgeYears,
		IntakeDate: a.IntakeDate,
		Neutered:   a.Neutered,
		Status:     string(a.Status),
		Note:       a.Note,
	}
}

func (r animalRecord) toProjection() *projection.Projection[*domain.Animal] {
	return &projection.Projection[*domain.Animal]{
		Entity: &domain.Animal{
			ID:         r.ID,
			Name:       r.Name,
			Species:    r.Species,
			Breed:      r.Breed,
			Sex:        domain.Sex(r.Sex),
			AgeYears:   r.AgeYears,
			IntakeDate: r.IntakeDate.UTC(),
			Neutered:   r.Neutered,
			Status:     domain.Status(r.Status),
			Note:       r.Note,
		},
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}
