package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/shelter-api/internal/domains/adoptions/domain"
	"github.com/Apurer/shelter-api/internal/domains/adoptions/ports"
	animaldomain "github.com/Apurer/shelter-api/internal/domains/animals/domain"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.Tx         = (*txStore)(nil)
)

// Repository persists adoptions in PostgreSQL using GORM. Caller manages DB lifecycle and schema.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type adoptionRecord struct {
	ID             int64      `gorm:"primaryKey;column:id"`
	AnimalID       int64      `gorm:"column:animal_id;index"`
	ApplicantName  string     `gorm:"column:applicant_name;size:50"`
	ApplicantPhone string     `gorm:"column:applicant_phone;size:20"`
	Status         string     `gorm:"column:status;type:varchar(16);index"`
	RequestedAt    time.Time  `gorm:"column:requested_at;index"`
	ApprovedAt     *time.Time `gorm:"column:approved_at"`
	AdoptedAt      *time.Time `gorm:"column:adopted_at"`
	CanceledAt     *time.Time `gorm:"column:canceled_at"`
	CancelReason   string     `gorm:"column:cancel_reason;size:255"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (adoptionRecord) TableName() string { return "adoptions" }

type animalRef struct {
	ID     int64  `gorm:"column:id"`
	Status string `gorm:"column:status"`
}

// FindAnimal reads the status of the referenced animal.
func (r *Repository) FindAnimal(ctx context.Context, animalID int64) (*ports.AnimalRef, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var ref animalRef
	if err := r.db.WithContext(ctx).Table("animals").Select("id", "status").Where("id = ?", animalID).Take(&ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrAnimalNotFound
		}
		return nil, err
	}
	return &ports.AnimalRef{ID: ref.ID, Status: animaldomain.Status(ref.Status)}, nil
}

// FindByID fetches an adoption by identifier.
func (r *Repository) FindByID(ctx context.Context, id int64) (*projection.Projection[*domain.Adoption], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return findByID(ctx, r.db, id)
}

// Create inserts a new adoption. A dangling animal reference surfaces as ErrAnimalNotFound.
func (r *Repository) Create(ctx context.Context, adoption *domain.Adoption) (*projection.Projection[*domain.Adoption], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if adoption == nil {
		return nil, errors.New("adoption is nil")
	}
	record := toRecord(adoption)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ports.ErrAnimalNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// Update performs a conditional write keyed on the expected status.
func (r *Repository) Update(ctx context.Context, adoption *domain.Adoption, expected domain.Status) (*projection.Projection[*domain.Adoption], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return updateAdoption(ctx, r.db, adoption, expected)
}

// RunInTx runs fn inside a database transaction. Returning an error from fn rolls everything back.
func (r *Repository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &txStore{db: tx})
	})
}

// List returns a filtered, ordered page plus the total match count.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter, page query.Request) ([]*projection.Projection[*domain.Adoption], int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&adoptionRecord{}).Scopes(filterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	column, ok := ports.SortFields[page.Sort.Field]
	if !ok {
		column = "requested_at"
	}
	var records []adoptionRecord
	if err := r.db.WithContext(ctx).
		Scopes(filterScope(filter)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: page.Sort.Descending()}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: page.Sort.Descending()}).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	list := make([]*projection.Projection[*domain.Adoption], 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list, total, nil
}

// txStore is the transactional handle passed to RunInTx callbacks.
type txStore struct {
	db *gorm.DB
}

func (t *txStore) UpdateAdoption(ctx context.Context, adoption *domain.Adoption, expected domain.Status) (*projection.Projection[*domain.Adoption], error) {
	return updateAdoption(ctx, t.db, adoption, expected)
}

// MarkAnimalAdopted locks the animal row so concurrent confirmations for the same animal serialize here.
func (t *txStore) MarkAnimalAdopted(ctx context.Context, animalID int64) (animaldomain.Status, error) {
	var ref animalRef
	err := t.db.WithContext(ctx).
		Table("animals").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "status").
		Where("id = ?", animalID).
		Take(&ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ports.ErrAnimalNotFound
		}
		return "", err
	}
	current := animaldomain.Status(ref.Status)
	if !current.Adoptable() {
		return current, ports.ErrAnimalUnavailable
	}
	if err := t.db.WithContext(ctx).
		Table("animals").
		Where("id = ?", animalID).
		Updates(map[string]any{
			"status":     string(animaldomain.StatusAdopted),
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
		return current, err
	}
	return current, nil
}

func findByID(ctx context.Context, db *gorm.DB, id int64) (*projection.Projection[*domain.Adoption], error) {
	var record adoptionRecord
	if err := db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func updateAdoption(ctx context.Context, db *gorm.DB, adoption *domain.Adoption, expected domain.Status) (*projection.Projection[*domain.Adoption], error) {
	if adoption == nil {
		return nil, errors.New("adoption is nil")
	}
	record := toRecord(adoption)
	result := db.WithContext(ctx).
		Model(&adoptionRecord{}).
		Where("id = ? AND status = ?", record.ID, string(expected)).
		Updates(map[string]any{
			"status":        record.Status,
			"approved_at":   record.ApprovedAt,
			"adopted_at":    record.AdoptedAt,
			"canceled_at":   record.CanceledAt,
			"cancel_reason": record.CancelReason,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := findByID(ctx, db, record.ID); err != nil {
			return nil, err
		}
		return nil, ports.ErrStatusChanged
	}
	return findByID(ctx, db, record.ID)
}

func filterScope(f ports.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != nil {
			db = db.Where("status = ?", string(*f.Status))
		}
		if f.AnimalID != nil {
			db = db.Where("animal_id = ?", *f.AnimalID)
		}
		if f.RequestedFrom != nil {
			db = db.Where("requested_at >= ?", *f.RequestedFrom)
		}
		if f.RequestedTo != nil {
			db = db.Where("requested_at <= ?", *f.RequestedTo)
		}
		if f.Keyword != nil {
			db = db.Where("applicant_name ILIKE ?", "%"+escapeLike(*f.Keyword)+"%")
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres adoption repository not configured")
	}
	return nil
}

func toRecord(a *domain.Adoption) adoptionRecord {
	return adoptionRecord{
		ID:             a.ID,
		AnimalID:       a.AnimalID,
		ApplicantName:  a.ApplicantName,
		ApplicantPhone: a.ApplicantPhone,
		Status:         string(a.Status),
		RequestedAt:    a.RequestedAt,
		ApprovedAt:     a.ApprovedAt,
		AdoptedAt:      a.AdoptedAt,
		CanceledAt:     a.CanceledAt,
		CancelReason:   a.CancelReason,
	}
}

func (r adoptionRecord) toProjection() *projection.Projection[*domain.Adoption] {
	return &projection.Projection[*domain.Adoption]{
		Entity: &domain.Adoption{
			ID:             r.ID,
			AnimalID:       r.AnimalID,
			ApplicantName:  r.ApplicantName,
			ApplicantPhone: r.ApplicantPhone,
			Status:         domain.Status(r.Status),
			RequestedAt:    r.RequestedAt.UTC(),
			ApprovedAt:     utc(r.ApprovedAt),
			AdoptedAt:      utc(r.AdoptedAt),
			CanceledAt:     utc(r.CanceledAt),
			CancelReason:   r.CancelReason,
		},
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
