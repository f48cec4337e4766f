package migrations

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Run applies the schema for every bounded context. Animals must exist before adoptions and medical records reference them.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&animalRecord{},
		&adoptionRecord{},
		&idempotencyRecord{},
		&donationRecord{},
		&volunteerRecord{},
		&medicalRecord{},
		&staffUserRecord{},
		&refreshTokenRecord{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	// Backstop for the one-confirmed-adoption-per-animal rule.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_adoptions_confirmed_animal
		ON adoptions (animal_id) WHERE status = 'CONFIRMED'`).Error; err != nil {
		return fmt.Errorf("create confirmed adoption index: %w", err)
	}
	return nil
}

// Animal schema mirrors the animals Postgres adapter.
type animalRecord struct {
	ID         int64     `gorm:"primaryKey;column:id"`
	Name       string    `gorm:"column:name;size:50"`
	Species    string    `gorm:"column:species;size:30;not null;index"`
	Breed      string    `gorm:"column:breed;size:50"`
	Sex        string    `gorm:"column:sex;type:varchar(16);not null;default:UNKNOWN"`
	AgeYears   *int      `gorm:"column:age_years"`
	IntakeDate time.Time `gorm:"column:intake_date;not null;index"`
	Neutered   bool      `gorm:"column:neutered;not null;default:false"`
	Status     string    `gorm:"column:status;type:varchar(32);not null;default:SHELTERED;index"`
	Note       string    `gorm:"column:note;size:255"`
	CreatedAt  time.Time `gorm:"column:created_at;index"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (animalRecord) TableName() string { return "animals" }

// Adoption schema mirrors the adoptions Postgres adapter. The animal reference blocks deletes.
type adoptionRecord struct {
	ID             int64        `gorm:"primaryKey;column:id"`
	AnimalID       int64        `gorm:"column:animal_id;not null;index"`
	Animal         animalRecord `gorm:"foreignKey:AnimalID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	ApplicantName  string       `gorm:"column:applicant_name;size:50;not null"`
	ApplicantPhone string       `gorm:"column:applicant_phone;size:20"`
	Status         string       `gorm:"column:status;type:varchar(16);not null;index"`
	RequestedAt    time.Time    `gorm:"column:requested_at;not null;index"`
	ApprovedAt     *time.Time   `gorm:"column:approved_at"`
	AdoptedAt      *time.Time   `gorm:"column:adopted_at"`
	CanceledAt     *time.Time   `gorm:"column:canceled_at"`
	CancelReason   string       `gorm:"column:cancel_reason;size:255"`
	CreatedAt      time.Time    `gorm:"column:created_at;index"`
	UpdatedAt      time.Time    `gorm:"column:updated_at"`
}

func (adoptionRecord) TableName() string { return "adoptions" }

// Idempotency schema mirrors the adoption idempotency store.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128;not null"`
	AdoptionID  int64     `gorm:"column:adoption_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "adoption_idempotency_keys" }

// Donation schema mirrors the donations Postgres adapter.
type donationRecord struct {
	ID            int64     `gorm:"primaryKey;column:id"`
	DonorName     string    `gorm:"column:donor_name;size:50;not null"`
	DonorContact  string    `gorm:"column:donor_contact;size:50"`
	Amount        int64     `gorm:"column:amount;not null;check:chk_donations_amount,amount > 0"`
	DonatedAt     time.Time `gorm:"column:donated_at;not null;index"`
	ReceiptIssued bool      `gorm:"column:receipt_issued;not null;default:false"`
	Note          string    `gorm:"column:note;size:255"`
	CreatedAt     time.Time `gorm:"column:created_at;index"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (donationRecord) TableName() string { return "donations" }

// Volunteer schema mirrors the volunteers Postgres adapter.
type volunteerRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;size:50;not null"`
	Phone     string    `gorm:"column:phone;size:20"`
	Email     string    `gorm:"column:email;size:100"`
	Note      string    `gorm:"column:note;size:255"`
	Status    string    `gorm:"column:status;type:varchar(16);not null;default:PENDING;index"`
	JoinedAt  time.Time `gorm:"column:joined_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (volunteerRecord) TableName() string { return "volunteers" }

// Medical record schema mirrors the medical Postgres adapter. Like adoptions, it pins the animal.
type medicalRecord struct {
	ID          int64        `gorm:"primaryKey;column:id"`
	AnimalID    int64        `gorm:"column:animal_id;not null;index:idx_medical_records_animal_performed,priority:1"`
	Animal      animalRecord `gorm:"foreignKey:AnimalID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Type        string       `gorm:"column:type;type:varchar(16);not null;index"`
	PerformedAt time.Time    `gorm:"column:performed_at;not null;index:idx_medical_records_animal_performed,priority:2"`
	Cost        *int64       `gorm:"column:cost;check:chk_medical_records_cost,cost >= 0 AND cost <= 100000000"`
	Description string       `gorm:"column:description;size:255"`
	CreatedAt   time.Time    `gorm:"column:created_at;index"`
	UpdatedAt   time.Time    `gorm:"column:updated_at"`
}

func (medicalRecord) TableName() string { return "medical_records" }

// Staff user schema mirrors the auth Postgres adapter.
type staffUserRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	Email        string    `gorm:"column:email;size:255;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;size:100;not null"`
	Role         string    `gorm:"column:role;size:10;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (staffUserRecord) TableName() string { return "staff_users" }

// Refresh token schema mirrors the refresh token store.
type refreshTokenRecord struct {
	UserID    int64     `gorm:"primaryKey;column:user_id;autoIncrement:false"`
	JTI       string    `gorm:"primaryKey;column:jti;size:64"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (refreshTokenRecord) TableName() string { return "refresh_tokens" }
