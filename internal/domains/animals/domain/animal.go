package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Apurer/shelter-api/internal/shared/failure"
)

// Status is the shelter status of an animal.
type Status string

const (
	StatusSheltered  Status = "SHELTERED"
	StatusTempFoster Status = "TEMP_FOSTER"
	StatusAdopted    Status = "ADOPTED"
	StatusDeceased   Status = "DECEASED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSheltered, StatusTempFoster, StatusAdopted, StatusDeceased:
		return true
	}
	return false
}

// Adoptable reports whether an animal in this status can receive adoption requests.
func (s Status) Adoptable() bool {
	return s == StatusSheltered || s == StatusTempFoster
}

// Sex of the animal.
type Sex string

const (
	SexMale    Sex = "M"
	SexFemale  Sex = "F"
	SexUnknown Sex = "UNKNOWN"
)

// Valid reports whether s is a known value.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale || s == SexUnknown
}

const (
	MaxNameLength    = 50
	MaxSpeciesLength = 30
	MaxBreedLength   = 50
	MaxNoteLength    = 255
	MaxAgeYears      = 30
)

var (
	ErrSpeciesRequired    = errors.New("species is required")
	ErrIntakeDateRequired = errors.New("intakeDate is required")
	ErrInvalidSex         = errors.New("sex must be M|F|UNKNOWN")
	ErrInvalidStatus      = errors.New("invalid status enum")
	ErrInvalidAge         = errors.New("ageYears must be 0~30")
	ErrTooLong            = errors.New("value is too long")
	ErrAdoptedStatus      = errors.New("status ADOPTED is set only by confirming an adoption")
)

// Animal is an animal in the shelter's care.
type Animal struct {
	ID         int64
	Name       string
	Species    string
	Breed      string
	Sex        Sex
	AgeYears   *int
	IntakeDate time.Time
	Neutered   bool
	Status     Status
	Note       string
}

// Attributes carries the values used to register a new animal.
type Attributes struct {
	Name       string
	Species    string
	Breed      string
	Sex        Sex
	AgeYears   *int
	IntakeDate time.Time
	Neutered   bool
	Status     Status
	Note       string
}

// NewAnimal validates every attribute and reports all violations at once.
// Any valid status is accepted at intake, including ADOPTED for historical records.
func NewAnimal(attrs Attributes) (*Animal, error) {
	a := &Animal{Sex: SexUnknown, Status: StatusSheltered, Neutered: attrs.Neutered}
	var errs []error
	errs = append(errs,
		a.Rename(attrs.Name),
		a.ChangeSpecies(attrs.Species),
		a.ChangeBreed(attrs.Breed),
		a.ChangeNote(attrs.Note),
		a.ChangeAge(attrs.AgeYears),
		a.ChangeIntakeDate(attrs.IntakeDate),
	)
	if attrs.Sex != "" {
		errs = append(errs, a.ChangeSex(attrs.Sex))
	}
	if attrs.Status != "" {
		if !attrs.Status.Valid() {
			errs = append(errs, failure.Field("status", ErrInvalidStatus))
		} else {
			a.Status = attrs.Status
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return a, nil
}

// Rename sets the optional display name.
func (a *Animal) Rename(name string) error {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxNameLength {
		return failure.Field("name", ErrTooLong)
	}
	a.Name = name
	return nil
}

// ChangeSpecies sets the required species.
func (a *Animal) ChangeSpecies(species string) error {
	species = strings.TrimSpace(species)
	if species == "" {
		return failure.Field("species", ErrSpeciesRequired)
	}
	if utf8.RuneCountInString(species) > MaxSpeciesLength {
		return failure.Field("species", ErrTooLong)
	}
	a.Species = species
	return nil
}

// ChangeBreed sets the optional breed.
func (a *Animal) ChangeBreed(breed string) error {
	breed = strings.TrimSpace(breed)
	if utf8.RuneCountInString(breed) > MaxBreedLength {
		return failure.Field("breed", ErrTooLong)
	}
	a.Breed = breed
	return nil
}

// ChangeNote sets the free-form note.
func (a *Animal) ChangeNote(note string) error {
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return failure.Field("note", ErrTooLong)
	}
	a.Note = note
	return nil
}

// ChangeSex sets a known sex value.
func (a *Animal) ChangeSex(sex Sex) error {
	if !sex.Valid() {
		return failure.Field("sex", ErrInvalidSex)
	}
	a.Sex = sex
	return nil
}

// ChangeAge sets or clears the estimated age.
func (a *Animal) ChangeAge(age *int) error {
	if age == nil {
		a.AgeYears = nil
		return nil
	}
	if *age < 0 || *age > MaxAgeYears {
		return failure.Field("ageYears", ErrInvalidAge)
	}
	v := *age
	a.AgeYears = &v
	return nil
}

// ChangeIntakeDate sets the intake date, which cannot be cleared.
func (a *Animal) ChangeIntakeDate(at time.Time) error {
	if at.IsZero() {
		return failure.Field("intakeDate", ErrIntakeDateRequired)
	}
	a.IntakeDate = at.UTC()
	return nil
}

// SetNeutered records the neuter flag.
func (a *Animal) SetNeutered(neutered bool) {
	a.Neutered = neutered
}

// ChangeStatus applies an administrative status change. Moving into ADOPTED is reserved for adoption confirmation.
func (a *Animal) ChangeStatus(status Status) error {
	if !status.Valid() {
		return failure.Field("status", ErrInvalidStatus)
	}
	if status == StatusAdopted && a.Status != StatusAdopted {
		return failure.Field("status", ErrAdoptedStatus)
	}
	a.Status = status
	return nil
}

// Clone returns a deep copy.
func (a *Animal) Clone() *Animal {
	if a == nil {
		return nil
	}
	clone := *a
	if a.AgeYears != nil {
		age := *a.AgeYears
		clone.AgeYears = &age
	}
	return &clone
}
