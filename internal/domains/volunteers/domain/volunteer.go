package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Apurer/shelter-api/internal/shared/failure"
)

// Status is the standing of a volunteer with the shelter.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusSuspended Status = "SUSPENDED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusSuspended:
		return true
	}
	return false
}

const (
	MaxNameLength  = 50
	MaxPhoneLength = 20
	MaxEmailLength = 100
	MaxNoteLength  = 255
)

var (
	ErrNameRequired     = errors.New("name is required")
	ErrJoinedAtRequired = errors.New("joinedAt is required")
	ErrTooLong          = errors.New("value is too long")
)

// Volunteer is a person registered to help at the shelter.
// New volunteers start PENDING; Status only moves through Apply.
type Volunteer struct {
	ID       int64
	Name     string
	Phone    string
	Email    string
	Note     string
	Status   Status
	JoinedAt time.Time
}

// NewVolunteer validates and constructs a pending volunteer.
func NewVolunteer(name, phone, email, note string, joinedAt time.Time) (*Volunteer, error) {
	v := &Volunteer{Status: StatusPending}
	err := errors.Join(
		v.ChangeName(name),
		v.ChangePhone(phone),
		v.ChangeEmail(email),
		v.ChangeNote(note),
		v.ChangeJoinedAt(joinedAt),
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Volunteer) ChangeName(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return failure.Field("name", ErrNameRequired)
	case utf8.RuneCountInString(name) > MaxNameLength:
		return failure.Field("name", ErrTooLong)
	}
	v.Name = name
	return nil
}

func (v *Volunteer) ChangePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if utf8.RuneCountInString(phone) > MaxPhoneLength {
		return failure.Field("phone", ErrTooLong)
	}
	v.Phone = phone
	return nil
}

func (v *Volunteer) ChangeEmail(email string) error {
	email = strings.TrimSpace(email)
	if utf8.RuneCountInString(email) > MaxEmailLength {
		return failure.Field("email", ErrTooLong)
	}
	v.Email = email
	return nil
}

func (v *Volunteer) ChangeNote(note string) error {
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return failure.Field("note", ErrTooLong)
	}
	v.Note = note
	return nil
}

func (v *Volunteer) ChangeJoinedAt(at time.Time) error {
	if at.IsZero() {
		return failure.Field("joinedAt", ErrJoinedAtRequired)
	}
	v.JoinedAt = at.UTC()
	return nil
}

// Apply moves the volunteer along the transition table.
func (v *Volunteer) Apply(action Action) error {
	next, err := Next(v.Status, action)
	if err != nil {
		return err
	}
	v.Status = next
	return nil
}

func (v *Volunteer) Clone() *Volunteer {
	if v == nil {
		return nil
	}
	clone := *v
	return &clone
}
