package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Apurer/shelter-api/internal/shared/failure"
)

// Status is the lifecycle state of an adoption.
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusApproved  Status = "APPROVED"
	StatusConfirmed Status = "CONFIRMED"
	StatusCanceled  Status = "CANCELED"
)

// Valid reports whether s is one of the four lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusApproved, StatusConfirmed, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusCanceled
}

const (
	MaxApplicantNameLength  = 50
	MaxApplicantPhoneLength = 20
	MaxCancelReasonLength   = 255
)

var (
	ErrInvalidAnimalID       = errors.New("animalId must be a positive integer")
	ErrApplicantNameRequired = errors.New("applicantName is required")
	ErrAdoptedAtRequired     = errors.New("adoptedAt is required")
	ErrTooLong               = errors.New("value is too long")
)

// Adoption tracks one applicant's request to adopt one animal.
type Adoption struct {
	ID             int64
	AnimalID       int64
	ApplicantName  string
	ApplicantPhone string
	Status         Status
	RequestedAt    time.Time
	ApprovedAt     *time.Time
	AdoptedAt      *time.Time
	CanceledAt     *time.Time
	CancelReason   string
}

// NewAdoption validates the request and returns it in REQUESTED state.
func NewAdoption(animalID int64, applicantName, applicantPhone string, now time.Time) (*Adoption, error) {
	var errs []error
	if animalID <= 0 {
		errs = append(errs, failure.Field("animalId", ErrInvalidAnimalID))
	}
	applicantName = strings.TrimSpace(applicantName)
	switch {
	case applicantName == "":
		errs = append(errs, failure.Field("applicantName", ErrApplicantNameRequired))
	case utf8.RuneCountInString(applicantName) > MaxApplicantNameLength:
		errs = append(errs, failure.Field("applicantName", ErrTooLong))
	}
	applicantPhone = strings.TrimSpace(applicantPhone)
	if utf8.RuneCountInString(applicantPhone) > MaxApplicantPhoneLength {
		errs = append(errs, failure.Field("applicantPhone", ErrTooLong))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &Adoption{
		AnimalID:       animalID,
		ApplicantName:  applicantName,
		ApplicantPhone: applicantPhone,
		Status:         StatusRequested,
		RequestedAt:    now.UTC(),
	}, nil
}

// Approve moves REQUESTED to APPROVED and stamps approvedAt.
func (a *Adoption) Approve(now time.Time) error {
	next, err := Next(a.Status, ActionApprove)
	if err != nil {
		return err
	}
	at := now.UTC()
	a.Status = next
	a.ApprovedAt = &at
	return nil
}

// Confirm moves APPROVED to CONFIRMED with a caller supplied adoption time, which may lie in the past.
func (a *Adoption) Confirm(adoptedAt time.Time) error {
	if adoptedAt.IsZero() {
		return failure.Field("adoptedAt", ErrAdoptedAtRequired)
	}
	next, err := Next(a.Status, ActionConfirm)
	if err != nil {
		return err
	}
	at := adoptedAt.UTC()
	a.Status = next
	a.AdoptedAt = &at
	return nil
}

// Cancel moves REQUESTED or APPROVED to CANCELED.
func (a *Adoption) Cancel(reason string, now time.Time) error {
	if utf8.RuneCountInString(reason) > MaxCancelReasonLength {
		return failure.Field("cancelReason", ErrTooLong)
	}
	next, err := Next(a.Status, ActionCancel)
	if err != nil {
		return err
	}
	at := now.UTC()
	a.Status = next
	a.CanceledAt = &at
	a.CancelReason = reason
	return nil
}

// Clone returns a deep copy.
func (a *Adoption) Clone() *Adoption {
	if a == nil {
		return nil
	}
	clone := *a
	clone.ApprovedAt = cloneTime(a.ApprovedAt)
	clone.AdoptedAt = cloneTime(a.AdoptedAt)
	clone.CanceledAt = cloneTime(a.CanceledAt)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
