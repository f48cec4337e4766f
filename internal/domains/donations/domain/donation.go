package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Apurer/shelter-api/internal/shared/failure"
)

const (
	MaxDonorNameLength    = 50
	MaxDonorContactLength = 50
	MaxNoteLength         = 255
)

var (
	ErrDonorNameRequired = errors.New("donorName is required")
	ErrInvalidAmount     = errors.New("amount must be integer > 0")
	ErrDonatedAtRequired = errors.New("donatedAt is required")
	ErrTooLong           = errors.New("value is too long")
)

// Donation records a single gift to the shelter.
type Donation struct {
	ID            int64
	DonorName     string
	DonorContact  string
	Amount        int64
	DonatedAt     time.Time
	ReceiptIssued bool
	Note          string
}

// NewDonation validates and constructs a donation.
func NewDonation(donorName, donorContact string, amount int64, donatedAt time.Time, receiptIssued bool, note string) (*Donation, error) {
	d := &Donation{ReceiptIssued: receiptIssued}
	err := errors.Join(
		d.ChangeDonor(donorName),
		d.ChangeContact(donorContact),
		d.ChangeAmount(amount),
		d.ChangeDonatedAt(donatedAt),
		d.ChangeNote(note),
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Donation) ChangeDonor(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return failure.Field("donorName", ErrDonorNameRequired)
	case utf8.RuneCountInString(name) > MaxDonorNameLength:
		return failure.Field("donorName", ErrTooLong)
	}
	d.DonorName = name
	return nil
}

func (d *Donation) ChangeContact(contact string) error {
	contact = strings.TrimSpace(contact)
	if utf8.RuneCountInString(contact) > MaxDonorContactLength {
		return failure.Field("donorContact", ErrTooLong)
	}
	d.DonorContact = contact
	return nil
}

func (d *Donation) ChangeAmount(amount int64) error {
	if amount <= 0 {
		return failure.Field("amount", ErrInvalidAmount)
	}
	d.Amount = amount
	return nil
}

func (d *Donation) ChangeDonatedAt(at time.Time) error {
	if at.IsZero() {
		return failure.Field("donatedAt", ErrDonatedAtRequired)
	}
	d.DonatedAt = at.UTC()
	return nil
}

func (d *Donation) ChangeNote(note string) error {
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return failure.Field("note", ErrTooLong)
	}
	d.Note = note
	return nil
}

// IssueReceipt sets the receipt flag.
func (d *Donation) IssueReceipt(issued bool) { d.ReceiptIssued = issued }

func (d *Donation) Clone() *Donation {
	if d == nil {
		return nil
	}
	clone := *d
	return &clone
}
