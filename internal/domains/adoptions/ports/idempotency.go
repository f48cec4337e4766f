package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict indicates the same key was used with a different payload.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// ErrIdempotencyInFlight indicates another request holds the key and has not finished yet.
var ErrIdempotencyInFlight = errors.New("idempotency key in flight")

// IdempotencyRecord associates a client-supplied key with the adoption it created.
// AdoptionID is zero while the owning request is still running.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	AdoptionID  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Pending reports whether the key is reserved but not yet bound to an adoption.
func (r IdempotencyRecord) Pending() bool { return r.AdoptionID == 0 }

// IdempotencyStore persists idempotency keys so retried create requests can be replayed safely.
// A create reserves its key before inserting the adoption, so at most one request per key ever inserts.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Reserve claims key for requestHash. It returns nil when the caller now owns the key and the stored
	// record otherwise. A pending reservation with the same hash that was last touched before staleBefore
	// is taken over, so a crashed request does not block the key forever.
	Reserve(ctx context.Context, key, requestHash string, staleBefore time.Time) (*IdempotencyRecord, error)
	// Complete binds the caller's pending reservation to the adoption it created.
	Complete(ctx context.Context, key string, adoptionID int64) error
	// Release drops a pending reservation so the key can be retried. Completed keys are left alone.
	Release(ctx context.Context, key string) error
}
