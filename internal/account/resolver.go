package account

import (
	"context"
	"errors"
)

// Lookup tiers reported in Resolution.From.
const (
	TierStore    = "store"
	TierSnapshot = "snapshot"
)

// CodeLookup is the primary lookup surface; *Repository implements it.
type CodeLookup interface {
	GetStudentByCode(ctx context.Context, code string) (Student, error)
}

// Resolution is a resolved student plus the tier that answered. A
// snapshot answer is best-effort and may be stale relative to the store.
type Resolution struct {
	Student Student
	From    string
}

// Resolver performs two-tier code lookup: the store first, the snapshot
// only when the store call itself fails. A definitive "no such code" from
// the store is final and does not consult the snapshot.
type Resolver struct {
	primary  CodeLookup
	fallback *Snapshot
}

// NewResolver builds a resolver over the primary store and the roster
// snapshot.
func NewResolver(primary CodeLookup, fallback *Snapshot) *Resolver {
	return &Resolver{primary: primary, fallback: fallback}
}

// Resolve maps a check-in code to a student.
func (r *Resolver) Resolve(ctx context.Context, code string) (Resolution, error) {
	st, err := r.primary.GetStudentByCode(ctx, code)
	if err == nil {
		return Resolution{Student: st, From: TierStore}, nil
	}
	if errors.Is(err, ErrNotFound) {
		return Resolution{}, ErrStudentNotFound
	}

	// The store is unreachable; degrade to the snapshot.
	if r.fallback != nil {
		if st, ok := r.fallback.Lookup(code); ok {
			return Resolution{Student: st, From: TierSnapshot}, nil
		}
	}
	return Resolution{}, ErrStudentNotFound
}
