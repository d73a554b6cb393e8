package payment

import "context"

// MonthStore answers paid-month membership; *Repository implements it.
type MonthStore interface {
	HasPaidMonth(ctx context.Context, studentID string, month int) (bool, error)
}

// Service exposes the read-side cross-reference the check-in pipeline
// consults. Pure read, no side effects.
type Service struct {
	store MonthStore
	cycle int
}

// NewService wires the cross-reference over a month store and the lesson
// cycle length.
func NewService(store MonthStore, cycle int) *Service {
	return &Service{store: store, cycle: cycle}
}

// HasPaidForLesson reports whether the month covering rawOrdinal has a
// paid-month entry for the student. Absent payment data yields false.
func (s *Service) HasPaidForLesson(ctx context.Context, studentID string, rawOrdinal int) (bool, error) {
	return s.store.HasPaidMonth(ctx, studentID, MonthForLesson(rawOrdinal, s.cycle))
}
