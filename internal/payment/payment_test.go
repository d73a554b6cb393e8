package payment

import (
	"context"
	"testing"
)

func TestMonthForLesson(t *testing.T) {
	tests := []struct {
		name    string
		ordinal int
		cycle   int
		want    int
	}{
		{"first lesson", 1, 8, 1},
		{"last of month one", 8, 8, 1},
		{"first of month two", 9, 8, 2},
		{"last of month two", 16, 8, 2},
		{"deep ordinal", 25, 8, 4},
		{"short cycle", 5, 4, 2},
		{"zero cycle falls back to default", 9, 0, 2},
		{"ordinal below one clamps to month one", 0, 8, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthForLesson(tt.ordinal, tt.cycle); got != tt.want {
				t.Errorf("MonthForLesson(%d, %d) = %d, want %d", tt.ordinal, tt.cycle, got, tt.want)
			}
		})
	}
}

type fakeMonthStore struct {
	paid map[string][]int
}

func (f *fakeMonthStore) HasPaidMonth(ctx context.Context, studentID string, month int) (bool, error) {
	for _, m := range f.paid[studentID] {
		if m == month {
			return true, nil
		}
	}
	return false, nil
}

func TestHasPaidForLesson(t *testing.T) {
	store := &fakeMonthStore{paid: map[string][]int{"stu-1": {1}}}
	svc := NewService(store, 8)

	tests := []struct {
		name    string
		student string
		ordinal int
		want    bool
	}{
		{"covered ordinal", "stu-1", 8, true},
		{"next month unpaid", "stu-1", 9, false},
		{"no payment data at all", "stu-2", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.HasPaidForLesson(context.Background(), tt.student, tt.ordinal)
			if err != nil {
				t.Fatalf("HasPaidForLesson: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasPaidForLesson(%s, %d) = %v, want %v", tt.student, tt.ordinal, got, tt.want)
			}
		})
	}
}
