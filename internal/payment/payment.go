// Package payment tracks per-student payments as sets of paid month
// blocks. Month m covers raw lesson ordinals (m-1)*cycle+1 .. m*cycle.
package payment

import (
	"time"

	"classtrack/internal/attendance"
)

// Payment is one recorded payment. Student identity fields are
// denormalized from the roster at recording time. Months holds the paid
// month indexes (1-based).
type Payment struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	StudentCode string    `json:"student_code"`
	Group       string    `json:"group"`
	Months      []int     `json:"months"`
	CreatedAt   time.Time `json:"created_at"`
}

// MonthForLesson maps a raw lesson ordinal to the month block that must
// cover it. Ordinals 1..cycle fall in month 1, cycle+1..2*cycle in
// month 2, and so on.
func MonthForLesson(rawOrdinal, cycle int) int {
	if cycle <= 0 {
		cycle = attendance.DefaultCycle
	}
	if rawOrdinal < 1 {
		return 1
	}
	return (rawOrdinal-1)/cycle + 1
}
