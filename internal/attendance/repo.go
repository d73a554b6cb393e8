package attendance

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ErrRecordNotFound is returned when a record id matches no row.
var ErrRecordNotFound = errors.New("attendance: record not found")

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertRecord writes a new record. Every call produces a distinct row;
// there is deliberately no deduplication and no upsert path, corrections
// are modeled as deletes.
func (r *Repository) InsertRecord(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now()
	if rec.Date.IsZero() {
		rec.Date = now
	}
	if rec.Time == "" {
		rec.Time = now.Format("15:04:05")
	}
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance (id, student_id, student_name, date, time, status, lesson_number)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, rec.ID, rec.StudentID, rec.StudentName, rec.Date, rec.Time, rec.Status, rec.LessonNumber)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// CountByStudent returns how many attendances a student has on file, the
// prior-count input to ordinal computation.
func (r *Repository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance WHERE student_id = $1`, studentID).Scan(&n)
	return n, err
}

// ListRecords returns records, optionally filtered to one student, newest
// first.
func (r *Repository) ListRecords(ctx context.Context, studentID string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT id, student_id, student_name, date, time, status, lesson_number, created_at FROM attendance`
	args := []any{}
	if studentID != "" {
		query += ` WHERE student_id = $1`
		args = append(args, studentID)
	}
	query += ` ORDER BY created_at DESC LIMIT $` + itoa(len(args)+1) + ` OFFSET $` + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.StudentName, &rec.Date, &rec.Time, &rec.Status, &rec.LessonNumber, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteRecord removes one record; the student is unaffected.
func (r *Repository) DeleteRecord(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrRecordNotFound
	}
	return err
}

func itoa(i int) string { return strconv.Itoa(i) }
