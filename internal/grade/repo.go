package grade

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrGradeNotFound is returned when a grade id matches no row.
var ErrGradeNotFound = errors.New("grade: not found")

// Repository persists grades in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a grade, deriving the performance indicator from the
// score.
func (r *Repository) Insert(ctx context.Context, g Grade) (Grade, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.TotalScore == 0 {
		g.TotalScore = 100
	}
	if g.Lesson < 1 {
		g.Lesson = 1
	}
	if g.Date.IsZero() {
		g.Date = time.Now()
	}
	g.Indicator = IndicatorFor(g.Score, g.TotalScore)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO grades (id, student_id, student_name, exam_name, score, total_score, lesson_number, group_name, performance_indicator, date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, g.ID, g.StudentID, g.StudentName, g.ExamName, g.Score, g.TotalScore, g.Lesson, g.Group, g.Indicator, g.Date)
	if err != nil {
		return Grade{}, err
	}
	return g, nil
}

// Update rewrites an exam result and re-derives the indicator.
func (r *Repository) Update(ctx context.Context, id, examName string, score, total float64, lesson int, group string) error {
	if total == 0 {
		total = 100
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE grades
		SET exam_name = $2, score = $3, total_score = $4, lesson_number = $5, group_name = $6, performance_indicator = $7
		WHERE id = $1
	`, id, examName, score, total, lesson, group, IndicatorFor(score, total))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrGradeNotFound
	}
	return err
}

// Delete removes a grade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM grades WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrGradeNotFound
	}
	return err
}

// List returns grades, optionally for one student, newest first.
func (r *Repository) List(ctx context.Context, studentID string) ([]Grade, error) {
	query := `SELECT id, student_id, student_name, exam_name, score, total_score, lesson_number, group_name, performance_indicator, date FROM grades`
	args := []any{}
	if studentID != "" {
		query += ` WHERE student_id = $1`
		args = append(args, studentID)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Grade
	for rows.Next() {
		var g Grade
		if err := rows.Scan(&g.ID, &g.StudentID, &g.StudentName, &g.ExamName, &g.Score, &g.TotalScore, &g.Lesson, &g.Group, &g.Indicator, &g.Date); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
