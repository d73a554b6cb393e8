package account

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("account: not found")

// Repository persists students and parents in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const studentCols = `id, name, phone, password_hash, code, parent_phone, group_name, grade, created_at`

func scanStudent(row interface{ Scan(...any) error }) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.PasswordHash, &s.Code, &s.ParentPhone, &s.Group, &s.Grade, &s.CreatedAt)
	return s, err
}

// InsertStudent writes a new student row and returns it with the
// server-assigned creation time.
func (r *Repository) InsertStudent(ctx context.Context, s Student) (Student, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (id, name, phone, password_hash, code, parent_phone, group_name, grade)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, s.ID, s.Name, s.Phone, s.PasswordHash, s.Code, s.ParentPhone, s.Group, s.Grade)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return Student{}, err
	}
	return s, nil
}

// UpdateStudent rewrites the mutable fields. The code is immutable.
func (r *Repository) UpdateStudent(ctx context.Context, s Student) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET name = $2, phone = $3, password_hash = $4, parent_phone = $5, group_name = $6, grade = $7
		WHERE id = $1
	`, s.ID, s.Name, s.Phone, s.PasswordHash, s.ParentPhone, s.Group, s.Grade)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// DeleteStudent removes a student. Attendance, grades, payments and linked
// parents go with it via ON DELETE CASCADE.
func (r *Repository) DeleteStudent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// GetStudent returns a student by id.
func (r *Repository) GetStudent(ctx context.Context, id string) (Student, error) {
	s, err := scanStudent(r.db.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return s, err
}

// GetStudentByCode resolves the unique check-in code, case-sensitive.
func (r *Repository) GetStudentByCode(ctx context.Context, code string) (Student, error) {
	s, err := scanStudent(r.db.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE code = $1`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return s, err
}

// GetStudentByPhone resolves the login phone.
func (r *Repository) GetStudentByPhone(ctx context.Context, phone string) (Student, error) {
	s, err := scanStudent(r.db.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE phone = $1`, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return s, err
}

// ListStudents returns the full roster ordered by name.
func (r *Repository) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+studentCols+` FROM students ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const parentCols = `id, phone, password_hash, student_code, student_name, created_at`

func scanParent(row interface{ Scan(...any) error }) (Parent, error) {
	var p Parent
	err := row.Scan(&p.ID, &p.Phone, &p.PasswordHash, &p.StudentCode, &p.StudentName, &p.CreatedAt)
	return p, err
}

// InsertParent writes a new parent row.
func (r *Repository) InsertParent(ctx context.Context, p Parent) (Parent, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO parents (id, phone, password_hash, student_code, student_name)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, p.ID, p.Phone, p.PasswordHash, p.StudentCode, p.StudentName)
	if err := row.Scan(&p.CreatedAt); err != nil {
		return Parent{}, err
	}
	return p, nil
}

// UpdateParent rewrites the mutable fields, including the linked student.
func (r *Repository) UpdateParent(ctx context.Context, p Parent) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE parents
		SET phone = $2, password_hash = $3, student_code = $4, student_name = $5
		WHERE id = $1
	`, p.ID, p.Phone, p.PasswordHash, p.StudentCode, p.StudentName)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// DeleteParent removes a parent account.
func (r *Repository) DeleteParent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM parents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// GetParent returns a parent by id.
func (r *Repository) GetParent(ctx context.Context, id string) (Parent, error) {
	p, err := scanParent(r.db.QueryRowContext(ctx, `SELECT `+parentCols+` FROM parents WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Parent{}, ErrNotFound
	}
	return p, err
}

// GetParentByPhone resolves the login phone.
func (r *Repository) GetParentByPhone(ctx context.Context, phone string) (Parent, error) {
	p, err := scanParent(r.db.QueryRowContext(ctx, `SELECT `+parentCols+` FROM parents WHERE phone = $1`, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return Parent{}, ErrNotFound
	}
	return p, err
}

// ListParents returns all parent accounts.
func (r *Repository) ListParents(ctx context.Context) ([]Parent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+parentCols+` FROM parents ORDER BY student_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Parent
	for rows.Next() {
		p, err := scanParent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Repository) SaveRefreshToken(ctx context.Context, subject, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token, subject, expires_at)
		VALUES ($1, $2, $3)
	`, token, subject, expiresAt)
	return err
}

// RevokeRefreshToken marks a token revoked.
func (r *Repository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}
