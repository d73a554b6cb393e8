package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// ErrPaymentNotFound is returned when a payment id matches no row.
var ErrPaymentNotFound = errors.New("payment: not found")

// Repository persists payments and their paid months in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertPayment writes a payment and its paid months in one transaction.
func (r *Repository) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Payment{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO payments (id, student_id, student_name, student_code, group_name)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, p.ID, p.StudentID, p.StudentName, p.StudentCode, p.Group)
	if err := row.Scan(&p.CreatedAt); err != nil {
		return Payment{}, err
	}

	for _, month := range p.Months {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO paid_months (id, payment_id, month) VALUES ($1, $2, $3)
		`, uuid.NewString(), p.ID, month); err != nil {
			return Payment{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Payment{}, err
	}
	return p, nil
}

// AddPaidMonth appends one paid month to an existing payment.
func (r *Repository) AddPaidMonth(ctx context.Context, paymentID string, month int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO paid_months (id, payment_id, month) VALUES ($1, $2, $3)
	`, uuid.NewString(), paymentID, month)
	return err
}

// RemovePaidMonth deletes one paid month from a payment.
func (r *Repository) RemovePaidMonth(ctx context.Context, paymentID string, month int) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM paid_months WHERE payment_id = $1 AND month = $2
	`, paymentID, month)
	return err
}

// DeletePayment removes a payment; paid months cascade.
func (r *Repository) DeletePayment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrPaymentNotFound
	}
	return err
}

// ListByStudent returns a student's payments with their months.
func (r *Repository) ListByStudent(ctx context.Context, studentID string) ([]Payment, error) {
	return r.list(ctx, `WHERE p.student_id = $1`, studentID)
}

// ListAll returns every payment with its months.
func (r *Repository) ListAll(ctx context.Context) ([]Payment, error) {
	return r.list(ctx, ``)
}

func (r *Repository) list(ctx context.Context, where string, args ...any) ([]Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.student_id, p.student_name, p.student_code, p.group_name, p.created_at, m.month
		FROM payments p
		LEFT JOIN paid_months m ON m.payment_id = p.id
		`+where+`
		ORDER BY p.created_at DESC, m.month
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	index := map[string]int{}
	for rows.Next() {
		var p Payment
		var month sql.NullInt64
		if err := rows.Scan(&p.ID, &p.StudentID, &p.StudentName, &p.StudentCode, &p.Group, &p.CreatedAt, &month); err != nil {
			return nil, err
		}
		i, ok := index[p.ID]
		if !ok {
			i = len(out)
			index[p.ID] = i
			out = append(out, p)
		}
		if month.Valid {
			out[i].Months = append(out[i].Months, int(month.Int64))
		}
	}
	return out, rows.Err()
}

// HasPaidMonth reports whether any of the student's payments covers the
// month. No rows at all is a plain false, not an error.
func (r *Repository) HasPaidMonth(ctx context.Context, studentID string, month int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM paid_months m
			JOIN payments p ON p.id = m.payment_id
			WHERE p.student_id = $1 AND m.month = $2
		)
	`, studentID, month).Scan(&exists)
	return exists, err
}
