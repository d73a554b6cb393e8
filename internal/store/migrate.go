package store

import (
	"database/sql"
	"log"
)

// Migrate creates the schema when missing. Statements are idempotent so the
// binary can run them on every start.
func Migrate(db *sql.DB) error {
	log.Println("running database migrations...")

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS students (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			code TEXT NOT NULL UNIQUE,
			parent_phone TEXT NOT NULL DEFAULT '',
			group_name TEXT NOT NULL DEFAULT '',
			grade TEXT NOT NULL DEFAULT 'first',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS parents (
			id UUID PRIMARY KEY,
			phone TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			student_code TEXT NOT NULL REFERENCES students (code) ON DELETE CASCADE,
			student_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS attendance (
			id UUID PRIMARY KEY,
			student_id UUID NOT NULL REFERENCES students (id) ON DELETE CASCADE,
			student_name TEXT NOT NULL,
			date DATE NOT NULL,
			time TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'present',
			lesson_number INT NOT NULL CHECK (lesson_number >= 1),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_student ON attendance (student_id)`,
		`CREATE TABLE IF NOT EXISTS grades (
			id UUID PRIMARY KEY,
			student_id UUID NOT NULL REFERENCES students (id) ON DELETE CASCADE,
			student_name TEXT NOT NULL,
			exam_name TEXT NOT NULL,
			score NUMERIC NOT NULL,
			total_score NUMERIC NOT NULL DEFAULT 100,
			lesson_number INT NOT NULL DEFAULT 1,
			group_name TEXT NOT NULL DEFAULT '',
			performance_indicator TEXT NOT NULL DEFAULT 'good',
			date TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS videos (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			grade TEXT NOT NULL DEFAULT 'first',
			is_youtube BOOLEAN NOT NULL DEFAULT FALSE,
			upload_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS books (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			grade TEXT NOT NULL DEFAULT 'first',
			upload_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY,
			student_id UUID NOT NULL REFERENCES students (id) ON DELETE CASCADE,
			student_name TEXT NOT NULL,
			student_code TEXT NOT NULL,
			group_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS paid_months (
			id UUID PRIMARY KEY,
			payment_id UUID NOT NULL REFERENCES payments (id) ON DELETE CASCADE,
			month INT NOT NULL CHECK (month >= 1)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_paid_months_payment ON paid_months (payment_id)`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			token TEXT PRIMARY KEY,
			subject TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			revoked BOOLEAN NOT NULL DEFAULT FALSE
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			log.Printf("migration failed: %v", err)
			return err
		}
	}

	log.Println("database migrations completed")
	return nil
}
