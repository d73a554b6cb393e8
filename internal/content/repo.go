package content

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrContentNotFound is returned when a video/book id matches no row.
var ErrContentNotFound = errors.New("content: not found")

// Repository persists videos and books in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertVideo publishes a video.
func (r *Repository) InsertVideo(ctx context.Context, v Video) (Video, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.UploadDate.IsZero() {
		v.UploadDate = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO videos (id, title, url, grade, is_youtube, upload_date)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, v.ID, v.Title, v.URL, v.Grade, v.IsYouTube, v.UploadDate)
	if err != nil {
		return Video{}, err
	}
	return v, nil
}

// UpdateVideo rewrites a video's fields.
func (r *Repository) UpdateVideo(ctx context.Context, v Video) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE videos SET title = $2, url = $3, grade = $4, is_youtube = $5 WHERE id = $1
	`, v.ID, v.Title, v.URL, v.Grade, v.IsYouTube)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrContentNotFound
	}
	return err
}

// DeleteVideo removes a video.
func (r *Repository) DeleteVideo(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrContentNotFound
	}
	return err
}

// ListVideos returns videos, optionally filtered by grade tier.
func (r *Repository) ListVideos(ctx context.Context, gradeFilter string) ([]Video, error) {
	query := `SELECT id, title, url, grade, is_youtube, upload_date FROM videos`
	args := []any{}
	if gradeFilter != "" {
		query += ` WHERE grade = $1`
		args = append(args, gradeFilter)
	}
	query += ` ORDER BY upload_date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Video
	for rows.Next() {
		var v Video
		if err := rows.Scan(&v.ID, &v.Title, &v.URL, &v.Grade, &v.IsYouTube, &v.UploadDate); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// InsertBook publishes a book.
func (r *Repository) InsertBook(ctx context.Context, b Book) (Book, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.UploadDate.IsZero() {
		b.UploadDate = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO books (id, title, url, grade, upload_date)
		VALUES ($1,$2,$3,$4,$5)
	`, b.ID, b.Title, b.URL, b.Grade, b.UploadDate)
	if err != nil {
		return Book{}, err
	}
	return b, nil
}

// DeleteBook removes a book.
func (r *Repository) DeleteBook(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrContentNotFound
	}
	return err
}

// ListBooks returns books, optionally filtered by grade tier.
func (r *Repository) ListBooks(ctx context.Context, gradeFilter string) ([]Book, error) {
	query := `SELECT id, title, url, grade, upload_date FROM books`
	args := []any{}
	if gradeFilter != "" {
		query += ` WHERE grade = $1`
		args = append(args, gradeFilter)
	}
	query += ` ORDER BY upload_date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.URL, &b.Grade, &b.UploadDate); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
