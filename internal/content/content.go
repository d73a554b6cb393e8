// Package content manages the video and book libraries distributed to
// students by grade tier.
package content

import "time"

// Video is one published lesson video, either hosted or a YouTube link.
type Video struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Grade      string    `json:"grade"`
	IsYouTube  bool      `json:"is_youtube"`
	UploadDate time.Time `json:"upload_date"`
}

// Book is one published document.
type Book struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Grade      string    `json:"grade"`
	UploadDate time.Time `json:"upload_date"`
}
