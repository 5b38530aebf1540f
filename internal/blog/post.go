package blog

import (
	"errors"
	"time"
)

var (
	ErrPostNotFound      = errors.New("blog post not found")
	ErrDuplicateTitle    = errors.New("a post with this title exists already")
	ErrPostFieldsMissing = errors.New("blog post fields missing")
)

// DisplayDateFormat renders like "August 31, 2026". The formatted string
// is what gets stored and shown; CreatedAt additionally keeps the real
// timestamp but never replaces the stored display date.
const DisplayDateFormat = "January 02, 2006"

// Post references its author by id only; the comments of a post are
// fetched with a query on their side of the relation.
type Post struct {
	ID        int       `json:"id"`
	AuthorID  int       `json:"author_id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Date      string    `json:"date"` // pre-formatted display string
	Body      string    `json:"body"` // rich text, stored as-is
	ImgURL    string    `json:"img_url"`
	CreatedAt time.Time `json:"created_at"`

	// joined in for display, never written
	AuthorName string `json:"author_name,omitempty"`
}

// UpdatePostParams carries the mutable fields of a post. The author is
// reassigned to whoever edits, matching the edit flow of the site.
type UpdatePostParams struct {
	Title    string
	Subtitle string
	Body     string
	ImgURL   string
	AuthorID int
}
