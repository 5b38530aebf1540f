package comments

import "errors"

var (
	// referenced entities must exist when a comment is created
	ErrUserNotFound = errors.New("comment author not found")
	ErrPostNotFound = errors.New("comment parent post not found")
)

// Comment stores only the owning-side foreign keys. AuthorName is joined
// in for display and never written.
type Comment struct {
	ID         int    `json:"id"`
	Text       string `json:"text"`
	AuthorID   int    `json:"author_id"`
	PostID     int    `json:"post_id"`
	AuthorName string `json:"author_name,omitempty"`
}
