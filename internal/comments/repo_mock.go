package comments

import (
	"context"
	"errors"
	"sync"
)

// RepoMock is shared with the blog handler tests, which exercise the
// comment flow through the post page.
type RepoMock struct {
	Comments []Comment
	KnownIDs struct {
		Users map[int]string
		Posts map[int]bool
	}
	mutex sync.Mutex
}

func NewRepoMock() *RepoMock {
	m := &RepoMock{}
	m.KnownIDs.Users = make(map[int]string)
	m.KnownIDs.Posts = make(map[int]bool)
	return m
}

func (m *RepoMock) Add(_ context.Context, comment *Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if comment.Text == "" {
		return errors.New("comment text empty")
	}
	if _, ok := m.KnownIDs.Users[comment.AuthorID]; !ok {
		return ErrUserNotFound
	}
	if !m.KnownIDs.Posts[comment.PostID] {
		return ErrPostNotFound
	}

	comment.ID = len(m.Comments) + 1
	comment.AuthorName = m.KnownIDs.Users[comment.AuthorID]
	m.Comments = append(m.Comments, *comment)
	return nil
}

func (m *RepoMock) ListByPost(_ context.Context, postID int) ([]Comment, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var result []Comment
	for _, c := range m.Comments {
		if c.PostID == postID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *RepoMock) ListByAuthor(_ context.Context, authorID int) ([]Comment, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var result []Comment
	for _, c := range m.Comments {
		if c.AuthorID == authorID {
			result = append(result, c)
		}
	}
	return result, nil
}

// DeleteByPost mirrors the cascade performed by the posts repo delete.
func (m *RepoMock) DeleteByPost(_ context.Context, postID int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var kept []Comment
	for _, c := range m.Comments {
		if c.PostID != postID {
			kept = append(kept, c)
		}
	}
	m.Comments = kept
}
