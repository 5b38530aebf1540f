package blog

import (
	"context"
	"sort"
	"sync"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/comments"
)

var _ postsRepo = (*repoMock)(nil)

type repoMock struct {
	Posts map[int]*Post
	// mirrors the cascade the real repo performs in its delete tx
	CommentsRepo *comments.RepoMock
	nextID       int
	mutex        sync.Mutex
}

func newRepoMock(commentsRepo *comments.RepoMock) *repoMock {
	return &repoMock{
		Posts:        make(map[int]*Post),
		CommentsRepo: commentsRepo,
		nextID:       1,
	}
}

func (r *repoMock) AddPost(_ context.Context, post *Post) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if post.Title == "" || post.Body == "" {
		return ErrPostFieldsMissing
	}
	for _, p := range r.Posts {
		if p.Title == post.Title {
			return ErrDuplicateTitle
		}
	}

	if post.ID == 0 {
		post.ID = r.nextID
		r.nextID++
	}

	r.Posts[post.ID] = post
	if r.CommentsRepo != nil {
		r.CommentsRepo.KnownIDs.Posts[post.ID] = true
	}
	return nil
}

func (r *repoMock) UpdatePost(_ context.Context, id int, params UpdatePostParams) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if params.Title == "" || params.Body == "" {
		return ErrPostFieldsMissing
	}

	post, ok := r.Posts[id]
	if !ok {
		return ErrPostNotFound
	}

	for otherID, p := range r.Posts {
		if otherID != id && p.Title == params.Title {
			return ErrDuplicateTitle
		}
	}

	post.Title = params.Title
	post.Subtitle = params.Subtitle
	post.Body = params.Body
	post.ImgURL = params.ImgURL
	post.AuthorID = params.AuthorID
	return nil
}

func (r *repoMock) DeletePost(ctx context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.Posts[id]; !ok {
		return ErrPostNotFound
	}

	if r.CommentsRepo != nil {
		r.CommentsRepo.DeleteByPost(ctx, id)
		delete(r.CommentsRepo.KnownIDs.Posts, id)
	}
	delete(r.Posts, id)
	return nil
}

func (r *repoMock) All(_ context.Context) ([]*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var posts []*Post
	for id := range r.Posts {
		posts = append(posts, r.Posts[id])
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID < posts[j].ID
	})
	return posts, nil
}

func (r *repoMock) GetPost(_ context.Context, id int) (*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	post, ok := r.Posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	return post, nil
}
