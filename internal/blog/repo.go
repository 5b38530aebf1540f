package blog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/telemetry/tracing"
	"github.com/chris-code08/Day-71-blog-for-deployment/pkg"
)

const selectPosts = `
	SELECT
		p.id, p.author_id, p.title, p.subtitle, p.date, p.body, p.img_url, p.created_at,
		COALESCE(u.name, '') AS author_name
	FROM blog_posts p
	LEFT JOIN users u ON u.id = p.author_id
`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// AddPost stores a new post and sets its id. A title collision yields
// ErrDuplicateTitle.
func (r *Repo) AddPost(ctx context.Context, post *Post) error {
	if post.Title == "" || post.Body == "" {
		return ErrPostFieldsMissing
	}

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	if post.Date == "" {
		post.Date = post.CreatedAt.Format(DisplayDateFormat)
	}

	rows, err := r.db.Query(
		ctx,
		`
			INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;
		`,
		post.AuthorID, post.Title, post.Subtitle, post.Date, post.Body, post.ImgURL, post.CreatedAt,
	)
	if err != nil {
		return mapAddPostErr(err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return mapAddPostErr(err)
	}

	if rows.Next() {
		if err := rows.Scan(&post.ID); err == nil {
			return nil
		}
	}

	return errors.New("unexpected error, failed to insert blog post")
}

func mapAddPostErr(err error) error {
	if pkg.IsUniqueViolationError(err) {
		return ErrDuplicateTitle
	}
	return err
}

// UpdatePost rewrites the mutable fields of a post, reassigning the
// author. Date and created_at stay as they were.
func (r *Repo) UpdatePost(ctx context.Context, id int, params UpdatePostParams) error {
	if params.Title == "" || params.Body == "" {
		return ErrPostFieldsMissing
	}

	tag, err := r.db.Exec(
		ctx,
		`
			UPDATE blog_posts
			SET title = $1, subtitle = $2, body = $3, img_url = $4, author_id = $5
			WHERE id = $6;
		`,
		params.Title, params.Subtitle, params.Body, params.ImgURL, params.AuthorID, id,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrDuplicateTitle
		}
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// DeletePost removes a post together with its comments, in one
// transaction. The comments go first, the engine does not cascade for us.
func (r *Repo) DeletePost(ctx context.Context, id int) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.delete")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete post tx: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Errorf("delete post %d, rollback: %s", id, err)
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE post_id = $1`, id); err != nil {
		return fmt.Errorf("delete post comments: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return tx.Commit(ctx)
}

// All returns the posts in insertion order.
func (r *Repo) All(ctx context.Context) ([]*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.all")
	defer span.End()

	rows, err := r.db.Query(ctx, selectPosts+`ORDER BY p.id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rows2posts(rows)
}

func (r *Repo) GetPost(ctx context.Context, id int) (*Post, error) {
	log.Tracef("getting post %d", id)

	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.get")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	rows, err := r.db.Query(ctx, selectPosts+`WHERE p.id = $1;`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, ErrPostNotFound
	}

	return scanPost(rows)
}

// ListByAuthor derives a user's posts via query, no back-pointers.
func (r *Repo) ListByAuthor(ctx context.Context, authorID int) ([]*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.listByAuthor")
	span.SetAttributes(attribute.Int("author_id", authorID))
	defer span.End()

	rows, err := r.db.Query(ctx, selectPosts+`WHERE p.author_id = $1 ORDER BY p.id;`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rows2posts(rows)
}

func scanPost(rows pgx.Rows) (*Post, error) {
	var post Post
	var authorID *int
	if err := rows.Scan(
		&post.ID, &authorID, &post.Title, &post.Subtitle, &post.Date,
		&post.Body, &post.ImgURL, &post.CreatedAt, &post.AuthorName,
	); err != nil {
		return nil, err
	}
	if authorID != nil {
		post.AuthorID = *authorID
	}
	return &post, nil
}

func rows2posts(rows pgx.Rows) ([]*Post, error) {
	var posts []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}
