package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/telemetry/tracing"
	"github.com/chris-code08/Day-71-blog-for-deployment/pkg"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Add stores a new comment and sets its id. A missing author or parent
// post surfaces as ErrUserNotFound / ErrPostNotFound, mapped from the
// violated foreign key.
func (r *Repo) Add(ctx context.Context, comment *Comment) error {
	if comment.Text == "" {
		return errors.New("comment text empty")
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO comments (text, author_id, post_id) VALUES ($1, $2, $3) RETURNING id;`,
		comment.Text, comment.AuthorID, comment.PostID,
	)
	if err != nil {
		return mapFKViolation(err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return mapFKViolation(err)
	}

	if rows.Next() {
		if err := rows.Scan(&comment.ID); err == nil {
			return nil
		}
	}

	return errors.New("unexpected error, failed to insert comment")
}

// ListByPost returns the comments of a post in creation order.
func (r *Repo) ListByPost(ctx context.Context, postID int) ([]Comment, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "commentsRepo.listByPost")
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT c.id, c.text, c.author_id, c.post_id, COALESCE(u.name, '') AS author_name
			FROM comments c
			LEFT JOIN users u ON u.id = c.author_id
			WHERE c.post_id = $1
			ORDER BY c.id;
		`,
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rows2comments(rows)
}

// ListByAuthor derives the reverse relation user -> comments via a query,
// there are no back-pointers on the entities.
func (r *Repo) ListByAuthor(ctx context.Context, authorID int) ([]Comment, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "commentsRepo.listByAuthor")
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT c.id, c.text, c.author_id, c.post_id, COALESCE(u.name, '') AS author_name
			FROM comments c
			LEFT JOIN users u ON u.id = c.author_id
			WHERE c.author_id = $1
			ORDER BY c.id;
		`,
		authorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rows2comments(rows)
}

func mapFKViolation(err error) error {
	constraint := pkg.ForeignKeyConstraint(err)
	switch {
	case strings.Contains(constraint, "author"):
		return ErrUserNotFound
	case strings.Contains(constraint, "post"):
		return ErrPostNotFound
	case constraint != "":
		return fmt.Errorf("comment references missing row: %w", err)
	}
	return err
}

func rows2comments(rows pgx.Rows) ([]Comment, error) {
	var all []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.AuthorID, &c.PostID, &c.AuthorName); err != nil {
			return nil, err
		}
		all = append(all, c)
	}
	return all, nil
}
