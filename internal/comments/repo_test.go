//go:build integration_test || all_tests

package comments

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/db"
)

func testRepoSetup(t *testing.T) (*Repo, *pgxpool.Pool, func()) {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postgres host: %s", host)

	dbPool, err := db.NewDBPool(timeoutCtx, db.NewDBPoolParams{
		DBHost:         host,
		DBPort:         "5432",
		DBName:         "blog_service_test",
		TracingEnabled: false,
	})
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(timeoutCtx, dbPool))

	_, err = dbPool.Exec(timeoutCtx, `DELETE FROM comments`)
	require.NoError(t, err)
	_, err = dbPool.Exec(timeoutCtx, `DELETE FROM blog_posts`)
	require.NoError(t, err)
	_, err = dbPool.Exec(timeoutCtx, `DELETE FROM users`)
	require.NoError(t, err)

	return NewRepo(dbPool), dbPool, func() {
		dbPool.Close()
	}
}

func addTestUserAndPost(t *testing.T, dbPool *pgxpool.Pool) (userID, postID int) {
	t.Helper()
	ctx := context.Background()

	err := dbPool.QueryRow(
		ctx,
		`INSERT INTO users (name, email, password, role) VALUES ($1, $2, $3, 'member') RETURNING id`,
		gofakeit.Name(), gofakeit.Email(), gofakeit.UUID(),
	).Scan(&userID)
	require.NoError(t, err)

	err = dbPool.QueryRow(
		ctx,
		`INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		userID, gofakeit.Sentence(4), gofakeit.Sentence(6),
		time.Now().Format("January 02, 2006"),
		gofakeit.Paragraph(1, 2, 10, " "), gofakeit.URL(), time.Now(),
	).Scan(&postID)
	require.NoError(t, err)

	return userID, postID
}

func TestRepo_AddAndList(t *testing.T) {
	repo, dbPool, shutdown := testRepoSetup(t)
	defer shutdown()

	ctx := context.Background()
	userID, postID := addTestUserAndPost(t, dbPool)

	comment := &Comment{
		Text:     gofakeit.Sentence(8),
		AuthorID: userID,
		PostID:   postID,
	}
	require.NoError(t, repo.Add(ctx, comment))
	require.NotZero(t, comment.ID)

	byPost, err := repo.ListByPost(ctx, postID)
	require.NoError(t, err)
	require.Len(t, byPost, 1)
	assert.Equal(t, comment.Text, byPost[0].Text)
	assert.NotEmpty(t, byPost[0].AuthorName)

	byAuthor, err := repo.ListByAuthor(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, byAuthor, 1)
}

func TestRepo_Add_missingRelations(t *testing.T) {
	repo, dbPool, shutdown := testRepoSetup(t)
	defer shutdown()

	ctx := context.Background()
	userID, postID := addTestUserAndPost(t, dbPool)

	err := repo.Add(ctx, &Comment{
		Text:     gofakeit.Sentence(8),
		AuthorID: 424242,
		PostID:   postID,
	})
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = repo.Add(ctx, &Comment{
		Text:     gofakeit.Sentence(8),
		AuthorID: userID,
		PostID:   424242,
	})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestRepo_Add_emptyText(t *testing.T) {
	repo, dbPool, shutdown := testRepoSetup(t)
	defer shutdown()

	userID, postID := addTestUserAndPost(t, dbPool)

	err := repo.Add(context.Background(), &Comment{
		AuthorID: userID,
		PostID:   postID,
	})
	assert.Error(t, err)
}
