package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements create the blog platform tables. Comments reference
// both their author and parent post; posts keep the author reference
// nullable so removing a user one day does not take the posts with it.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name VARCHAR(500) NOT NULL,
		email VARCHAR(100) NOT NULL UNIQUE,
		password VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'member'
	);`,
	`CREATE TABLE IF NOT EXISTS blog_posts (
		id SERIAL PRIMARY KEY,
		author_id INTEGER REFERENCES users (id) ON DELETE SET NULL,
		title VARCHAR(250) NOT NULL UNIQUE,
		subtitle VARCHAR(250) NOT NULL,
		date VARCHAR(250) NOT NULL,
		body TEXT NOT NULL,
		img_url VARCHAR(250) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS comments (
		id SERIAL PRIMARY KEY,
		text TEXT NOT NULL,
		author_id INTEGER NOT NULL REFERENCES users (id),
		post_id INTEGER NOT NULL REFERENCES blog_posts (id)
	);`,
}

// EnsureSchema creates missing tables on startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
