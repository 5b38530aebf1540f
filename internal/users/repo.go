package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/auth"
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

// Add stores a new user and sets its id. Registering an already present
// email yields ErrDuplicateEmail.
func (r *Repo) Add(ctx context.Context, user *User) error {
	if user.Role == "" {
		user.Role = auth.RoleMember
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO users (name, email, password, role) VALUES ($1, $2, $3, $4) RETURNING id;`,
		user.Name, user.Email, user.PasswordHash, user.Role,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	if rows.Next() {
		if err := rows.Scan(&user.ID); err == nil {
			return nil
		}
	}

	return errors.New("unexpected error, failed to insert user")
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.getByEmail")
	defer span.End()

	return r.getOne(
		ctx,
		`SELECT id, name, email, password, role FROM users WHERE email = $1;`,
		email,
	)
}

func (r *Repo) GetByID(ctx context.Context, id int) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.getByID")
	defer span.End()

	return r.getOne(
		ctx,
		`SELECT id, name, email, password, role FROM users WHERE id = $1;`,
		id,
	)
}

func (r *Repo) All(ctx context.Context) ([]*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.all")
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, email, password, role FROM users ORDER BY id;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rows2users(rows)
}

func (r *Repo) getOne(ctx context.Context, query string, arg any) (*User, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, ErrUserNotFound
	}

	var user User
	if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role); err != nil {
		return nil, err
	}
	return &user, nil
}

func rows2users(rows pgx.Rows) ([]*User, error) {
	var all []*User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role); err != nil {
			return nil, err
		}
		all = append(all, &user)
	}
	return all, nil
}
