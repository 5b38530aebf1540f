package users

import (
	"errors"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/auth"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// User holds only its own columns; posts and comments of a user are
// reached through queries on their side of the relation.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
}
