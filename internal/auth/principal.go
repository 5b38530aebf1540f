package auth

import "context"

// Role marks what a registered user is allowed to do. It replaces the
// fragile "user with id 1 is the admin" convention with an explicit
// attribute stored next to the user.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Principal is the identity bound to a request after session resolution.
// The zero value is the anonymous principal.
type Principal struct {
	UserID   int
	Name     string
	Role     Role
	LoggedIn bool
}

// Anonymous is the principal of requests carrying no valid session.
var Anonymous = Principal{}

type principalContextKey struct{}

// ContextWithPrincipal binds a resolved principal to the request context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal bound to the context, or the
// anonymous principal when session resolution never ran.
func PrincipalFromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalContextKey{}).(Principal); ok {
		return p
	}
	return Anonymous
}
