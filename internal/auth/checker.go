package auth

import "context"

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*LoginTestChecker)(nil)

type Checker interface {
	// GetUserID resolves a session token to the logged in user id.
	// Absent, malformed, tampered or expired tokens yield ErrNoSession.
	GetUserID(ctx context.Context, token string) (int, error)
}
