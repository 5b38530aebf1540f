package auth

import "errors"

// ErrForbidden covers both the anonymous and the "logged in but not an
// admin" case. The two are deliberately not distinguishable for callers.
var ErrForbidden = errors.New("forbidden")

// Authorize admits the principal to admin-only operations. It is composed
// into routes explicitly at registration time, see middleware.AdminOnly.
func Authorize(p Principal) error {
	if p.LoggedIn && p.Role == RoleAdmin {
		return nil
	}
	return ErrForbidden
}
