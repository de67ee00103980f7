// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/clinicdash/internal/app/system/auth"
	"github.com/dalemusser/clinicdash/internal/domain/models"
)

// UserCtx returns the user's role tag, name, ID, and a found flag.
// With no user in context it returns "visitor", "", "", false. A user with
// an empty ID is treated the same way so callers can trust ok=true.
func UserCtx(r *http.Request) (role, name, userID string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || user.ID == "" {
		return "visitor", "", "", false
	}
	return user.Role, user.Name, user.ID, true
}

// HasAnyRole reports whether the current request's user carries one of the
// given role tags. Tags compare by exact equality.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == want {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the current request's user is an administrator.
func IsAdmin(r *http.Request) bool { return HasAnyRole(r, models.RoleAdmin) }

// IsDoctor reports whether the current request's user is a doctor.
func IsDoctor(r *http.Request) bool { return HasAnyRole(r, models.RoleDoctor) }

// DashboardPath returns the landing page for a role tag, or "" when the role
// has no dashboard in this service.
func DashboardPath(role string) string {
	switch role {
	case models.RoleAdmin:
		return "/admin"
	case models.RoleDoctor:
		return "/doctor"
	}
	return ""
}
