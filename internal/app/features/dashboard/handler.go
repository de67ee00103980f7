// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	uierrors "github.com/dalemusser/clinicdash/internal/app/features/errors"
	"github.com/dalemusser/clinicdash/internal/app/system/authz"
	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger

	forbidden func(w http.ResponseWriter, r *http.Request, msg, backURL string)
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		Log:       logger,
		forbidden: uierrors.RenderForbidden,
	}
}

// ServeDashboard sends the user to the dashboard for their role. Roles are
// matched exactly; anything other than Admin or Doctor has no dashboard.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if dest := authz.DashboardPath(role); dest != "" {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}

	h.Log.Info("no dashboard for role", zap.String("user_id", userID), zap.String("role", role))
	h.forbidden(w, r, "There is no dashboard for your role. Please contact an administrator.", "/logout")
}
