// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/clinicdash/internal/app/system/auth"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin dashboard. Typically: r.Mount("/admin", admin.Routes(h, sm))
// Every route requires a signed-in user whose role is exactly Admin.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleAdmin))

		pr.Get("/", h.ServeOverview)

		// Lists (HTMX-aware search)
		pr.Get("/doctors", h.ServeDoctors)
		pr.Get("/receptionists", h.ServeReceptionists)
		pr.Get("/patients", h.ServePatients)
		pr.Get("/appointments", h.ServeAppointments)

		// Staff accounts
		pr.Get("/users/new", h.ServeNewUser)
		pr.Post("/users", h.HandleCreateUser)
		pr.Get("/users/{id}/delete", h.ServeDeleteUser)
		pr.Post("/users/{id}/delete", h.HandleDeleteUser)

		// Role changes
		pr.Get("/patients/{id}/role", h.ServeChangeRole)
		pr.Post("/patients/{id}/role", h.HandleChangeRole)

		// Clinic settings
		pr.Get("/settings", h.ServeSettings)
		pr.Post("/settings", h.HandleSettings)
	})

	return r
}
