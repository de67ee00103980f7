// internal/app/features/doctor/routes.go
package doctor

import (
	"github.com/dalemusser/clinicdash/internal/app/system/auth"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the doctor dashboard. Typically: r.Mount("/doctor", doctor.Routes(h, sm))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleDoctor))

		pr.Get("/", h.ServeOverview)
		pr.Get("/appointments", h.ServeAppointments)
		pr.Post("/appointments/{id}/status", h.HandleStatus)
		pr.Get("/patients", h.ServePatients)
		pr.Get("/prescriptions", h.ServePrescriptions)
		pr.Post("/prescriptions", h.HandleCreatePrescription)
	})

	return r
}
