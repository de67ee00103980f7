// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/clinicdash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	vm := viewdata.NewBaseVM(r, nil, "Sign in required", backURL)
	vm.BackURL = backURL
	templates.Render(w, r, "error_page", pageData{BaseVM: vm, Message: "Please sign in to continue."})
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	vm := viewdata.NewBaseVM(r, nil, "Access denied", "/")
	if backURL != "" {
		vm.BackURL = backURL
	}
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_page", pageData{BaseVM: vm, Message: msg})
}

// renderStatus shows the generic error page with the given status code.
func renderStatus(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL string) {
	vm := viewdata.NewBaseVM(r, nil, title, "/dashboard")
	if backURL != "" {
		vm.BackURL = backURL
	}
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", pageData{BaseVM: vm, Message: msg})
}
