package dashboard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/clinicdash/internal/app/system/auth"
	"github.com/dalemusser/clinicdash/internal/testutil"
	"go.uber.org/zap"
)

func TestServeDashboard_DispatchesByRole(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		wantPath string
	}{
		{"admin", "Admin", "/admin"},
		{"doctor", "Doctor", "/doctor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(zap.NewNop())
			req := auth.WithTestUser(httptest.NewRequest("GET", "/dashboard", nil), &auth.SessionUser{ID: "u1", Name: "U", Role: tt.role})
			rec := testutil.NewRecorder()

			h.ServeDashboard(rec, req)

			rec.AssertRedirect(t, tt.wantPath)
		})
	}
}

func TestServeDashboard_OtherRolesForbidden(t *testing.T) {
	for _, role := range []string{"Receptionist", "Patient", "admin", "DOCTOR", ""} {
		h := NewHandler(zap.NewNop())
		var gotMsg string
		h.forbidden = func(w http.ResponseWriter, _ *http.Request, msg, _ string) {
			gotMsg = msg
			w.WriteHeader(http.StatusForbidden)
		}

		req := auth.WithTestUser(httptest.NewRequest("GET", "/dashboard", nil), &auth.SessionUser{ID: "u1", Role: role})
		rec := httptest.NewRecorder()
		h.ServeDashboard(rec, req)

		if rec.Code != http.StatusForbidden || gotMsg == "" {
			t.Errorf("role %q: got %d %q", role, rec.Code, gotMsg)
		}
	}
}

func TestServeDashboard_NoUser(t *testing.T) {
	h := NewHandler(zap.NewNop())
	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, httptest.NewRequest("GET", "/dashboard", nil))
	rec.AssertRedirect(t, "/login")
}
