package viewdata

import (
	"net/http/httptest"
	"testing"
)

func TestIsPartial(t *testing.T) {
	tests := []struct {
		name      string
		hxRequest string
		hxTarget  string
		want      bool
	}{
		{"full page", "", "", false},
		{"htmx for target", "true", "patients-tbody", true},
		{"htmx for other element", "true", "doctors-tbody", false},
		{"target without htmx", "", "patients-tbody", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/doctor/patients?q=a", nil)
			if tt.hxRequest != "" {
				r.Header.Set("HX-Request", tt.hxRequest)
			}
			if tt.hxTarget != "" {
				r.Header.Set("HX-Target", tt.hxTarget)
			}
			if got := IsPartial(r, "patients-tbody"); got != tt.want {
				t.Errorf("IsPartial: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteFragment(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteFragment(rec, "<tr><td>Asha</td></tr>")

	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type: got %q", ct)
	}
	if rec.Body.String() != "<tr><td>Asha</td></tr>" {
		t.Errorf("body: got %q", rec.Body.String())
	}
}
