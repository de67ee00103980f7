// internal/app/features/doctor/templates.go
package doctor

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "doctor",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
