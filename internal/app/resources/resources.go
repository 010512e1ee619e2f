// internal/app/resources/resources.go
package resources

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

// Embed the shared template files (layout partials used by every page).
//
//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "shared",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
