// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/tilestock/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
)

// DefaultSiteName appears in page titles, invoices, and WhatsApp messages.
const DefaultSiteName = "Sita Ram Traders"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
//	type dashboardData struct {
//	    viewdata.BaseVM
//	    Tiles []models.Tile
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// One-shot notices (flash.Pop), rendered by the shared layout.
	Flashes []string
}

// NewBaseVM creates a populated BaseVM for a page. Handlers that show flash
// messages assign Flashes afterwards.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)
	return BaseVM{
		SiteName:    DefaultSiteName,
		IsLoggedIn:  signedIn,
		Role:        role,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
	}
}

// IsAdmin is a template convenience.
func (vm BaseVM) IsAdmin() bool { return vm.Role == "admin" }
