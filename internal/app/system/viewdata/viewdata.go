// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"context"
	"html/template"
	"net/http"

	settingsstore "github.com/dalemusser/clinicdash/internal/app/store/settings"
	"github.com/dalemusser/clinicdash/internal/app/system/authz"
	"github.com/dalemusser/clinicdash/internal/app/system/notice"
	"github.com/dalemusser/clinicdash/internal/app/system/timeouts"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
	"go.mongodb.org/mongo-driver/mongo"
)

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, db, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	// Clinic settings (from database)
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn    bool
	Role          string
	UserName      string
	DashboardPath string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string

	// Toasts shown once on this render.
	Notices []notice.Notice
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - db: database for loading the clinic name (can be nil for defaults)
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, db *mongo.Database, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:      models.DefaultClinicName,
		IsLoggedIn:    signedIn,
		Role:          role,
		UserName:      name,
		DashboardPath: authz.DashboardPath(role),
		Title:         title,
		BackURL:       httpnav.ResolveBackURL(r, backDefault),
		CurrentPath:   httpnav.CurrentPath(r),
		CSRFToken:     csrf.Token(r),
	}

	if db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		vm.SiteName = GetSiteName(ctx, db)
	}

	return vm
}

// WithNotices returns vm with ns appended to its notices.
func (vm BaseVM) WithNotices(ns ...notice.Notice) BaseVM {
	vm.Notices = append(append([]notice.Notice(nil), vm.Notices...), ns...)
	return vm
}

// GetSiteName returns the clinic name from settings, or the default if not available.
func GetSiteName(ctx context.Context, db *mongo.Database) string {
	if db == nil {
		return models.DefaultClinicName
	}
	settings, err := settingsstore.New(db).Get(ctx)
	if err != nil {
		return models.DefaultClinicName
	}
	return settings.ClinicName
}

// GetSettings returns the clinic settings, or defaults if not available.
func GetSettings(ctx context.Context, db *mongo.Database) models.ClinicSettings {
	def := models.ClinicSettings{ID: models.ClinicSettingsID, ClinicName: models.DefaultClinicName}
	if db == nil {
		return def
	}
	settings, err := settingsstore.New(db).Get(ctx)
	if err != nil {
		return def
	}
	return settings
}

// IsPartial reports whether an HTMX request is asking only for the element
// with id target.
func IsPartial(r *http.Request, target string) bool {
	return r.Header.Get("HX-Request") != "" && r.Header.Get("HX-Target") == target
}

// WriteFragment writes an HTML fragment without the page layout.
func WriteFragment(w http.ResponseWriter, html template.HTML) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

// SearchBox drives the shared "search_box" template. Target is the id of the
// element HTMX swaps with the filtered rows.
type SearchBox struct {
	Action      string
	Target      string
	Query       string
	Placeholder string
}
