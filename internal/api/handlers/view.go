package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hugh/go-roster/internal/api/dto"
	"github.com/hugh/go-roster/internal/api/middleware"
	"github.com/hugh/go-roster/internal/auth"
	"github.com/hugh/go-roster/pkg/apperr"
)

// Renderer executes named page templates.
type Renderer interface {
	Render(w io.Writer, page string, data any) error
}

// Page is the data every template receives.
type Page struct {
	Identity  *auth.Identity
	Flash     *dto.Flash
	CSRFToken string
	Form      *dto.Form
	// Error is a form-level message, shown above the fields.
	Error string

	Employees []dto.EmployeeView
	Employee  *dto.EmployeeView
	Count     int64

	Status  int
	Message string
}

// View renders pages and error responses for every handler.
type View struct {
	templates     Renderer
	logger        *slog.Logger
	secureCookies bool
}

func NewView(templates Renderer, logger *slog.Logger, secureCookies bool) *View {
	return &View{
		templates:     templates,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

// newPage collects the per-request state every layout needs and consumes
// the pending flash message.
func (v *View) newPage(w http.ResponseWriter, r *http.Request) Page {
	return Page{
		Identity:  middleware.GetIdentity(r.Context()),
		Flash:     popFlash(w, r),
		CSRFToken: middleware.GetCSRFToken(r.Context()),
		Form:      dto.NewForm(),
	}
}

func (v *View) render(w http.ResponseWriter, r *http.Request, status int, name string, page Page) {
	if v.templates == nil {
		http.Error(w, "Templates not loaded", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := v.templates.Render(w, name, page); err != nil {
		v.logger.Error("rendering template",
			"template", name,
			"error", err,
			"request_id", chimw.GetReqID(r.Context()),
		)
	}
}

// renderError surfaces err according to its kind. Anonymous access goes to
// the login page; everything else gets an error page whose text is the
// user-safe message. Causes of internal errors are logged, never shown.
func (v *View) renderError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)

	if kind == apperr.KindUnauthorized {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if kind == apperr.KindInternal || kind == apperr.KindUnknown {
		kind = apperr.KindInternal
		v.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"request_id", chimw.GetReqID(r.Context()),
		)
	}

	status := kind.HTTPStatus()
	message := apperr.Message(err)

	if wantsJSON(r) {
		writeJSON(w, status, dto.ErrorResponse{Error: message, Details: apperr.FieldsOf(err)})
		return
	}

	page := v.newPage(w, r)
	page.Status = status
	page.Message = message
	v.render(w, r, status, "error.html", page)
}

func (v *View) flash(w http.ResponseWriter, kind, message string) {
	setFlash(w, dto.Flash{Kind: kind, Message: message}, v.secureCookies)
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
