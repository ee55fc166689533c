package handlers

import (
	"net/http"

	"github.com/hugh/go-roster/internal/api/dto"
	"github.com/hugh/go-roster/internal/api/middleware"
	"github.com/hugh/go-roster/internal/auth"
	"github.com/hugh/go-roster/pkg/apperr"
)

const msgRegistered = "Registration successful. Please log in."

var (
	registerFields = []string{"first_name", "last_name", "email", "password", "organization"}
	loginFields    = []string{"email", "password"}
)

type AuthHandler struct {
	auth auth.Authenticator
	view *View
}

func NewAuthHandler(authn auth.Authenticator, view *View) *AuthHandler {
	return &AuthHandler{auth: authn, view: view}
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.view.render(w, r, http.StatusOK, "register.html", h.view.newPage(w, r))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.view.renderError(w, r, apperr.New(apperr.KindValidation, "Invalid form submission."))
		return
	}

	_, err := h.auth.Register(r.Context(), auth.RegisterInput{
		FirstName: r.PostForm.Get("first_name"),
		LastName:  r.PostForm.Get("last_name"),
		Email:     r.PostForm.Get("email"),
		Password:  r.PostForm.Get("password"),
		OrgName:   r.PostForm.Get("organization"),
	})
	if err != nil {
		h.rerender(w, r, "register.html", registerFields, err)
		return
	}

	h.view.flash(w, dto.FlashSuccess, msgRegistered)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetIdentity(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.view.render(w, r, http.StatusOK, "login.html", h.view.newPage(w, r))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.view.renderError(w, r, apperr.New(apperr.KindValidation, "Invalid form submission."))
		return
	}

	res, err := h.auth.Login(r.Context(), auth.LoginInput{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	})
	if err != nil {
		h.rerender(w, r, "login.html", loginFields, err)
		return
	}

	middleware.SetSessionCookie(w, res.Token, res.ExpiresAt, h.view.secureCookies)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), middleware.SessionToken(r)); err != nil {
		h.view.logger.Error("logout failed", "error", err)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// rerender shows the submitted form again for validation, conflict and
// credential errors. Passwords are never echoed back.
func (h *AuthHandler) rerender(w http.ResponseWriter, r *http.Request, name string, fields []string, err error) {
	kind := apperr.KindOf(err)
	switch kind {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindUnauthorized:
	default:
		h.view.renderError(w, r, err)
		return
	}

	page := h.view.newPage(w, r)
	page.Form = dto.FormFrom(r.PostForm, fields...).Redact("password")
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		page.Form.Errors = fields
	} else {
		page.Error = apperr.Message(err)
	}
	h.view.render(w, r, kind.HTTPStatus(), name, page)
}
