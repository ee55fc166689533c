package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/hugh/go-roster/internal/api/dto"
	"github.com/hugh/go-roster/internal/api/middleware"
	"github.com/hugh/go-roster/internal/auth"
	"github.com/hugh/go-roster/internal/database/models"
	"github.com/hugh/go-roster/internal/employees"
)

// EmployeeService is the tenancy-scoped employee store.
type EmployeeService interface {
	List(ctx context.Context, identity *auth.Identity) ([]models.Employee, error)
	Count(ctx context.Context, identity *auth.Identity) (int64, error)
	Create(ctx context.Context, identity *auth.Identity, input employees.CreateInput) (*models.Employee, error)
	Get(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*models.Employee, error)
	Update(ctx context.Context, identity *auth.Identity, id uuid.UUID, patch employees.UpdateInput) (*models.Employee, error)
	Delete(ctx context.Context, identity *auth.Identity, id uuid.UUID) error
}

var _ EmployeeService = (*employees.Service)(nil)

type PageHandler struct {
	employees EmployeeService
	view      *View
}

func NewPageHandler(svc EmployeeService, view *View) *PageHandler {
	return &PageHandler{employees: svc, view: view}
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.view.render(w, r, http.StatusOK, "home.html", h.view.newPage(w, r))
}

// Dashboard lists the caller's organization.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	list, err := h.employees.List(r.Context(), identity)
	if err != nil {
		h.view.renderError(w, r, err)
		return
	}
	count, err := h.employees.Count(r.Context(), identity)
	if err != nil {
		h.view.renderError(w, r, err)
		return
	}

	page := h.view.newPage(w, r)
	page.Employees = dto.NewEmployeeViews(list)
	page.Count = count
	h.view.render(w, r, http.StatusOK, "dashboard.html", page)
}

// NotFound renders the 404 page for unknown routes.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	page := h.view.newPage(w, r)
	page.Status = http.StatusNotFound
	page.Message = "Page not found."
	h.view.render(w, r, http.StatusNotFound, "error.html", page)
}
