package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/go-roster/internal/api/dto"
	"github.com/hugh/go-roster/internal/api/middleware"
	"github.com/hugh/go-roster/internal/employees"
	"github.com/hugh/go-roster/pkg/apperr"
)

const (
	msgEmployeeAdded   = "Employee added successfully."
	msgEmployeeUpdated = "Employee updated successfully."
	msgEmployeeDeleted = "Employee deleted successfully."
)

var (
	createFields = []string{"name", "email", "phone", "address", "joining_date", "designation"}
	updateFields = []string{"name", "email", "phone", "address", "designation"}
)

type EmployeeHandler struct {
	employees EmployeeService
	view      *View
}

func NewEmployeeHandler(svc EmployeeService, view *View) *EmployeeHandler {
	return &EmployeeHandler{employees: svc, view: view}
}

// NewForm shows the add form next to the current employee list.
func (h *EmployeeHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	page, err := h.addPage(w, r)
	if err != nil {
		h.view.renderError(w, r, err)
		return
	}
	h.view.render(w, r, http.StatusOK, "add_employee.html", page)
}

// Create adds an employee to the caller's organization. An organization_id
// form value is never read.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.view.renderError(w, r, apperr.New(apperr.KindValidation, "Invalid form submission."))
		return
	}

	identity := middleware.GetIdentity(r.Context())
	_, err := h.employees.Create(r.Context(), identity, employees.CreateInput{
		Name:        r.PostForm.Get("name"),
		Email:       r.PostForm.Get("email"),
		Phone:       r.PostForm.Get("phone"),
		Address:     r.PostForm.Get("address"),
		JoiningDate: r.PostForm.Get("joining_date"),
		Designation: r.PostForm.Get("designation"),
	})
	if err != nil {
		if !isFormError(err) {
			h.view.renderError(w, r, err)
			return
		}
		page, perr := h.addPage(w, r)
		if perr != nil {
			h.view.renderError(w, r, perr)
			return
		}
		fillForm(&page, r, createFields, err)
		h.view.render(w, r, apperr.KindOf(err).HTTPStatus(), "add_employee.html", page)
		return
	}

	h.view.flash(w, dto.FlashSuccess, msgEmployeeAdded)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *EmployeeHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := employeeID(r)
	if err != nil {
		h.view.renderError(w, r, err)
		return
	}

	emp, err := h.employees.Get(r.Context(), middleware.GetIdentity(r.Context()), id)
	if err != nil {
		h.view.renderError(w, r, err)
		return
	}

	view := dto.NewEmployeeView(emp)
	page := h.view.newPage(w, r)
	page.Employee = &view
	page.Form = dto.EmployeeForm(emp)
	h.view.render(w, r, http.StatusOK, "update_employee.html", page)
}

// Update changes the mutable fields present in the form. Fields missing from
// the submission keep their stored value.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := employeeID(r)
	if err != nil {
		h.view.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.view.renderError(w, r, apperr.New(apperr.KindValidation, "Invalid form submission."))
		return
	}

	identity := middleware.GetIdentity(r.Context())
	patch := employees.UpdateInput{
		Name:        formValue(r, "name"),
		Email:       formValue(r, "email"),
		Phone:       formValue(r, "phone"),
		Address:     formValue(r, "address"),
		Designation: formValue(r, "designation"),
	}

	if _, err := h.employees.Update(r.Context(), identity, id, patch); err != nil {
		if !isFormError(err) {
			h.view.renderError(w, r, err)
			return
		}
		emp, gerr := h.employees.Get(r.Context(), identity, id)
		if gerr != nil {
			h.view.renderError(w, r, gerr)
			return
		}
		view := dto.NewEmployeeView(emp)
		page := h.view.newPage(w, r)
		page.Employee = &view
		fillForm(&page, r, updateFields, err)
		h.view.render(w, r, apperr.KindOf(err).HTTPStatus(), "update_employee.html", page)
		return
	}

	h.view.flash(w, dto.FlashSuccess, msgEmployeeUpdated)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Delete removes an employee. The form must carry _method=delete.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !strings.EqualFold(r.FormValue("_method"), "delete") {
		h.view.renderError(w, r, apperr.New(apperr.KindValidation, "Unsupported form method."))
		return
	}

	id, err := employeeID(r)
	if err != nil {
		h.view.renderError(w, r, err)
		return
	}

	if err := h.employees.Delete(r.Context(), middleware.GetIdentity(r.Context()), id); err != nil {
		h.view.renderError(w, r, err)
		return
	}

	h.view.flash(w, dto.FlashSuccess, msgEmployeeDeleted)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *EmployeeHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, err := employeeID(r)
	if err != nil {
		h.view.renderError(w, r, err)
		return
	}

	emp, err := h.employees.Get(r.Context(), middleware.GetIdentity(r.Context()), id)
	if err != nil {
		h.view.renderError(w, r, err)
		return
	}

	view := dto.NewEmployeeView(emp)
	page := h.view.newPage(w, r)
	page.Employee = &view
	h.view.render(w, r, http.StatusOK, "employee_profile.html", page)
}

func (h *EmployeeHandler) addPage(w http.ResponseWriter, r *http.Request) (Page, error) {
	list, err := h.employees.List(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		return Page{}, err
	}
	page := h.view.newPage(w, r)
	page.Employees = dto.NewEmployeeViews(list)
	return page, nil
}

// employeeID parses the {id} route parameter. Malformed ids cannot name an
// employee, so they are reported as not found.
func employeeID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.NotFound("Employee not found.")
	}
	return id, nil
}

func formValue(r *http.Request, name string) *string {
	if _, ok := r.PostForm[name]; !ok {
		return nil
	}
	v := r.PostForm.Get(name)
	return &v
}

func isFormError(err error) bool {
	kind := apperr.KindOf(err)
	return kind == apperr.KindValidation || kind == apperr.KindConflict
}

func fillForm(page *Page, r *http.Request, fields []string, err error) {
	page.Form = dto.FormFrom(r.PostForm, fields...)
	if fe := apperr.FieldsOf(err); len(fe) > 0 {
		page.Form.Errors = fe
	} else {
		page.Error = apperr.Message(err)
	}
}
