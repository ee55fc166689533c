package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/go-roster/internal/database/models"
	"github.com/hugh/go-roster/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_ListsOnlyOwnOrganization(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	otherOrg, _, otherCookie := tc.SecondTenant("Other Org")
	testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Alice Mine")
	testutil.CreateTestEmployee(t, tc.DB, otherOrg.ID, "Bob Theirs")

	rr := serve(router, http.MethodGet, "/dashboard", nil, tc.Cookie)
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), "Alice Mine")
	assert.NotContains(t, rr.Body.String(), "Bob Theirs")

	rr = serve(router, http.MethodGet, "/dashboard", nil, otherCookie)
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), "Bob Theirs")
	assert.NotContains(t, rr.Body.String(), "Alice Mine")
}

func TestEmployeeHandler_Create(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	t.Run("form lists current employees", func(t *testing.T) {
		testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Existing Person")

		rr := serve(router, http.MethodGet, "/add_new_employee", nil, tc.Cookie)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Contains(t, rr.Body.String(), "Existing Person")
		assert.Contains(t, rr.Body.String(), `name="joining_date"`)
	})

	t.Run("success ignores a submitted organization_id", func(t *testing.T) {
		otherOrg, _, _ := tc.SecondTenant("")
		form := employeeForm("Ada Lovelace", "ada@example.com", testutil.NextPhone())
		form.Set("organization_id", otherOrg.ID.String())

		rr := serve(router, http.MethodPost, "/add_new_employee", form, tc.Cookie)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/dashboard", rr.Header().Get("Location"))

		var emp models.Employee
		require.NoError(t, tc.DB.Where("email = ?", "ada@example.com").First(&emp).Error)
		assert.Equal(t, tc.Org.ID, emp.OrganizationID)
		assert.Equal(t, "2024-03-09", emp.JoiningDate.Format("2006-01-02"))
	})

	t.Run("validation errors re-render with values", func(t *testing.T) {
		form := employeeForm("", "not-an-email", testutil.NextPhone())

		rr := serve(router, http.MethodPost, "/add_new_employee", form, tc.Cookie)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		body := rr.Body.String()
		assert.Contains(t, body, "Name is required.")
		assert.Contains(t, body, "Enter a valid email address.")
		assert.Contains(t, body, `value="not-an-email"`)
	})

	t.Run("short phone is stored as entered", func(t *testing.T) {
		rr := serve(router, http.MethodPost, "/add_new_employee", employeeForm("Short Phone", "shortphone@example.com", "12"), tc.Cookie)
		assert.Equal(t, http.StatusSeeOther, rr.Code)

		var emp models.Employee
		require.NoError(t, tc.DB.Where("email = ?", "shortphone@example.com").First(&emp).Error)
		assert.Equal(t, "12", emp.Phone)
	})

	t.Run("phone too long", func(t *testing.T) {
		rr := serve(router, http.MethodPost, "/add_new_employee", employeeForm("Long Phone", "longphone@example.com", "1234567890123456"), tc.Cookie)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		assert.Contains(t, rr.Body.String(), "Phone must be at most 15 characters.")
	})

	t.Run("missing address", func(t *testing.T) {
		form := employeeForm("No Address", "noaddress@example.com", testutil.NextPhone())
		form.Set("address", "")

		rr := serve(router, http.MethodPost, "/add_new_employee", form, tc.Cookie)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		assert.Contains(t, rr.Body.String(), "Address is required.")
	})

	t.Run("duplicate email", func(t *testing.T) {
		existing := testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Taken Email")

		rr := serve(router, http.MethodPost, "/add_new_employee", employeeForm("Someone", existing.Email, testutil.NextPhone()), tc.Cookie)
		testutil.AssertStatus(t, rr, http.StatusConflict)
		assert.Contains(t, rr.Body.String(), "An employee with this email already exists.")
	})
}

func TestEmployeeHandler_Profile(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	emp := testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Profile Person")
	otherOrg, _, _ := tc.SecondTenant("")
	foreign := testutil.CreateTestEmployee(t, tc.DB, otherOrg.ID, "Foreign Person")

	t.Run("own employee", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/singleemployeeprofile/"+emp.ID.String(), nil, tc.Cookie)
		testutil.AssertStatus(t, rr, http.StatusOK)
		body := rr.Body.String()
		assert.Contains(t, body, "Profile Person")
		assert.Contains(t, body, "15-01-2024")
		assert.Contains(t, body, "Last updated")
	})

	t.Run("another organization's employee", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/singleemployeeprofile/"+foreign.ID.String(), nil, tc.Cookie)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
		assert.NotContains(t, rr.Body.String(), "Foreign Person")
	})

	t.Run("unknown id", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/singleemployeeprofile/"+uuid.New().String(), nil, tc.Cookie)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
		assert.Contains(t, rr.Body.String(), "Employee not found.")
	})

	t.Run("malformed id", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/singleemployeeprofile/42", nil, tc.Cookie)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestEmployeeHandler_Update(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	emp := testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Before Name")
	path := "/update_employee/" + emp.ID.String()

	t.Run("form is prefilled", func(t *testing.T) {
		rr := serve(router, http.MethodGet, path, nil, tc.Cookie)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Contains(t, rr.Body.String(), `value="Before Name"`)
	})

	t.Run("success keeps joining date", func(t *testing.T) {
		form := url.Values{
			"name":         {"After Name"},
			"designation":  {"Lead"},
			"joining_date": {"1999-01-01"},
		}

		rr := serve(router, http.MethodPost, path, form, tc.Cookie)
		assert.Equal(t, http.StatusSeeOther, rr.Code)

		var got models.Employee
		require.NoError(t, tc.DB.First(&got, "id = ?", emp.ID).Error)
		assert.Equal(t, "After Name", got.Name)
		assert.Equal(t, "Lead", got.Designation)
		assert.Equal(t, emp.Email, got.Email)
		assert.Equal(t, "2024-01-15", got.JoiningDate.Format("2006-01-02"))
	})

	t.Run("validation error", func(t *testing.T) {
		rr := serve(router, http.MethodPost, path, url.Values{"email": {"nope"}}, tc.Cookie)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		assert.Contains(t, rr.Body.String(), "Enter a valid email address.")
	})

	t.Run("another organization cannot update", func(t *testing.T) {
		_, _, otherCookie := tc.SecondTenant("")

		rr := serve(router, http.MethodPost, path, url.Values{"name": {"Hijacked"}}, otherCookie)
		testutil.AssertStatus(t, rr, http.StatusForbidden)

		var got models.Employee
		require.NoError(t, tc.DB.First(&got, "id = ?", emp.ID).Error)
		assert.Equal(t, "After Name", got.Name)
	})
}

func TestEmployeeHandler_Delete(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	emp := testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Leaving Soon")
	path := "/delete_emp/" + emp.ID.String()

	t.Run("other _method is rejected", func(t *testing.T) {
		rr := serve(router, http.MethodPost, path, url.Values{"_method": {"put"}}, tc.Cookie)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		assert.Contains(t, rr.Body.String(), "Unsupported form method.")
	})

	t.Run("absent _method is rejected", func(t *testing.T) {
		rr := serve(router, http.MethodPost, path, url.Values{"name": {"ignored"}}, tc.Cookie)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		assert.Contains(t, rr.Body.String(), "Unsupported form method.")

		var count int64
		tc.DB.Model(&models.Employee{}).Where("id = ?", emp.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("_method is case-insensitive", func(t *testing.T) {
		other := testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Upper Case")
		rr := serve(router, http.MethodPost, "/delete_emp/"+other.ID.String(), url.Values{"_method": {"DELETE"}}, tc.Cookie)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
	})

	t.Run("another organization cannot delete", func(t *testing.T) {
		_, _, otherCookie := tc.SecondTenant("")

		rr := serve(router, http.MethodPost, path, url.Values{"_method": {"delete"}}, otherCookie)
		testutil.AssertStatus(t, rr, http.StatusForbidden)

		var count int64
		tc.DB.Model(&models.Employee{}).Where("id = ?", emp.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("success flashes and redirects", func(t *testing.T) {
		rr := serve(router, http.MethodPost, path, url.Values{"_method": {"delete"}}, tc.Cookie)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/dashboard", rr.Header().Get("Location"))

		flash := testutil.ResponseCookie(rr, "flash")
		require.NotNil(t, flash)

		dash := serve(router, http.MethodGet, "/dashboard", nil, tc.Cookie, flash)
		testutil.AssertStatus(t, dash, http.StatusOK)
		assert.Contains(t, dash.Body.String(), "Employee deleted successfully.")
		assert.NotContains(t, dash.Body.String(), "Leaving Soon")
	})

	t.Run("second delete is not found", func(t *testing.T) {
		rr := serve(router, http.MethodPost, path, url.Values{"_method": {"delete"}}, tc.Cookie)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestErrorResponse_JSON(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	req := testutil.FormRequest(http.MethodGet, "/singleemployeeprofile/"+uuid.New().String(), nil, tc.Cookie)
	req.Header.Set("Accept", "application/json")

	rr := serveRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Employee not found."}`, rr.Body.String())
}
