package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/go-roster/internal/api/handlers"
	"github.com/hugh/go-roster/internal/api/middleware"
	"github.com/hugh/go-roster/internal/testutil"
	"github.com/hugh/go-roster/internal/web"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	t.Helper()
	tc := testutil.NewTestContext(t)

	tmpl, err := web.LoadTemplates()
	require.NoError(t, err)

	view := handlers.NewView(tmpl, testutil.DiscardLogger(), false)
	authHandler := handlers.NewAuthHandler(tc.Auth, view)
	pageHandler := handlers.NewPageHandler(tc.Employees, view)
	employeeHandler := handlers.NewEmployeeHandler(tc.Employees, view)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(tc.Auth))
		r.Get("/", pageHandler.Home)
		r.Get("/login", authHandler.LoginForm)
		r.Post("/login", authHandler.Login)
		r.Get("/register", authHandler.RegisterForm)
		r.Post("/register", authHandler.Register)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tc.Auth))
		r.Get("/logout", authHandler.Logout)
		r.Get("/dashboard", pageHandler.Dashboard)
		r.Get("/add_new_employee", employeeHandler.NewForm)
		r.Post("/add_new_employee", employeeHandler.Create)
		r.Get("/update_employee/{id}", employeeHandler.EditForm)
		r.Post("/update_employee/{id}", employeeHandler.Update)
		r.Post("/delete_emp/{id}", employeeHandler.Delete)
		r.Get("/singleemployeeprofile/{id}", employeeHandler.Profile)
	})

	return r, tc
}

func serve(router http.Handler, method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.FormRequest(method, path, form, cookies...))
	return rr
}

func serveRequest(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func employeeForm(name, email, phone string) url.Values {
	return url.Values{
		"name":         {name},
		"email":        {email},
		"phone":        {phone},
		"address":      {"12 Market Street"},
		"joining_date": {"2024-03-09"},
		"designation":  {"Engineer"},
	}
}
