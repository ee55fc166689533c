package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-roster/internal/api/dto"
	"github.com/hugh/go-roster/internal/database/models"
	"github.com/hugh/go-roster/internal/web"
)

func benchEmployees(n int) []models.Employee {
	emps := make([]models.Employee, n)
	for i := range emps {
		emps[i] = models.Employee{
			Base: models.Base{
				ID:        uuid.New(),
				CreatedAt: time.Now(),
				UpdatedAt: time.Now().Add(-time.Duration(i) * time.Minute),
			},
			Name:        fmt.Sprintf("Employee %d", i),
			Email:       fmt.Sprintf("employee%d@example.com", i),
			Phone:       fmt.Sprintf("+1650253%04d", i),
			Address:     "12 Market Street",
			JoiningDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Designation: "Engineer",
		}
	}
	return emps
}

// BenchmarkEmployeeViews measures the model to template conversion done on
// every dashboard render.
func BenchmarkEmployeeViews(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		emps := benchEmployees(n)
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = dto.NewEmployeeViews(emps)
			}
		})
	}
}

func BenchmarkFlashRoundTrip(b *testing.B) {
	f := dto.Flash{Kind: dto.FlashSuccess, Message: "Employee deleted successfully."}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		setFlash(rec, f, false)

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(rec.Result().Cookies()[0])
		_ = popFlash(httptest.NewRecorder(), req)
	}
}

func BenchmarkRenderDashboard(b *testing.B) {
	tmpl, err := web.LoadTemplates()
	if err != nil {
		b.Fatal(err)
	}

	for _, n := range []int{10, 100} {
		page := Page{
			Form:      dto.NewForm(),
			Employees: dto.NewEmployeeViews(benchEmployees(n)),
			Count:     int64(n),
		}
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = tmpl.Render(io.Discard, "add_employee.html", page)
			}
		})
	}
}

func BenchmarkParallelEmployeeViews(b *testing.B) {
	emps := benchEmployees(100)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = dto.NewEmployeeViews(emps)
		}
	})
}
