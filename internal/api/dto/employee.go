package dto

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hugh/go-roster/internal/database/models"
	"github.com/hugh/go-roster/pkg/phone"
)

const (
	// ProfileDateLayout renders joining dates as dd-mm-yyyy.
	ProfileDateLayout = "02-01-2006"
	// FormDateLayout is what <input type="date"> submits.
	FormDateLayout = "2006-01-02"
	// TimestampLayout renders last-updated times.
	TimestampLayout = "2006-01-02 15:04:05"
)

// EmployeeView is an employee prepared for templates.
type EmployeeView struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PhoneDisplay string
	Address      string
	Designation  string
	JoiningDate  string
	JoiningISO   string
	UpdatedAt    string
	UpdatedAgo   string
}

func NewEmployeeView(emp *models.Employee) EmployeeView {
	return EmployeeView{
		ID:           emp.ID.String(),
		Name:         emp.Name,
		Email:        emp.Email,
		Phone:        emp.Phone,
		PhoneDisplay: phone.Display(emp.Phone),
		Address:      emp.Address,
		Designation:  emp.Designation,
		JoiningDate:  emp.JoiningDate.Format(ProfileDateLayout),
		JoiningISO:   emp.JoiningDate.Format(FormDateLayout),
		UpdatedAt:    emp.UpdatedAt.Local().Format(TimestampLayout),
		UpdatedAgo:   humanize.RelTime(emp.UpdatedAt, time.Now(), "ago", "from now"),
	}
}

func NewEmployeeViews(emps []models.Employee) []EmployeeView {
	views := make([]EmployeeView, 0, len(emps))
	for i := range emps {
		views = append(views, NewEmployeeView(&emps[i]))
	}
	return views
}

// EmployeeForm prefills the update form from a stored employee.
func EmployeeForm(emp *models.Employee) *Form {
	f := NewForm()
	f.Values["name"] = emp.Name
	f.Values["email"] = emp.Email
	f.Values["phone"] = emp.Phone
	f.Values["address"] = emp.Address
	f.Values["designation"] = emp.Designation
	f.Values["joining_date"] = emp.JoiningDate.Format(FormDateLayout)
	return f
}
