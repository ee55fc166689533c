package models

import (
	"time"

	"github.com/google/uuid"
)

// Employee belongs to exactly one organization. Phone is stored in E.164.
// Address may hold an age-sealed value; the employees service opens it on
// read.
type Employee struct {
	Base
	Name           string    `gorm:"size:100;not null" json:"name"`
	Email          string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone          string    `gorm:"size:16;uniqueIndex;not null" json:"phone"`
	Address        string    `gorm:"type:text;not null" json:"address"`
	JoiningDate    time.Time `gorm:"type:date;not null" json:"joining_date"`
	Designation    string    `gorm:"size:100;not null" json:"designation"`
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (Employee) TableName() string {
	return "employees"
}
