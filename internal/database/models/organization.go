package models

type Organization struct {
	Base
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`

	Users     []User     `gorm:"foreignKey:OrganizationID" json:"-"`
	Employees []Employee `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (Organization) TableName() string {
	return "organizations"
}
