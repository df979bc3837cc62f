package employeesalary

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeFlat       = "flat"
	TypePercentage = "percentage"

	CategoryEarning   = "earning"
	CategoryDeduction = "deduction"

	// BasicSalaryComponent is the implicit base of percentage components
	// that name no base of their own.
	BasicSalaryComponent = "BASIC SALARY"

	defaultCatalog = "default"
)

// CatalogComponent is a component HR may assign.
type CatalogComponent struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type ComponentGroup struct {
	ID         uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Name       string             `gorm:"type:varchar(100);not null"`
	Components []CatalogComponent `gorm:"type:jsonb;serializer:json"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ComponentGroup) TableName() string { return "salary_component_groups" }

// AssignedComponent is one computed line of an employee's salary.
type AssignedComponent struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Value    decimal.Decimal `json:"value"`
	Percent  decimal.Decimal `json:"percent"`
	Base     []string        `json:"base"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type EmployeeSalary struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey"`
	EmployeeID  uuid.UUID           `gorm:"type:uuid;not null"`
	Month       string              `gorm:"type:char(2);not null"`
	Year        int                 `gorm:"not null"`
	BasicSalary decimal.Decimal     `gorm:"type:numeric(14,2);not null"`
	GrossSalary decimal.Decimal     `gorm:"type:numeric(14,2);not null"`
	NetSalary   decimal.Decimal     `gorm:"type:numeric(14,2);not null"`
	Components  []AssignedComponent `gorm:"type:jsonb;serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (EmployeeSalary) TableName() string { return "employee_salaries" }
