package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Employee struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmployeeCode  string          `gorm:"type:varchar(20);not null"`
	Name          string          `gorm:"type:varchar(150);not null"`
	Email         string          `gorm:"type:varchar(150);not null"`
	Phone         string          `gorm:"type:varchar(30)"`
	Address       string
	DateOfJoining time.Time       `gorm:"type:date;not null"`
	Level         string          `gorm:"type:varchar(30)"`
	Experience    int             `gorm:"not null"`
	Role          string          `gorm:"type:varchar(20);not null"`
	Designation   string          `gorm:"type:varchar(100)"`
	Salary        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Employee) TableName() string { return "employees" }

// Account is the login row provisioned alongside an employee.
type Account struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid"`
	Email      string    `gorm:"type:varchar(150);not null"`
	Password   string    `gorm:"not null"`
	Role       string    `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Account) TableName() string { return "users" }

type Permission struct {
	EmployeeID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code       string    `gorm:"type:varchar(80);primaryKey"`
	Access     bool
}

func (Permission) TableName() string { return "employee_permissions" }
