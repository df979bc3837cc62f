package salaryslip

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EntryStatusSuccess = "success"
	EntryStatusFailed  = "failed"
)

// Snapshot is the saved batch of slips for one month; one row per period.
type Snapshot struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Month       string     `gorm:"type:char(2);not null"`
	Year        int        `gorm:"not null"`
	GeneratedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Entries     []Entry `gorm:"foreignKey:SnapshotID"`
}

func (Snapshot) TableName() string { return "salary_slip_snapshots" }

type Entry struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SnapshotID       uuid.UUID       `gorm:"type:uuid;not null"`
	EmployeeID       uuid.UUID       `gorm:"type:uuid;not null"`
	EmployeeName     string          `gorm:"type:varchar(150);not null"`
	Designation      string          `gorm:"type:varchar(100)"`
	TotalWorkingDays int             `gorm:"not null"`
	PresentDays      int             `gorm:"not null"`
	PaidLeaves       int             `gorm:"not null"`
	UnpaidLeaves     int             `gorm:"not null"`
	GrossSalary      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	DeductionAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	NetSalary        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	LeavesBreakup    map[string]int  `gorm:"type:jsonb;serializer:json"`
	Status           string          `gorm:"type:varchar(10);not null"`
	ErrorMessage     *string         `gorm:"type:text"`
	CreatedAt        time.Time
}

func (Entry) TableName() string { return "salary_slip_entries" }

// employeeRow is read from the employees table owned by the employee module.
type employeeRow struct {
	ID          uuid.UUID
	Name        string
	Designation *string
	Salary      decimal.Decimal
}

func (e employeeRow) info() EmployeeInfo {
	designation := "Employee"
	if e.Designation != nil && *e.Designation != "" {
		designation = *e.Designation
	}
	return EmployeeInfo{
		ID:          e.ID.String(),
		Name:        e.Name,
		Designation: designation,
		Salary:      e.Salary,
	}
}
