package leave

import (
	"time"

	"github.com/google/uuid"
)

type Leave struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null"`
	EmployeeName string    `gorm:"type:varchar(150);not null"`

	LeaveType string    `gorm:"type:varchar(50);not null"`
	FromDate  time.Time `gorm:"type:date;not null"`
	ToDate    time.Time `gorm:"type:date;not null"`
	TotalDays int       `gorm:"not null"`
	Reason    string    `gorm:"type:text"`

	Status  string `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Message string `gorm:"type:text"`
	Mode    string `gorm:"type:varchar(10)"`
	LWPDays int    `gorm:"column:lwp_days;not null;default:0"`

	ApprovedFromDate  *time.Time `gorm:"type:date"`
	ApprovedToDate    *time.Time `gorm:"type:date"`
	ApprovedTotalDays int        `gorm:"not null;default:0"`
	SeenByEmployee    bool       `gorm:"not null;default:false"`

	DecidedBy *uuid.UUID `gorm:"type:uuid"`
	DecidedAt *time.Time
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Leave) TableName() string { return "leaves" }

// EmployeeRef is the slice of an employee row the ledger needs.
type EmployeeRef struct {
	ID   uuid.UUID
	Name string
}

// UsageKey groups year-to-date usage by employee and leave type.
type UsageKey struct {
	EmployeeID uuid.UUID
	LeaveType  string
}
