package increment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Criterion struct {
	Rating         int    `json:"rating"`
	Label          string `json:"label"`
	IncrementRange string `json:"increment_range"`
}

type Milestone struct {
	Milestone      string   `json:"milestone"`
	ThresholdYears int      `json:"threshold_years,omitempty"`
	Details        []string `json:"details,omitempty"`
}

type Policy struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Title             string      `gorm:"type:varchar(150);not null"`
	Criteria          []Criterion `gorm:"type:jsonb;serializer:json;not null"`
	SpecialIncrements []Milestone `gorm:"column:special_increments;type:jsonb;serializer:json;not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Policy) TableName() string { return "increment_policies" }

// Record is created once per employee by the employee_created consumer and
// carries the fine ledger.
type Record struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmployeeID          uuid.UUID       `gorm:"type:uuid;not null"`
	Name                string          `gorm:"type:varchar(150);not null"`
	DateOfJoining       time.Time       `gorm:"type:date;not null"`
	CurrentSalary       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PerformanceRating   int             `gorm:"not null"`
	TotalFineDeductions decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Deductions          []Fine          `gorm:"foreignKey:RecordID"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (Record) TableName() string { return "salary_increment_records" }

type Fine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RecordID  uuid.UUID       `gorm:"type:uuid;not null"`
	Date      time.Time       `gorm:"type:date;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Reason    string          `gorm:"type:text;not null"`
	LeaveID   *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt time.Time
}

func (Fine) TableName() string { return "fine_deductions" }

// employeeRow is read from the employees table owned by the employee module.
type employeeRow struct {
	ID            uuid.UUID
	Name          string
	DateOfJoining time.Time
	Salary        decimal.Decimal
}

type ratingRow struct {
	EmployeeID uuid.UUID
	Total      int64
	Rated      int64
}
