package leavepolicy

import (
	"time"

	"github.com/google/uuid"
)

type LeavePolicy struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Version    int        `gorm:"not null;uniqueIndex"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time
	LeaveTypes []LeaveTypePolicy `gorm:"foreignKey:PolicyID"`
}

func (LeavePolicy) TableName() string { return "leave_policies" }

type LeaveTypePolicy struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	PolicyID          uuid.UUID `gorm:"type:uuid;not null"`
	Type              string    `gorm:"column:type"`
	Mode              string
	Frequency         string
	MaxPerRequest     int
	NormalDays        int
	AllowedAfterLimit bool
}

func (LeaveTypePolicy) TableName() string { return "leave_type_policies" }
