package auth

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EmployeeID *uuid.UUID `gorm:"type:uuid"`
	Email      string     `gorm:"type:varchar(150);not null"`
	Password   string     `gorm:"not null"`
	Role       string     `gorm:"type:varchar(20);not null;default:'EMPLOYEE'"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Name comes from the linked employee row.
	Name string `gorm:"->;-:migration"`
}

func (User) TableName() string { return "users" }
