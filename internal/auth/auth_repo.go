package auth

import (
	"context"
	"strings"

	"go-hrpayroll/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// base joins the live employee so deleted employees cannot sign in and the
// employee's current role wins over the copy on the account.
func (r *repository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.employee_id, users.email, users.password, " +
			"COALESCE(employees.role, users.role) AS role, users.created_at, users.updated_at, " +
			"COALESCE(employees.name, '') AS name").
		Joins("JOIN employees ON employees.id = users.employee_id AND employees.deleted_at IS NULL")
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.base(ctx).
		Where("lower(users.email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Take(&user).Error
	if err != nil {
		return nil, err
	}
	normalizeRole(&user)
	return &user, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	if err := r.base(ctx).Where("users.id = ?", id).Take(&user).Error; err != nil {
		return nil, err
	}
	normalizeRole(&user)
	return &user, nil
}

func normalizeRole(user *User) {
	user.Role = strings.ToUpper(strings.TrimSpace(user.Role))
	if user.Role == "" {
		user.Role = domain.RoleEmployee
	}
}
