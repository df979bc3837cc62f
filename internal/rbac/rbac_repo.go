package rbac

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	GetEmployeeRole(ctx context.Context, employeeID string) (string, error)
	GetRolePermissions(ctx context.Context, role string) ([]RolePermissionRow, error)
	GetEmployeeGrants(ctx context.Context, employeeID string) ([]EmployeeGrantRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type RolePermissionRow struct {
	Role     string
	Resource string
	Action   string
}

type EmployeeGrantRow struct {
	EmployeeID string
	Code       string
	Access     bool
}

var ErrEmployeeNotFound = errors.New("rbac: employee not found")

func (r *repository) GetEmployeeRole(ctx context.Context, employeeID string) (string, error) {
	var role string
	err := r.db.WithContext(ctx).
		Table("employees").
		Select("role").
		Where("id = ? AND deleted_at IS NULL", employeeID).
		Limit(1).
		Scan(&role).Error
	if err != nil {
		return "", err
	}
	if role == "" {
		return "", ErrEmployeeNotFound
	}
	return role, nil
}

func (r *repository) GetRolePermissions(ctx context.Context, role string) ([]RolePermissionRow, error) {
	var result []RolePermissionRow
	err := r.db.WithContext(ctx).
		Table("role_permissions").
		Select("role, resource, action").
		Where("role = ?", role).
		Scan(&result).Error
	return result, err
}

func (r *repository) GetEmployeeGrants(ctx context.Context, employeeID string) ([]EmployeeGrantRow, error) {
	var result []EmployeeGrantRow
	err := r.db.WithContext(ctx).
		Table("employee_permissions").
		Select("employee_id, code, access").
		Where("employee_id = ?", employeeID).
		Scan(&result).Error
	return result, err
}
