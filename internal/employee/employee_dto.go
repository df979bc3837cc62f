package employee

import "go-hrpayroll/internal/domain"

type CreateEmployeeRequest struct {
	Name          string  `json:"name" binding:"required,max=150"`
	Email         string  `json:"email" binding:"required,email"`
	Phone         string  `json:"phone" binding:"omitempty,max=30"`
	Address       string  `json:"address"`
	DateOfJoining string  `json:"date_of_joining" binding:"required"`
	Level         string  `json:"level" binding:"omitempty,max=30"`
	Role          string  `json:"role" binding:"omitempty,oneof=EMPLOYEE HR ADMIN"`
	Designation   string  `json:"designation" binding:"omitempty,max=100"`
	Salary        float64 `json:"salary" binding:"gte=0"`
}

type UpdateEmployeeRequest struct {
	Name          string  `json:"name" binding:"required,max=150"`
	Email         string  `json:"email" binding:"required,email"`
	Phone         string  `json:"phone" binding:"omitempty,max=30"`
	Address       string  `json:"address"`
	DateOfJoining string  `json:"date_of_joining" binding:"required"`
	Level         string  `json:"level" binding:"omitempty,max=30"`
	Designation   string  `json:"designation" binding:"omitempty,max=100"`
	Salary        float64 `json:"salary" binding:"gte=0"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=EMPLOYEE HR ADMIN"`
}

type UpdatePermissionsRequest struct {
	Permissions []domain.PermissionGrant `json:"permissions" binding:"required,dive"`
}

type EmployeeResponse struct {
	ID            string  `json:"id"`
	EmployeeCode  string  `json:"employee_code"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone,omitempty"`
	Address       string  `json:"address,omitempty"`
	DateOfJoining string  `json:"date_of_joining"`
	Level         string  `json:"level,omitempty"`
	Experience    int     `json:"experience"`
	Role          string  `json:"role"`
	Designation   string  `json:"designation,omitempty"`
	Salary        float64 `json:"salary"`
}

type OptionResponse struct {
	ID           string `json:"id"`
	EmployeeCode string `json:"employee_code"`
	Name         string `json:"name"`
	Designation  string `json:"designation,omitempty"`
}
