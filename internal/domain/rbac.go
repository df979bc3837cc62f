package domain

const (
	RoleEmployee = "EMPLOYEE"
	RoleHR       = "HR"
	RoleAdmin    = "ADMIN"
)

// EnforceRequest asks whether an employee acting with a role may perform
// action on resource.
type EnforceRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Role       string `json:"role"`
	Resource   string `json:"resource" binding:"required"`
	Action     string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

// PermissionGrant is a per-employee operation override, code "resource:action".
type PermissionGrant struct {
	Code   string `json:"code"`
	Access bool   `json:"access"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleHR, RoleAdmin:
		return true
	}
	return false
}
