package leave

import "go-hrpayroll/internal/shared/dateutil"

type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	LeaveType  string `json:"leave_type" binding:"required"`
	FromDate   string `json:"from_date" binding:"required"`
	ToDate     string `json:"to_date" binding:"required"`
	Reason     string `json:"reason"`
}

type UpdateStatusRequest struct {
	Status   string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	Message  string `json:"message"`
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

type LeaveResponse struct {
	ID                 string  `json:"id"`
	EmployeeID         string  `json:"employee_id"`
	EmployeeName       string  `json:"employee_name"`
	LeaveType          string  `json:"leave_type"`
	FromDate           string  `json:"from_date"`
	ToDate             string  `json:"to_date"`
	TotalDays          int     `json:"total_days"`
	Reason             string  `json:"reason"`
	Status             string  `json:"status"`
	Message            string  `json:"message"`
	Mode               string  `json:"mode"`
	LWPDays            int     `json:"lwp_days"`
	ApprovedFromDate   *string `json:"approved_from_date"`
	ApprovedToDate     *string `json:"approved_to_date"`
	ApprovedTotalDays  int     `json:"approved_total_days"`
	SeenByEmployee     bool    `json:"seen_by_employee"`
	DecidedAt          *string `json:"decided_at,omitempty"`
	Advisory           string  `json:"advisory,omitempty"`
	EligibilityWarning *string `json:"eligibility_warning,omitempty"`
}

type BalanceResponse struct {
	Categories []Balance `json:"categories"`
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:                l.ID.String(),
		EmployeeID:        l.EmployeeID.String(),
		EmployeeName:      l.EmployeeName,
		LeaveType:         l.LeaveType,
		FromDate:          dateutil.Format(l.FromDate),
		ToDate:            dateutil.Format(l.ToDate),
		TotalDays:         l.TotalDays,
		Reason:            l.Reason,
		Status:            l.Status,
		Message:           l.Message,
		Mode:              l.Mode,
		LWPDays:           l.LWPDays,
		ApprovedTotalDays: l.ApprovedTotalDays,
		SeenByEmployee:    l.SeenByEmployee,
	}
	if l.ApprovedFromDate != nil {
		v := dateutil.Format(*l.ApprovedFromDate)
		resp.ApprovedFromDate = &v
	}
	if l.ApprovedToDate != nil {
		v := dateutil.Format(*l.ApprovedToDate)
		resp.ApprovedToDate = &v
	}
	if l.DecidedAt != nil {
		v := l.DecidedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.DecidedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	out := make([]LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, mapToResponse(l))
	}
	return out
}
