package salaryslip

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GenerateQuery struct {
	EmployeeID string `form:"employee_id" binding:"required"`
	Month      string `form:"month" binding:"required"`
	Year       int    `form:"year" binding:"required"`
}

type PeriodQuery struct {
	Month string `form:"month" binding:"required"`
	Year  int    `form:"year" binding:"required"`
}

type SlipResponse struct {
	EmployeeName     string         `json:"employee_name"`
	EmployeeID       string         `json:"employee_id"`
	Designation      string         `json:"designation"`
	Month            string         `json:"month"`
	Year             int            `json:"year"`
	TotalWorkingDays int            `json:"total_working_days"`
	PresentDays      int            `json:"present_days"`
	PaidLeaves       int            `json:"paid_leaves"`
	UnpaidLeaves     int            `json:"unpaid_leaves"`
	GrossSalary      float64        `json:"gross_salary"`
	DeductionAmount  float64        `json:"deduction_amount"`
	NetSalary        float64        `json:"net_salary"`
	LeavesBreakup    map[string]int `json:"leaves_breakup"`
}

type SaveSlipRequest struct {
	EmployeeID       string         `json:"employee_id" binding:"required,uuid"`
	EmployeeName     string         `json:"employee_name" binding:"required"`
	Designation      string         `json:"designation"`
	TotalWorkingDays int            `json:"total_working_days" binding:"gte=0"`
	PresentDays      int            `json:"present_days"`
	PaidLeaves       int            `json:"paid_leaves" binding:"gte=0"`
	UnpaidLeaves     int            `json:"unpaid_leaves" binding:"gte=0"`
	GrossSalary      float64        `json:"gross_salary" binding:"gte=0"`
	DeductionAmount  float64        `json:"deduction_amount" binding:"gte=0"`
	NetSalary        float64        `json:"net_salary"`
	LeavesBreakup    map[string]int `json:"leaves_breakup"`
	Status           string         `json:"status" binding:"omitempty,oneof=success failed"`
	ErrorMessage     string         `json:"error_message"`
}

type SaveAllRequest struct {
	Month string            `json:"month" binding:"required"`
	Year  int               `json:"year" binding:"required"`
	Slips []SaveSlipRequest `json:"slips" binding:"required,min=1,dive"`
}

type RunRequest struct {
	Month string `json:"month" binding:"required"`
	Year  int    `json:"year" binding:"required"`
}

type SnapshotEntryResponse struct {
	SlipResponse
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type SnapshotResponse struct {
	ID        string                  `json:"id"`
	Month     string                  `json:"month"`
	Year      int                     `json:"year"`
	CreatedAt string                  `json:"created_at"`
	UpdatedAt string                  `json:"updated_at"`
	Slips     []SnapshotEntryResponse `json:"slips"`
	Failed    int                     `json:"failed"`
}

func toSlipResponse(emp EmployeeInfo, month string, year int, slip Slip) SlipResponse {
	return SlipResponse{
		EmployeeName:     emp.Name,
		EmployeeID:       emp.ID,
		Designation:      emp.Designation,
		Month:            month,
		Year:             year,
		TotalWorkingDays: slip.TotalWorkingDays,
		PresentDays:      slip.PresentDays,
		PaidLeaves:       slip.PaidLeaves,
		UnpaidLeaves:     slip.UnpaidLeaves,
		GrossSalary:      slip.GrossSalary.InexactFloat64(),
		DeductionAmount:  slip.DeductionAmount.InexactFloat64(),
		NetSalary:        slip.NetSalary.InexactFloat64(),
		LeavesBreakup:    slip.LeavesBreakup,
	}
}

func (r SaveSlipRequest) toEntry(snapshotID uuid.UUID) Entry {
	status := r.Status
	if status == "" {
		status = EntryStatusSuccess
	}
	var errMsg *string
	if r.ErrorMessage != "" {
		msg := r.ErrorMessage
		errMsg = &msg
	}
	return Entry{
		ID:               uuid.New(),
		SnapshotID:       snapshotID,
		EmployeeID:       uuid.MustParse(r.EmployeeID),
		EmployeeName:     r.EmployeeName,
		Designation:      r.Designation,
		TotalWorkingDays: r.TotalWorkingDays,
		PresentDays:      r.PresentDays,
		PaidLeaves:       r.PaidLeaves,
		UnpaidLeaves:     r.UnpaidLeaves,
		GrossSalary:      decimal.NewFromFloat(r.GrossSalary),
		DeductionAmount:  decimal.NewFromFloat(r.DeductionAmount),
		NetSalary:        decimal.NewFromFloat(r.NetSalary),
		LeavesBreakup:    r.LeavesBreakup,
		Status:           status,
		ErrorMessage:     errMsg,
	}
}

func mapSnapshotResponse(s Snapshot) SnapshotResponse {
	resp := SnapshotResponse{
		ID:        s.ID.String(),
		Month:     s.Month,
		Year:      s.Year,
		CreatedAt: s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: s.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Slips:     make([]SnapshotEntryResponse, 0, len(s.Entries)),
	}
	for _, e := range s.Entries {
		item := SnapshotEntryResponse{
			SlipResponse: SlipResponse{
				EmployeeName:     e.EmployeeName,
				EmployeeID:       e.EmployeeID.String(),
				Designation:      e.Designation,
				Month:            s.Month,
				Year:             s.Year,
				TotalWorkingDays: e.TotalWorkingDays,
				PresentDays:      e.PresentDays,
				PaidLeaves:       e.PaidLeaves,
				UnpaidLeaves:     e.UnpaidLeaves,
				GrossSalary:      e.GrossSalary.InexactFloat64(),
				DeductionAmount:  e.DeductionAmount.InexactFloat64(),
				NetSalary:        e.NetSalary.InexactFloat64(),
				LeavesBreakup:    e.LeavesBreakup,
			},
			Status: e.Status,
		}
		if e.ErrorMessage != nil {
			item.ErrorMessage = *e.ErrorMessage
		}
		if e.Status == EntryStatusFailed {
			resp.Failed++
		}
		resp.Slips = append(resp.Slips, item)
	}
	return resp
}
