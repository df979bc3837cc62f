package increment

import (
	"go-hrpayroll/internal/shared/dateutil"
)

type FineResponse struct {
	ID      string  `json:"id"`
	Date    string  `json:"date"`
	Amount  float64 `json:"amount"`
	Reason  string  `json:"reason"`
	LeaveID *string `json:"leave_id,omitempty"`
}

type IncrementResponse struct {
	EmployeeID          string         `json:"employee_id"`
	Name                string         `json:"name"`
	Level               string         `json:"level"`
	Experience          int            `json:"experience"`
	CurrentSalary       float64        `json:"current_salary"`
	AvgRating           int            `json:"avg_rating"`
	RatingLabel         string         `json:"rating_label"`
	BaseIncrement       int            `json:"base_increment"`
	SpecialIncrement    int            `json:"special_increment"`
	TotalIncrement      int            `json:"total_increment"`
	GrossNewSalary      float64        `json:"gross_new_salary"`
	TotalFineDeductions float64        `json:"total_fine_deductions"`
	Deductions          []FineResponse `json:"deductions"`
	NetNewSalary        float64        `json:"net_new_salary"`
}

type SpecialIncrementResponse struct {
	EmployeeID     string `json:"employee_id"`
	Name           string `json:"name"`
	DateOfJoining  string `json:"date_of_joining"`
	Years          int    `json:"years"`
	Milestone      string `json:"milestone"`
	ThresholdYears int    `json:"threshold_years"`
}

type CriterionRequest struct {
	Rating         int    `json:"rating" binding:"required,min=1,max=5"`
	Label          string `json:"label" binding:"required"`
	IncrementRange string `json:"increment_range" binding:"required"`
}

type MilestoneRequest struct {
	Milestone      string   `json:"milestone" binding:"required"`
	ThresholdYears int      `json:"threshold_years" binding:"omitempty,min=1"`
	Details        []string `json:"details"`
}

type PolicyRequest struct {
	Title             string             `json:"title" binding:"required"`
	Criteria          []CriterionRequest `json:"criteria" binding:"required,min=1,dive"`
	SpecialIncrements []MilestoneRequest `json:"special_increments" binding:"dive"`
}

type PolicyResponse struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Criteria          []Criterion `json:"criteria"`
	SpecialIncrements []Milestone `json:"special_increments"`
	UpdatedAt         string      `json:"updated_at"`
}

type AddFineRequest struct {
	Date    string  `json:"date" binding:"required"`
	Amount  float64 `json:"amount" binding:"required,gt=0"`
	Reason  string  `json:"reason" binding:"required"`
	LeaveID string  `json:"leave_id" binding:"omitempty,uuid"`
}

type RecordResponse struct {
	ID                  string         `json:"id"`
	EmployeeID          string         `json:"employee_id"`
	Name                string         `json:"name"`
	DateOfJoining       string         `json:"date_of_joining"`
	CurrentSalary       float64        `json:"current_salary"`
	PerformanceRating   int            `json:"performance_rating"`
	TotalFineDeductions float64        `json:"total_fine_deductions"`
	Deductions          []FineResponse `json:"deductions"`
}

func mapFines(fines []Fine) []FineResponse {
	out := make([]FineResponse, 0, len(fines))
	for _, f := range fines {
		item := FineResponse{
			ID:     f.ID.String(),
			Date:   dateutil.Format(f.Date),
			Amount: f.Amount.InexactFloat64(),
			Reason: f.Reason,
		}
		if f.LeaveID != nil {
			id := f.LeaveID.String()
			item.LeaveID = &id
		}
		out = append(out, item)
	}
	return out
}

func mapResult(r Result) IncrementResponse {
	return IncrementResponse{
		EmployeeID:          r.Employee.ID,
		Name:                r.Employee.Name,
		Level:               r.Level,
		Experience:          r.Experience,
		CurrentSalary:       r.Employee.Salary.InexactFloat64(),
		AvgRating:           r.AvgRating,
		RatingLabel:         r.RatingLabel,
		BaseIncrement:       r.BaseIncrement,
		SpecialIncrement:    r.SpecialIncrement,
		TotalIncrement:      r.TotalIncrement,
		GrossNewSalary:      r.GrossNewSalary.InexactFloat64(),
		TotalFineDeductions: r.TotalFines.InexactFloat64(),
		Deductions:          mapFines(r.Deductions),
		NetNewSalary:        r.NetNewSalary.InexactFloat64(),
	}
}

func mapPolicy(p Policy) PolicyResponse {
	resp := PolicyResponse{
		ID:                p.ID.String(),
		Title:             p.Title,
		Criteria:          p.Criteria,
		SpecialIncrements: p.SpecialIncrements,
		UpdatedAt:         p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if resp.Criteria == nil {
		resp.Criteria = []Criterion{}
	}
	if resp.SpecialIncrements == nil {
		resp.SpecialIncrements = []Milestone{}
	}
	return resp
}

func mapRecord(r Record) RecordResponse {
	return RecordResponse{
		ID:                  r.ID.String(),
		EmployeeID:          r.EmployeeID.String(),
		Name:                r.Name,
		DateOfJoining:       dateutil.Format(r.DateOfJoining),
		CurrentSalary:       r.CurrentSalary.InexactFloat64(),
		PerformanceRating:   r.PerformanceRating,
		TotalFineDeductions: r.TotalFineDeductions.InexactFloat64(),
		Deductions:          mapFines(r.Deductions),
	}
}

func (r PolicyRequest) toPolicy() Policy {
	p := Policy{Title: r.Title}
	for _, c := range r.Criteria {
		p.Criteria = append(p.Criteria, Criterion{Rating: c.Rating, Label: c.Label, IncrementRange: c.IncrementRange})
	}
	for _, m := range r.SpecialIncrements {
		p.SpecialIncrements = append(p.SpecialIncrements, Milestone{
			Milestone:      m.Milestone,
			ThresholdYears: m.ThresholdYears,
			Details:        m.Details,
		})
	}
	return p
}
