package employeesalary

import (
	"time"

	"github.com/shopspring/decimal"
)

type CatalogComponentRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Category string `json:"category" binding:"required,oneof=earning deduction"`
}

type SaveCatalogRequest struct {
	Components []CatalogComponentRequest `json:"components" binding:"required,min=1,dive"`
}

type CatalogResponse struct {
	ID         string             `json:"id,omitempty"`
	Components []CatalogComponent `json:"components"`
	UpdatedAt  *time.Time         `json:"updated_at,omitempty"`
}

type ComponentRequest struct {
	Name     string   `json:"name" binding:"required,max=100"`
	Type     string   `json:"type" binding:"required,oneof=flat percentage"`
	Value    float64  `json:"value" binding:"gte=0"`
	Percent  float64  `json:"percent" binding:"gte=0"`
	Base     []string `json:"base"`
	Category string   `json:"category" binding:"omitempty,oneof=earning deduction"`
}

// AssignRequest defaults to the current month when the period is omitted.
type AssignRequest struct {
	Month      string             `json:"month"`
	Year       int                `json:"year"`
	Components []ComponentRequest `json:"components" binding:"required,dive"`
}

type AssignedComponentResponse struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Value    float64  `json:"value,omitempty"`
	Percent  float64  `json:"percent,omitempty"`
	Base     []string `json:"base"`
	Category string   `json:"category"`
	Amount   float64  `json:"amount"`
}

type AssignmentResponse struct {
	ID          string                      `json:"id,omitempty"`
	EmployeeID  string                      `json:"employee_id"`
	Month       string                      `json:"month,omitempty"`
	Year        int                         `json:"year,omitempty"`
	BasicSalary float64                     `json:"basic_salary"`
	GrossSalary float64                     `json:"gross_salary"`
	NetSalary   float64                     `json:"net_salary"`
	Components  []AssignedComponentResponse `json:"components"`
}

func toInputs(reqs []ComponentRequest) []ComponentInput {
	out := make([]ComponentInput, len(reqs))
	for i, r := range reqs {
		out[i] = ComponentInput{
			Name:     r.Name,
			Type:     r.Type,
			Value:    decimal.NewFromFloat(r.Value),
			Percent:  decimal.NewFromFloat(r.Percent),
			Base:     r.Base,
			Category: r.Category,
		}
	}
	return out
}

func mapAssignment(s EmployeeSalary) AssignmentResponse {
	resp := AssignmentResponse{
		ID:          s.ID.String(),
		EmployeeID:  s.EmployeeID.String(),
		Month:       monthName(s.Month),
		Year:        s.Year,
		BasicSalary: s.BasicSalary.InexactFloat64(),
		GrossSalary: s.GrossSalary.InexactFloat64(),
		NetSalary:   s.NetSalary.InexactFloat64(),
		Components:  make([]AssignedComponentResponse, len(s.Components)),
	}
	for i, c := range s.Components {
		base := c.Base
		if base == nil {
			base = []string{}
		}
		resp.Components[i] = AssignedComponentResponse{
			Name:     c.Name,
			Type:     c.Type,
			Value:    c.Value.InexactFloat64(),
			Percent:  c.Percent.InexactFloat64(),
			Base:     base,
			Category: c.Category,
			Amount:   c.Amount.InexactFloat64(),
		}
	}
	return resp
}

func mapCatalog(g ComponentGroup) CatalogResponse {
	updated := g.UpdatedAt
	components := g.Components
	if components == nil {
		components = []CatalogComponent{}
	}
	return CatalogResponse{ID: g.ID.String(), Components: components, UpdatedAt: &updated}
}
