package leavepolicy

import "time"

type LeaveTypeRequest struct {
	Type              string `json:"type" binding:"required"`
	Mode              string `json:"mode" binding:"required,oneof=Paid Free"`
	Frequency         string `json:"frequency" binding:"required,oneof=Monthly Yearly"`
	MaxPerRequest     int    `json:"max_per_request" binding:"required,gte=1"`
	NormalDays        int    `json:"normal_days" binding:"required,gte=1"`
	AllowedAfterLimit bool   `json:"allowed_after_limit"`
}

type SavePolicyRequest struct {
	LeaveTypes []LeaveTypeRequest `json:"leave_types" binding:"required,min=1,dive"`
}

type LeaveTypeResponse struct {
	Type              string `json:"type"`
	Mode              string `json:"mode"`
	Frequency         string `json:"frequency"`
	MaxPerRequest     int    `json:"max_per_request"`
	NormalDays        int    `json:"normal_days"`
	AllowedAfterLimit bool   `json:"allowed_after_limit"`
}

type PolicyResponse struct {
	ID         string              `json:"id,omitempty"`
	Version    int                 `json:"version"`
	CreatedAt  *time.Time          `json:"created_at,omitempty"`
	LeaveTypes []LeaveTypeResponse `json:"leave_types"`
}

func (r PolicyResponse) toPolicy() Policy {
	types := make([]LeaveType, 0, len(r.LeaveTypes))
	for _, t := range r.LeaveTypes {
		types = append(types, LeaveType(t))
	}
	return NewPolicy(r.ID, r.Version, types)
}

func mapToResponse(p LeavePolicy) PolicyResponse {
	created := p.CreatedAt
	resp := PolicyResponse{
		ID:         p.ID.String(),
		Version:    p.Version,
		CreatedAt:  &created,
		LeaveTypes: make([]LeaveTypeResponse, 0, len(p.LeaveTypes)),
	}
	for _, t := range p.LeaveTypes {
		resp.LeaveTypes = append(resp.LeaveTypes, LeaveTypeResponse{
			Type:              t.Type,
			Mode:              t.Mode,
			Frequency:         t.Frequency,
			MaxPerRequest:     t.MaxPerRequest,
			NormalDays:        t.NormalDays,
			AllowedAfterLimit: t.AllowedAfterLimit,
		})
	}
	return resp
}
