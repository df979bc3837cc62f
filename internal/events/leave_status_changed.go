package events

import "time"

const (
	LeaveStatusChangedTopic = "hr.leave.status.v1"
	LeaveStatusChangedType  = "leave.status_changed"
)

type LeaveStatusChangedEvent struct {
	EventType         string    `json:"event_type"`
	LeaveID           string    `json:"leave_id"`
	EmployeeID        string    `json:"employee_id"`
	LeaveType         string    `json:"leave_type"`
	Status            string    `json:"status"`
	ApprovedFromDate  *string   `json:"approved_from_date,omitempty"`
	ApprovedToDate    *string   `json:"approved_to_date,omitempty"`
	ApprovedTotalDays int       `json:"approved_total_days"`
	DecidedBy         string    `json:"decided_by,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}
