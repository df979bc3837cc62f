package events

import "time"

const (
	EmployeeCreatedTopic = "hr.employee.lifecycle.v1"
	EmployeeCreatedType  = "employee_created"
)

type EmployeeCreatedEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id,omitempty"`
	EmployeeID    string    `json:"employee_id"`
	Name          string    `json:"name"`
	DateOfJoining string    `json:"date_of_joining"`
	Salary        string    `json:"salary"`
	OccurredAt    time.Time `json:"occurred_at"`
}
