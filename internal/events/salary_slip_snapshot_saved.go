package events

import "time"

const (
	SalarySlipSnapshotSavedTopic = "hr.payroll.slip_snapshot.v1"
	SalarySlipSnapshotSavedType  = "salary_slip.snapshot_saved"
)

type SalarySlipSnapshotSavedEvent struct {
	EventType  string    `json:"event_type"`
	SnapshotID string    `json:"snapshot_id"`
	Month      string    `json:"month"`
	Year       int       `json:"year"`
	Entries    int       `json:"entries"`
	Failed     int       `json:"failed"`
	SavedBy    string    `json:"saved_by,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Topics lists every topic the outbox worker may publish to.
func Topics() []string {
	return []string{
		EmployeeCreatedTopic,
		LeaveStatusChangedTopic,
		SalarySlipSnapshotSavedTopic,
	}
}
