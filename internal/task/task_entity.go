package task

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusNotStarted = "NOT_STARTED"
	StatusInProgress = "IN_PROGRESS"
	StatusPaused     = "PAUSED"
	StatusCompleted  = "COMPLETED"
)

type Task struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey"`
	EmployeeID        uuid.UUID        `gorm:"type:uuid;not null"`
	EmployeeName      string           `gorm:"type:varchar(150);not null"`
	TaskName          string           `gorm:"type:varchar(200);not null"`
	DurationMinutes   int              `gorm:"not null"`
	Status            string           `gorm:"type:varchar(20);not null"`
	Rating            *int
	FinishedInMinutes *decimal.Decimal `gorm:"type:numeric(10,2)"`
	ElapsedSeconds    int64            `gorm:"not null"`
	StartedAt         *time.Time
	CompletedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Task) TableName() string { return "tasks" }

// Rate scores elapsed time against the target duration, both in minutes.
func Rate(elapsedMinutes float64, target int) int {
	d := float64(target)
	switch {
	case elapsedMinutes <= d-2:
		return 5
	case elapsedMinutes <= d-1:
		return 4
	case elapsedMinutes <= d:
		return 3
	case elapsedMinutes <= d+1:
		return 2
	default:
		return 1
	}
}

// elapsedMinutes includes the running interval when the task is in progress.
func (t *Task) elapsedMinutes(now time.Time) float64 {
	secs := t.ElapsedSeconds
	if t.Status == StatusInProgress && t.StartedAt != nil {
		secs += int64(now.Sub(*t.StartedAt).Seconds())
	}
	return float64(secs) / 60
}

func (t *Task) score(elapsed float64) {
	rating := Rate(elapsed, t.DurationMinutes)
	finished := decimal.NewFromFloat(elapsed).Round(2)
	t.Rating = &rating
	t.FinishedInMinutes = &finished
}
