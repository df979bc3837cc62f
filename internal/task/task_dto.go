package task

import "time"

type CreateTaskRequest struct {
	EmployeeID      string `json:"employee_id" binding:"required,uuid"`
	TaskName        string `json:"task_name" binding:"required,max=200"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,gt=0"`
}

type CompleteTaskRequest struct {
	ElapsedMinutes *float64 `json:"elapsed_minutes" binding:"omitempty,gte=0"`
}

type ListQuery struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
}

type TaskResponse struct {
	ID                string     `json:"id"`
	EmployeeID        string     `json:"employee_id"`
	EmployeeName      string     `json:"employee_name"`
	TaskName          string     `json:"task_name"`
	DurationMinutes   int        `json:"duration_minutes"`
	Status            string     `json:"status"`
	Rating            *int       `json:"rating"`
	FinishedInMinutes *float64   `json:"finished_in_minutes"`
	ElapsedSeconds    int64      `json:"elapsed_seconds"`
	StartedAt         *time.Time `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

type MonthlyRating struct {
	Month         string  `json:"month"`
	TotalTasks    int     `json:"total_tasks"`
	AverageRating float64 `json:"average_rating"`
}

type RatingSummaryResponse struct {
	EmployeeID     string          `json:"employee_id"`
	Year           int             `json:"year"`
	TotalTasks     int             `json:"total_tasks"`
	AverageRating  float64         `json:"average_rating"`
	MonthlyRatings []MonthlyRating `json:"monthly_ratings"`
}

func mapToResponse(t Task) TaskResponse {
	resp := TaskResponse{
		ID:              t.ID.String(),
		EmployeeID:      t.EmployeeID.String(),
		EmployeeName:    t.EmployeeName,
		TaskName:        t.TaskName,
		DurationMinutes: t.DurationMinutes,
		Status:          t.Status,
		Rating:          t.Rating,
		ElapsedSeconds:  t.ElapsedSeconds,
		StartedAt:       t.StartedAt,
		CompletedAt:     t.CompletedAt,
		CreatedAt:       t.CreatedAt,
	}
	if t.FinishedInMinutes != nil {
		v := t.FinishedInMinutes.InexactFloat64()
		resp.FinishedInMinutes = &v
	}
	return resp
}
