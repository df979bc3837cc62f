package task

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"net/http"
	"time"

	"go-hrpayroll/internal/shared/apperror"
	"go-hrpayroll/internal/shared/dateutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound     = apperror.New(apperror.CodeNotFound, "Task not found", http.StatusNotFound)
	ErrEmployeeNotFound = apperror.New(apperror.CodeNotFound, "Employee not found", http.StatusNotFound)
	ErrInvalidID        = apperror.New(apperror.CodeInvalidInput, "invalid id", http.StatusBadRequest)
	ErrNotStarted       = apperror.New(apperror.CodeInvalidState, "Task not started", http.StatusBadRequest)
	ErrAlreadyCompleted = apperror.New(apperror.CodeInvalidState, "Task already completed", http.StatusBadRequest)
	ErrNotOwner         = apperror.New(apperror.CodeForbidden, "Task belongs to another employee", http.StatusForbidden)
)

type Service interface {
	Create(ctx context.Context, req CreateTaskRequest) (TaskResponse, error)
	GetAll(ctx context.Context, employeeID string) ([]TaskResponse, error)
	GetByID(ctx context.Context, id, ownerID string) (TaskResponse, error)
	Delete(ctx context.Context, id string) error
	Start(ctx context.Context, id, ownerID string) (TaskResponse, error)
	Pause(ctx context.Context, id, ownerID string) (TaskResponse, error)
	Complete(ctx context.Context, id, ownerID string, req CompleteTaskRequest) (TaskResponse, error)
	Ratings(ctx context.Context, employeeID string, year int) (RatingSummaryResponse, error)
}

type service struct {
	db   *sql.DB
	repo Repository
	now  func() time.Time
}

func NewService(db *sql.DB, repo Repository) Service {
	return &service{db: db, repo: repo, now: time.Now}
}

func (s *service) Create(ctx context.Context, req CreateTaskRequest) (TaskResponse, error) {
	name, err := s.repo.EmployeeName(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaskResponse{}, ErrEmployeeNotFound
		}
		return TaskResponse{}, err
	}

	now := s.now().UTC()
	row := &Task{
		ID:              uuid.New(),
		EmployeeID:      uuid.MustParse(req.EmployeeID),
		EmployeeName:    name,
		TaskName:        req.TaskName,
		DurationMinutes: req.DurationMinutes,
		Status:          StatusNotStarted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return TaskResponse{}, err
	}
	return mapToResponse(*row), nil
}

func (s *service) GetAll(ctx context.Context, employeeID string) ([]TaskResponse, error) {
	rows, err := s.repo.FindAll(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	res := make([]TaskResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id, ownerID string) (TaskResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return TaskResponse{}, ErrInvalidID
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaskResponse{}, ErrTaskNotFound
		}
		return TaskResponse{}, err
	}
	if ownerID != "" && row.EmployeeID.String() != ownerID {
		return TaskResponse{}, ErrNotOwner
	}
	return mapToResponse(*row), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// mutate runs fn on the locked task and saves it. An empty ownerID skips
// the ownership check.
func (s *service) mutate(ctx context.Context, id, ownerID string, fn func(t *Task, now time.Time) error) (TaskResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return TaskResponse{}, ErrInvalidID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TaskResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	row, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaskResponse{}, ErrTaskNotFound
		}
		return TaskResponse{}, err
	}
	if ownerID != "" && row.EmployeeID.String() != ownerID {
		return TaskResponse{}, ErrNotOwner
	}

	now := s.now().UTC()
	if err := fn(row, now); err != nil {
		return TaskResponse{}, err
	}
	row.UpdatedAt = now

	if err := qtx.Update(ctx, row); err != nil {
		return TaskResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return TaskResponse{}, err
	}
	return mapToResponse(*row), nil
}

func (s *service) Start(ctx context.Context, id, ownerID string) (TaskResponse, error) {
	return s.mutate(ctx, id, ownerID, func(t *Task, now time.Time) error {
		switch t.Status {
		case StatusCompleted:
			return ErrAlreadyCompleted
		case StatusInProgress:
			return nil
		}
		t.StartedAt = &now
		t.Status = StatusInProgress
		return nil
	})
}

// Pause banks the running interval and records a provisional rating.
func (s *service) Pause(ctx context.Context, id, ownerID string) (TaskResponse, error) {
	return s.mutate(ctx, id, ownerID, func(t *Task, now time.Time) error {
		if t.Status == StatusCompleted {
			return ErrAlreadyCompleted
		}
		if t.Status != StatusInProgress || t.StartedAt == nil {
			return ErrNotStarted
		}
		elapsed := t.elapsedMinutes(now)
		t.ElapsedSeconds += int64(now.Sub(*t.StartedAt).Seconds())
		t.StartedAt = nil
		t.Status = StatusPaused
		t.score(elapsed)
		return nil
	})
}

func (s *service) Complete(ctx context.Context, id, ownerID string, req CompleteTaskRequest) (TaskResponse, error) {
	return s.mutate(ctx, id, ownerID, func(t *Task, now time.Time) error {
		if t.Status == StatusCompleted {
			return ErrAlreadyCompleted
		}
		elapsed := t.elapsedMinutes(now)
		if req.ElapsedMinutes != nil {
			elapsed = *req.ElapsedMinutes
		}
		t.ElapsedSeconds = int64(math.Round(elapsed * 60))
		t.StartedAt = nil
		t.Status = StatusCompleted
		t.CompletedAt = &now
		t.score(elapsed)
		return nil
	})
}

func (s *service) Ratings(ctx context.Context, employeeID string, year int) (RatingSummaryResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return RatingSummaryResponse{}, ErrInvalidID
	}
	if year == 0 {
		year = s.now().Year()
	}

	rows, err := s.repo.FindRatedSince(ctx, employeeID, dateutil.StartOfYear(year))
	if err != nil {
		return RatingSummaryResponse{}, err
	}

	var sums, counts [12]int
	total, sum := 0, 0
	for _, t := range rows {
		at := t.CreatedAt
		if t.StartedAt != nil {
			at = *t.StartedAt
		}
		if at.Year() != year || t.Rating == nil {
			continue
		}
		sums[at.Month()-1] += *t.Rating
		counts[at.Month()-1]++
		sum += *t.Rating
		total++
	}

	resp := RatingSummaryResponse{
		EmployeeID:     employeeID,
		Year:           year,
		TotalTasks:     total,
		MonthlyRatings: make([]MonthlyRating, 0, 12),
	}
	if total > 0 {
		resp.AverageRating = round2(float64(sum) / float64(total))
	}
	for m := 0; m < 12; m++ {
		item := MonthlyRating{Month: time.Month(m + 1).String()[:3], TotalTasks: counts[m]}
		if counts[m] > 0 {
			item.AverageRating = round2(float64(sums[m]) / float64(counts[m]))
		}
		resp.MonthlyRatings = append(resp.MonthlyRatings, item)
	}
	return resp, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
