package task

import (
	"context"
	"database/sql"
	"time"

	"go-hrpayroll/internal/shared/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	EmployeeName(ctx context.Context, employeeID string) (string, error)
	Create(ctx context.Context, t *Task) error
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) (int64, error)
	FindByID(ctx context.Context, id string) (*Task, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Task, error)
	FindAll(ctx context.Context, employeeID string) ([]Task, error)
	FindRatedSince(ctx context.Context, employeeID string, since time.Time) ([]Task, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.db, r.tx)
}

func (r *repository) EmployeeName(ctx context.Context, employeeID string) (string, error) {
	var row struct{ Name string }
	err := r.conn(ctx).
		Table("employees").
		Select("name").
		Where("id = ? AND deleted_at IS NULL", employeeID).
		Take(&row).Error
	return row.Name, err
}

func (r *repository) Create(ctx context.Context, t *Task) error {
	return r.conn(ctx).Create(t).Error
}

func (r *repository) Update(ctx context.Context, t *Task) error {
	return r.conn(ctx).Save(t).Error
}

func (r *repository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.conn(ctx).Where("id = ?", id).Delete(&Task{})
	return res.RowsAffected, res.Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Task, error) {
	var t Task
	if err := r.conn(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Task, error) {
	var t Task
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) FindAll(ctx context.Context, employeeID string) ([]Task, error) {
	var tasks []Task
	q := r.conn(ctx).Order("created_at DESC")
	if employeeID != "" {
		q = q.Where("employee_id = ?", employeeID)
	}
	err := q.Find(&tasks).Error
	return tasks, err
}

func (r *repository) FindRatedSince(ctx context.Context, employeeID string, since time.Time) ([]Task, error) {
	var tasks []Task
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Where("rating IS NOT NULL").
		Where("COALESCE(started_at, created_at) >= ?", since).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}
