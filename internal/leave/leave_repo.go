package leave

import (
	"context"
	"database/sql"
	"time"

	"go-hrpayroll/internal/shared/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	LockEmployee(ctx context.Context, employeeID string) error
	FindEmployee(ctx context.Context, employeeID string) (*EmployeeRef, error)
	Create(ctx context.Context, l *Leave) error
	Update(ctx context.Context, l *Leave) error
	FindAll(ctx context.Context) ([]Leave, error)
	FindByID(ctx context.Context, id string) (*Leave, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Leave, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]Leave, error)
	FindByStatus(ctx context.Context, status string) ([]Leave, error)
	FindActiveOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]Leave, error)
	SumApprovedDaysSince(ctx context.Context, employeeID, leaveType string, since time.Time) (int, error)
	ApprovedDaysSinceByEmployeeType(ctx context.Context, since time.Time) (map[UsageKey]int, error)
	ApprovedTotalsByType(ctx context.Context, employeeID string) (map[string]int, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountDecidedUnseen(ctx context.Context, employeeID string) (int64, error)
	MarkDecidedSeen(ctx context.Context, employeeID string) (int64, error)
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

// LockEmployee takes a transaction-scoped advisory lock so submissions for
// one employee run one at a time. Outside a transaction it is a no-op.
func (r *repository) LockEmployee(ctx context.Context, employeeID string) error {
	if r.tx == nil {
		return nil
	}
	return r.conn(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", employeeID).Error
}

func (r *repository) FindEmployee(ctx context.Context, employeeID string) (*EmployeeRef, error) {
	var ref EmployeeRef
	err := r.conn(ctx).
		Table("employees").
		Select("id, name").
		Where("id = ?", employeeID).
		Where("deleted_at IS NULL").
		Take(&ref).Error
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Create(l).Error
}

func (r *repository) Update(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Save(l).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Leave, error) {
	var leaves []Leave
	err := r.conn(ctx).Order("created_at DESC").Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	if err := r.conn(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]Leave, error) {
	var leaves []Leave
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Order("from_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByStatus(ctx context.Context, status string) ([]Leave, error) {
	var leaves []Leave
	err := r.conn(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindActiveOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]Leave, error) {
	var leaves []Leave
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("from_date <= ? AND to_date >= ?", to, from).
		Order("from_date ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) SumApprovedDaysSince(ctx context.Context, employeeID, leaveType string, since time.Time) (int, error) {
	var total int
	err := r.conn(ctx).
		Model(&Leave{}).
		Select("COALESCE(SUM(total_days), 0)").
		Where("employee_id = ?", employeeID).
		Where("leave_type = ?", leaveType).
		Where("status = ?", StatusApproved).
		Where("from_date >= ?", since).
		Scan(&total).Error
	return total, err
}

func (r *repository) ApprovedDaysSinceByEmployeeType(ctx context.Context, since time.Time) (map[UsageKey]int, error) {
	var rows []struct {
		EmployeeID uuid.UUID
		LeaveType  string
		Total      int
	}
	err := r.conn(ctx).
		Model(&Leave{}).
		Select("employee_id, leave_type, COALESCE(SUM(total_days), 0) AS total").
		Where("status = ?", StatusApproved).
		Where("from_date >= ?", since).
		Group("employee_id, leave_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[UsageKey]int, len(rows))
	for _, row := range rows {
		out[UsageKey{EmployeeID: row.EmployeeID, LeaveType: row.LeaveType}] = row.Total
	}
	return out, nil
}

func (r *repository) ApprovedTotalsByType(ctx context.Context, employeeID string) (map[string]int, error) {
	var rows []struct {
		LeaveType string
		Total     int
	}
	err := r.conn(ctx).
		Model(&Leave{}).
		Select("leave_type, COALESCE(SUM(approved_total_days), 0) AS total").
		Where("employee_id = ?", employeeID).
		Where("status = ?", StatusApproved).
		Group("leave_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.LeaveType] = row.Total
	}
	return out, nil
}

func (r *repository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&Leave{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *repository) CountDecidedUnseen(ctx context.Context, employeeID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Leave{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusApproved, StatusRejected}).
		Where("seen_by_employee = ?", false).
		Count(&count).Error
	return count, err
}

func (r *repository) MarkDecidedSeen(ctx context.Context, employeeID string) (int64, error) {
	res := r.conn(ctx).
		Model(&Leave{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusApproved, StatusRejected}).
		Where("seen_by_employee = ?", false).
		Updates(map[string]any{"seen_by_employee": true, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}
