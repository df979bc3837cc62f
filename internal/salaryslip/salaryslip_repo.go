package salaryslip

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
	FindEmployee(ctx context.Context, employeeID string) (*EmployeeInfo, error)
	ListEmployees(ctx context.Context) ([]EmployeeInfo, error)
	ApprovedLeavesStartingBetween(ctx context.Context, employeeID string, from, to time.Time) ([]ApprovedLeave, error)
	ApprovedDaysByTypeBetween(ctx context.Context, employeeID string, from, to time.Time) (map[string]int, error)
	FindSnapshot(ctx context.Context, month string, year int) (*Snapshot, error)
	LockSnapshot(ctx context.Context, month string, year int) (*Snapshot, error)
	CreateSnapshot(ctx context.Context, s *Snapshot) error
	TouchSnapshot(ctx context.Context, s *Snapshot) error
	ReplaceEntries(ctx context.Context, snapshotID string, entries []Entry) error
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

func (r *repository) FindEmployee(ctx context.Context, employeeID string) (*EmployeeInfo, error) {
	var row employeeRow
	err := r.conn(ctx).
		Table("employees").
		Select("id, name, designation, salary").
		Where("id = ?", employeeID).
		Where("deleted_at IS NULL").
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	info := row.info()
	return &info, nil
}

func (r *repository) ListEmployees(ctx context.Context) ([]EmployeeInfo, error) {
	var rows []employeeRow
	err := r.conn(ctx).
		Table("employees").
		Select("id, name, designation, salary").
		Where("deleted_at IS NULL").
		Order("name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]EmployeeInfo, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.info())
	}
	return out, nil
}

func (r *repository) ApprovedLeavesStartingBetween(ctx context.Context, employeeID string, from, to time.Time) ([]ApprovedLeave, error) {
	var leaves []ApprovedLeave
	err := r.conn(ctx).
		Table("leaves").
		Select("leave_type, approved_total_days").
		Where("employee_id = ?", employeeID).
		Where("status = ?", "APPROVED").
		Where("approved_from_date BETWEEN ? AND ?", from, to).
		Order("approved_from_date ASC").
		Scan(&leaves).Error
	return leaves, err
}

func (r *repository) ApprovedDaysByTypeBetween(ctx context.Context, employeeID string, from, to time.Time) (map[string]int, error) {
	var rows []struct {
		LeaveType string
		Total     int
	}
	err := r.conn(ctx).
		Table("leaves").
		Select("leave_type, COALESCE(SUM(approved_total_days), 0) AS total").
		Where("employee_id = ?", employeeID).
		Where("status = ?", "APPROVED").
		Where("from_date BETWEEN ? AND ?", from, to).
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

func (r *repository) FindSnapshot(ctx context.Context, month string, year int) (*Snapshot, error) {
	var s Snapshot
	err := r.conn(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("employee_name ASC") }).
		Where("month = ? AND year = ?", month, year).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LockSnapshot returns gorm.ErrRecordNotFound when the period has no row yet.
func (r *repository) LockSnapshot(ctx context.Context, month string, year int) (*Snapshot, error) {
	var s Snapshot
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("month = ? AND year = ?", month, year).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) CreateSnapshot(ctx context.Context, s *Snapshot) error {
	return r.conn(ctx).Omit("Entries").Create(s).Error
}

func (r *repository) TouchSnapshot(ctx context.Context, s *Snapshot) error {
	return r.conn(ctx).
		Model(&Snapshot{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{"generated_by": s.GeneratedBy, "updated_at": s.UpdatedAt}).Error
}

func (r *repository) ReplaceEntries(ctx context.Context, snapshotID string, entries []Entry) error {
	db := r.conn(ctx)
	if err := db.Where("snapshot_id = ?", snapshotID).Delete(&Entry{}).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return db.CreateInBatches(entries, 100).Error
}
