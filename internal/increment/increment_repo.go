package increment

import (
	"context"
	"database/sql"
	"time"

	"go-hrpayroll/internal/shared/database"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindPolicy(ctx context.Context) (*Policy, error)
	CreatePolicy(ctx context.Context, p *Policy) error
	UpdatePolicy(ctx context.Context, p *Policy) error
	ListEmployees(ctx context.Context) ([]Employee, error)
	RatingStats(ctx context.Context) (map[string]RatingStats, error)
	ListRecords(ctx context.Context) ([]Record, error)
	FindRecordForUpdate(ctx context.Context, employeeID string) (*Record, error)
	CreateRecord(ctx context.Context, rec *Record) error
	AddFine(ctx context.Context, fine *Fine) error
	AddToFineTotal(ctx context.Context, recordID string, amount decimal.Decimal, at time.Time) error
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

// FindPolicy returns the oldest policy row; there is normally exactly one.
func (r *repository) FindPolicy(ctx context.Context) (*Policy, error) {
	var p Policy
	if err := r.conn(ctx).Order("created_at ASC").First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) CreatePolicy(ctx context.Context, p *Policy) error {
	return r.conn(ctx).Create(p).Error
}

func (r *repository) UpdatePolicy(ctx context.Context, p *Policy) error {
	return r.conn(ctx).
		Model(p).
		Select("title", "criteria", "special_increments", "updated_at").
		Updates(p).Error
}

func (r *repository) ListEmployees(ctx context.Context) ([]Employee, error) {
	var rows []employeeRow
	err := r.conn(ctx).
		Table("employees").
		Select("id, name, date_of_joining, salary").
		Where("deleted_at IS NULL").
		Order("name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]Employee, 0, len(rows))
	for _, row := range rows {
		out = append(out, Employee{
			ID:            row.ID.String(),
			Name:          row.Name,
			DateOfJoining: row.DateOfJoining,
			Salary:        row.Salary,
		})
	}
	return out, nil
}

func (r *repository) RatingStats(ctx context.Context) (map[string]RatingStats, error) {
	var rows []ratingRow
	err := r.conn(ctx).
		Table("tasks").
		Select("employee_id, COALESCE(SUM(rating), 0) AS total, COUNT(rating) AS rated").
		Where("rating IS NOT NULL").
		Group("employee_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]RatingStats, len(rows))
	for _, row := range rows {
		out[row.EmployeeID.String()] = RatingStats{Total: row.Total, Rated: row.Rated}
	}
	return out, nil
}

func (r *repository) ListRecords(ctx context.Context) ([]Record, error) {
	var records []Record
	err := r.conn(ctx).
		Preload("Deductions", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC, created_at ASC") }).
		Find(&records).Error
	return records, err
}

func (r *repository) FindRecordForUpdate(ctx context.Context, employeeID string) (*Record, error) {
	var rec Record
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ?", employeeID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}

	if err := r.conn(ctx).Where("record_id = ?", rec.ID).Order("date ASC, created_at ASC").Find(&rec.Deductions).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) CreateRecord(ctx context.Context, rec *Record) error {
	return r.conn(ctx).Omit("Deductions").Create(rec).Error
}

func (r *repository) AddFine(ctx context.Context, fine *Fine) error {
	return r.conn(ctx).Create(fine).Error
}

func (r *repository) AddToFineTotal(ctx context.Context, recordID string, amount decimal.Decimal, at time.Time) error {
	return r.conn(ctx).
		Model(&Record{}).
		Where("id = ?", recordID).
		Updates(map[string]any{
			"total_fine_deductions": gorm.Expr("total_fine_deductions + ?", amount),
			"updated_at":            at,
		}).Error
}
