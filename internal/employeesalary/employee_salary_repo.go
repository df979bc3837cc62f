package employeesalary

import (
	"context"
	"database/sql"

	"go-hrpayroll/internal/shared/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindCatalog(ctx context.Context) (*ComponentGroup, error)
	CreateCatalog(ctx context.Context, g *ComponentGroup) error
	UpdateCatalog(ctx context.Context, g *ComponentGroup) error
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	Create(ctx context.Context, salary *EmployeeSalary) error
	Upsert(ctx context.Context, salary *EmployeeSalary) error
	FindByPeriod(ctx context.Context, employeeID, month string, year int) (*EmployeeSalary, error)
	FindLatest(ctx context.Context, employeeID string) (*EmployeeSalary, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.db, r.tx)
}

func (r *repository) FindCatalog(ctx context.Context) (*ComponentGroup, error) {
	var g ComponentGroup
	if err := r.conn(ctx).Where("name = ?", defaultCatalog).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repository) CreateCatalog(ctx context.Context, g *ComponentGroup) error {
	return r.conn(ctx).Create(g).Error
}

func (r *repository) UpdateCatalog(ctx context.Context, g *ComponentGroup) error {
	return r.conn(ctx).Model(g).Select("components", "updated_at").Updates(g).Error
}

func (r *repository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var n int64
	err := r.conn(ctx).
		Table("employees").
		Where("id = ? AND deleted_at IS NULL", employeeID).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) Create(ctx context.Context, salary *EmployeeSalary) error {
	return r.conn(ctx).Create(salary).Error
}

// Upsert replaces the employee's salary for the period in place.
func (r *repository) Upsert(ctx context.Context, salary *EmployeeSalary) error {
	return r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "employee_id"}, {Name: "month"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"basic_salary", "gross_salary", "net_salary", "components", "updated_at",
		}),
	}).Create(salary).Error
}

func (r *repository) FindByPeriod(ctx context.Context, employeeID, month string, year int) (*EmployeeSalary, error) {
	var s EmployeeSalary
	err := r.conn(ctx).
		Where("employee_id = ? AND month = ? AND year = ?", employeeID, month, year).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindLatest(ctx context.Context, employeeID string) (*EmployeeSalary, error) {
	var s EmployeeSalary
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Order("year DESC, month DESC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
