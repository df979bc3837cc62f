package employee

import (
	"context"
	"database/sql"
	"time"

	"go-hrpayroll/internal/shared/database"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	CreateAccount(ctx context.Context, acc *Account) error
	FindAll(ctx context.Context) ([]Employee, error)
	FindOptions(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	Update(ctx context.Context, empl *Employee) error
	UpdateAccountEmail(ctx context.Context, employeeID, email string) error
	UpdateRole(ctx context.Context, employeeID, role string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	DeleteAccount(ctx context.Context, employeeID string) error
	ListPermissions(ctx context.Context, employeeID string) ([]Permission, error)
	ReplacePermissions(ctx context.Context, employeeID string, perms []Permission) error
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

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.conn(ctx).Create(empl).Error
}

func (r *repository) CreateAccount(ctx context.Context, acc *Account) error {
	return r.conn(ctx).Create(acc).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.conn(ctx).Order("employee_code ASC").Find(&empls).Error
	return empls, err
}

func (r *repository) FindOptions(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.conn(ctx).
		Select("id", "employee_code", "name", "designation").
		Order("name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var empl Employee
	if err := r.conn(ctx).First(&empl, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	return r.conn(ctx).Save(empl).Error
}

func (r *repository) UpdateAccountEmail(ctx context.Context, employeeID, email string) error {
	return r.conn(ctx).
		Model(&Account{}).
		Where("employee_id = ?", employeeID).
		Updates(map[string]any{"email": email, "updated_at": time.Now().UTC()}).Error
}

// UpdateRole keeps the employee row and its login account on the same role.
func (r *repository) UpdateRole(ctx context.Context, employeeID, role string) (int64, error) {
	now := time.Now().UTC()
	res := r.conn(ctx).
		Model(&Employee{}).
		Where("id = ?", employeeID).
		Updates(map[string]any{"role": role, "updated_at": now})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}
	err := r.conn(ctx).
		Model(&Account{}).
		Where("employee_id = ?", employeeID).
		Updates(map[string]any{"role": role, "updated_at": now}).Error
	return res.RowsAffected, err
}

func (r *repository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.conn(ctx).Delete(&Employee{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteAccount(ctx context.Context, employeeID string) error {
	return r.conn(ctx).Delete(&Account{}, "employee_id = ?", employeeID).Error
}

func (r *repository) ListPermissions(ctx context.Context, employeeID string) ([]Permission, error) {
	var perms []Permission
	err := r.conn(ctx).Where("employee_id = ?", employeeID).Order("code ASC").Find(&perms).Error
	return perms, err
}

func (r *repository) ReplacePermissions(ctx context.Context, employeeID string, perms []Permission) error {
	if err := r.conn(ctx).Delete(&Permission{}, "employee_id = ?", employeeID).Error; err != nil {
		return err
	}
	if len(perms) == 0 {
		return nil
	}
	return r.conn(ctx).Create(&perms).Error
}
