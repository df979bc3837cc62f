package leavepolicy

import (
	"context"
	"database/sql"

	"go-hrpayroll/internal/shared/database"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindLatest(ctx context.Context) (*LeavePolicy, error)
	NextVersion(ctx context.Context) (int, error)
	Create(ctx context.Context, policy *LeavePolicy) error
	ListVersions(ctx context.Context) ([]LeavePolicy, error)
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

// FindLatest returns gorm.ErrRecordNotFound when nothing is configured.
func (r *repository) FindLatest(ctx context.Context) (*LeavePolicy, error) {
	var p LeavePolicy
	err := r.conn(ctx).
		Preload("LeaveTypes", func(db *gorm.DB) *gorm.DB { return db.Order("type ASC") }).
		Order("version DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// NextVersion serializes writers on an advisory lock held until the
// surrounding transaction ends.
func (r *repository) NextVersion(ctx context.Context) (int, error) {
	db := r.conn(ctx)
	if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext('leave_policies'))").Error; err != nil {
		return 0, err
	}

	var next int
	if err := db.Raw("SELECT COALESCE(MAX(version), 0) + 1 FROM leave_policies").Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repository) Create(ctx context.Context, policy *LeavePolicy) error {
	return r.conn(ctx).Create(policy).Error
}

func (r *repository) ListVersions(ctx context.Context) ([]LeavePolicy, error) {
	var policies []LeavePolicy
	err := r.conn(ctx).
		Preload("LeaveTypes", func(db *gorm.DB) *gorm.DB { return db.Order("type ASC") }).
		Order("version DESC").
		Find(&policies).Error
	return policies, err
}
