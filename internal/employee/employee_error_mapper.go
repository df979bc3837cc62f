package employee

import (
	"errors"
	"strings"

	employeeerrors "go-hrpayroll/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	constraint := ""
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" {
			return err
		}
		constraint = pgErr.ConstraintName
	} else {
		msg := strings.ToLower(err.Error())
		if !strings.Contains(msg, "duplicate key value") {
			return err
		}
		constraint = msg
	}

	switch {
	case strings.Contains(constraint, "uq_employees_email"):
		return employeeerrors.ErrEmployeeAlreadyExists
	case strings.Contains(constraint, "employee_code"):
		return employeeerrors.ErrEmployeeCodeAlreadyExists
	case strings.Contains(constraint, "uq_users_email"):
		return employeeerrors.ErrAccountAlreadyExists
	}
	return err
}
