package employeesalary

import (
	"errors"
	"strings"

	employeesalaryerrors "go-hrpayroll/internal/employeesalary/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const periodConstraint = "uq_employee_salary_period"

func isUniquePeriodViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == periodConstraint
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, periodConstraint)
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if isUniquePeriodViolation(err) {
		return employeesalaryerrors.ErrAssignmentExists
	}
	return err
}
