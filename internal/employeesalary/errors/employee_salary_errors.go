package employeesalaryerrors

import (
	"go-hrpayroll/internal/shared/apperror"
	"net/http"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidMonth = apperror.New(
		apperror.CodeInvalidInput,
		"month must be a month name or 1-12",
		http.StatusBadRequest,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"year is out of range",
		http.StatusBadRequest,
	)
	ErrDuplicateComponent = apperror.New(
		apperror.CodeValidation,
		"Component names must be unique",
		http.StatusBadRequest,
	)
	ErrInvalidComponent = apperror.New(
		apperror.CodeValidation,
		"Component type must be flat or percentage and category earning or deduction",
		http.StatusBadRequest,
	)
	ErrUnknownBase = apperror.New(
		apperror.CodeValidation,
		"Percentage component refers to an unknown base component",
		http.StatusBadRequest,
	)
	ErrCyclicBase = apperror.New(
		apperror.CodeValidation,
		"Percentage components depend on each other",
		http.StatusBadRequest,
	)
	ErrAssignmentExists = apperror.New(
		apperror.CodeConflict,
		"Salary for this employee and period already exists",
		http.StatusConflict,
	)
)
