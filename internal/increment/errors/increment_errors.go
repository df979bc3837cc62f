package incrementerrors

import (
	"net/http"

	"go-hrpayroll/internal/shared/apperror"
)

var (
	ErrPolicyNotFound = apperror.New(
		apperror.CodePolicyNotConfigured,
		"HR Policy criteria missing",
		http.StatusNotFound,
	)
	ErrInvalidPolicy = apperror.New(
		apperror.CodeValidation,
		"increment policy must have a title and at least one rating criterion",
		http.StatusBadRequest,
	)
	ErrDuplicateRating = apperror.New(
		apperror.CodeValidation,
		"each rating may appear only once in the criteria table",
		http.StatusBadRequest,
	)
	ErrInvalidRating = apperror.New(
		apperror.CodeValidation,
		"criterion rating must be between 1 and 5",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"Salary increment record not found",
		http.StatusNotFound,
	)
	ErrInvalidFineDate = apperror.New(
		apperror.CodeInvalidInput,
		"date must be YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateOfJoining = apperror.New(
		apperror.CodeInvalidInput,
		"date_of_joining must be YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidFineAmount = apperror.New(
		apperror.CodeValidation,
		"amount must be greater than zero",
		http.StatusBadRequest,
	)
	ErrExportFailed = apperror.New(
		apperror.CodeInternalError,
		"failed to export increments",
		http.StatusInternalServerError,
	)
)
