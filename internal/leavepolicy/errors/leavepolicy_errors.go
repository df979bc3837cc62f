package leavepolicyerrors

import (
	"go-hrpayroll/internal/shared/apperror"
	"net/http"
)

var (
	ErrPolicyNotFound = apperror.New(
		apperror.CodeNotFound,
		"HR Policy not found",
		http.StatusNotFound,
	)
	ErrEmptyPolicy = apperror.New(
		apperror.CodeValidation,
		"At least one leave type is required",
		http.StatusBadRequest,
	)
	ErrDuplicateLeaveType = apperror.New(
		apperror.CodeValidation,
		"Leave type must be unique within the policy",
		http.StatusBadRequest,
	)
	ErrInvalidMode = apperror.New(
		apperror.CodeValidation,
		"Mode must be Paid or Free",
		http.StatusBadRequest,
	)
	ErrInvalidFrequency = apperror.New(
		apperror.CodeValidation,
		"Frequency must be Monthly or Yearly",
		http.StatusBadRequest,
	)
	ErrInvalidAllowance = apperror.New(
		apperror.CodeValidation,
		"max_per_request and normal_days must be positive",
		http.StatusBadRequest,
	)
	ErrVersionConflict = apperror.New(
		apperror.CodeConflict,
		"Policy was changed concurrently, retry",
		http.StatusConflict,
	)
)
