package salarysliperrors

import (
	"net/http"

	"go-hrpayroll/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrPolicyNotConfigured = apperror.New(
		apperror.CodePolicyNotConfigured,
		"HR Leave policy not found",
		http.StatusBadRequest,
	)
	ErrInvalidMonth = apperror.New(
		apperror.CodeInvalidInput,
		"month must be a month name or 1-12",
		http.StatusBadRequest,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"year must be between 1970 and 9999",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrSnapshotNotFound = apperror.New(
		apperror.CodeNotFound,
		"No salary slips saved for this period",
		http.StatusNotFound,
	)
	ErrEmptySnapshot = apperror.New(
		apperror.CodeInvalidInput,
		"at least one slip is required",
		http.StatusBadRequest,
	)
	ErrRenderFailed = apperror.New(
		apperror.CodeInternalError,
		"failed to render document",
		http.StatusInternalServerError,
	)
)

var ErrSnapshotConflict = apperror.New(
	apperror.CodeConflict,
	"Salary slips for this period are being saved concurrently, retry",
	http.StatusConflict,
)
