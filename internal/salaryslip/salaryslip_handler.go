package salaryslip

import (
	"net/http"

	autherrors "go-hrpayroll/internal/auth/errors"
	"go-hrpayroll/internal/domain"
	"go-hrpayroll/internal/shared/apperror"
	"go-hrpayroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("salaryslip.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salaryslip.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("salary slip request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// bindGenerate also keeps employees on their own slip.
func (h *Handler) bindGenerate(c *gin.Context) (GenerateQuery, bool) {
	var q GenerateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return q, false
	}
	if c.GetString("role") == domain.RoleEmployee && q.EmployeeID != c.GetString("employee_id") {
		h.writeServiceError(c, autherrors.ErrForbidden)
		return q, false
	}
	return q, true
}

func (h *Handler) Generate(c *gin.Context) {
	q, ok := h.bindGenerate(c)
	if !ok {
		return
	}

	resp, err := h.service.Generate(c.Request.Context(), q.EmployeeID, q.Month, q.Year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GeneratePDF(c *gin.Context) {
	q, ok := h.bindGenerate(c)
	if !ok {
		return
	}

	data, filename, err := h.service.GeneratePDF(c.Request.Context(), q.EmployeeID, q.Month, q.Year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Attachment(c, filename, contentTypePDF, data)
}

func (h *Handler) SaveAll(c *gin.Context) {
	var req SaveAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, created, err := h.service.SaveAll(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, resp, nil)
}

func (h *Handler) Run(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, created, err := h.service.Run(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, resp, nil)
}

func (h *Handler) GetSnapshot(c *gin.Context) {
	var q PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.GetSnapshot(c.Request.Context(), q.Month, q.Year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Export(c *gin.Context) {
	var q PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	data, filename, err := h.service.ExportSnapshot(c.Request.Context(), q.Month, q.Year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Attachment(c, filename, contentTypeXLSX, data)
}
