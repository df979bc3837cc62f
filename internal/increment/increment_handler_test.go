package increment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-hrpayroll/internal/events"
	"go-hrpayroll/internal/increment"
	incrementerrors "go-hrpayroll/internal/increment/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIncrementService struct {
	incrementsFn   func(ctx context.Context) ([]increment.IncrementResponse, error)
	specialFn      func(ctx context.Context) ([]increment.SpecialIncrementResponse, error)
	exportFn       func(ctx context.Context) ([]byte, string, error)
	getPolicyFn    func(ctx context.Context) (increment.PolicyResponse, error)
	updatePolicyFn func(ctx context.Context, req increment.PolicyRequest) (increment.PolicyResponse, error)
	addFineFn      func(ctx context.Context, employeeID string, req increment.AddFineRequest) (increment.RecordResponse, error)
}

func (f *fakeIncrementService) Increments(ctx context.Context) ([]increment.IncrementResponse, error) {
	return f.incrementsFn(ctx)
}
func (f *fakeIncrementService) SpecialIncrements(ctx context.Context) ([]increment.SpecialIncrementResponse, error) {
	return f.specialFn(ctx)
}
func (f *fakeIncrementService) Export(ctx context.Context) ([]byte, string, error) {
	return f.exportFn(ctx)
}
func (f *fakeIncrementService) GetPolicy(ctx context.Context) (increment.PolicyResponse, error) {
	return f.getPolicyFn(ctx)
}
func (f *fakeIncrementService) UpdatePolicy(ctx context.Context, req increment.PolicyRequest) (increment.PolicyResponse, error) {
	return f.updatePolicyFn(ctx, req)
}
func (f *fakeIncrementService) SeedDefaultPolicy(ctx context.Context) error { return nil }
func (f *fakeIncrementService) AddFine(ctx context.Context, employeeID string, req increment.AddFineRequest) (increment.RecordResponse, error) {
	return f.addFineFn(ctx, employeeID, req)
}
func (f *fakeIncrementService) CreateRecord(ctx context.Context, event events.EmployeeCreatedEvent) error {
	return nil
}

func newIncrementRouter(svc increment.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := increment.NewHandler(svc)

	r := gin.New()
	r.GET("/salary-increments", h.Increments)
	r.GET("/salary-increments/export", h.Export)
	r.POST("/salary-increments/:employeeId/fines", h.AddFine)
	r.GET("/special-increments", h.SpecialIncrements)
	r.GET("/hr-policy", h.GetPolicy)
	r.PUT("/hr-policy", h.UpdatePolicy)
	return r
}

func TestIncrementHandler_Increments(t *testing.T) {
	t.Run("snake case table", func(t *testing.T) {
		svc := &fakeIncrementService{
			incrementsFn: func(ctx context.Context) ([]increment.IncrementResponse, error) {
				return []increment.IncrementResponse{{Name: "Asha", AvgRating: 5, TotalIncrement: 35, Deductions: []increment.FineResponse{}}}, nil
			},
		}
		rec := httptest.NewRecorder()
		newIncrementRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/salary-increments", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"avg_rating":5`)
		assert.Contains(t, body, `"total_increment":35`)
		assert.Contains(t, body, `"deductions":[]`)
	})

	t.Run("policy missing", func(t *testing.T) {
		svc := &fakeIncrementService{
			incrementsFn: func(ctx context.Context) ([]increment.IncrementResponse, error) {
				return nil, incrementerrors.ErrPolicyNotFound
			},
		}
		rec := httptest.NewRecorder()
		newIncrementRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/salary-increments", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var env struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.Equal(t, "POLICY_NOT_CONFIGURED", env.Error.Code)
	})
}

func TestIncrementHandler_UpdatePolicy(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := &fakeIncrementService{
			updatePolicyFn: func(ctx context.Context, req increment.PolicyRequest) (increment.PolicyResponse, error) {
				assert.Equal(t, "T", req.Title)
				assert.Equal(t, 10, req.SpecialIncrements[0].ThresholdYears)
				return increment.PolicyResponse{Title: req.Title}, nil
			},
		}
		body := `{"title":"T","criteria":[{"rating":5,"label":"Outstanding","increment_range":"10% - 15%"}],"special_increments":[{"milestone":"10-Year Milestone","threshold_years":10}]}`
		req := httptest.NewRequest(http.MethodPut, "/hr-policy", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newIncrementRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rating out of range", func(t *testing.T) {
		body := `{"title":"T","criteria":[{"rating":7,"label":"x","increment_range":"1%"}]}`
		req := httptest.NewRequest(http.MethodPut, "/hr-policy", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newIncrementRouter(&fakeIncrementService{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestIncrementHandler_AddFine(t *testing.T) {
	svc := &fakeIncrementService{
		addFineFn: func(ctx context.Context, employeeID string, req increment.AddFineRequest) (increment.RecordResponse, error) {
			assert.Equal(t, "emp-1", employeeID)
			return increment.RecordResponse{TotalFineDeductions: req.Amount}, nil
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/salary-increments/emp-1/fines", strings.NewReader(`{"date":"2026-05-02","amount":150,"reason":"late"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newIncrementRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_fine_deductions":150`)
}

func TestIncrementHandler_Export(t *testing.T) {
	svc := &fakeIncrementService{
		exportFn: func(ctx context.Context) ([]byte, string, error) {
			return []byte("PK"), "salary-increments-2026-10-17.xlsx", nil
		},
	}
	rec := httptest.NewRecorder()
	newIncrementRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/salary-increments/export", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "salary-increments-2026-10-17.xlsx")
}
