package leavepolicy_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-hrpayroll/internal/leavepolicy"
	leavepolicyerrors "go-hrpayroll/internal/leavepolicy/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type fakeService struct {
	activeFn       func(ctx context.Context) (leavepolicy.Policy, error)
	getFn          func(ctx context.Context) (leavepolicy.PolicyResponse, error)
	saveFn         func(ctx context.Context, actorID string, req leavepolicy.SavePolicyRequest) (leavepolicy.PolicyResponse, bool, error)
	listVersionsFn func(ctx context.Context) ([]leavepolicy.PolicyResponse, error)
}

func (f *fakeService) Active(ctx context.Context) (leavepolicy.Policy, error) {
	return f.activeFn(ctx)
}
func (f *fakeService) Get(ctx context.Context) (leavepolicy.PolicyResponse, error) {
	return f.getFn(ctx)
}
func (f *fakeService) Save(ctx context.Context, actorID string, req leavepolicy.SavePolicyRequest) (leavepolicy.PolicyResponse, bool, error) {
	return f.saveFn(ctx, actorID, req)
}
func (f *fakeService) ListVersions(ctx context.Context) ([]leavepolicy.PolicyResponse, error) {
	return f.listVersionsFn(ctx)
}

func newRouter(svc leavepolicy.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := leavepolicy.NewHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "hr-user")
		c.Next()
	})
	r.GET("/hr-policy2", h.Get)
	r.POST("/hr-policy2", h.Save)
	r.GET("/hr-policy2/versions", h.ListVersions)
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestLeavePolicyHandler_Get(t *testing.T) {
	r := newRouter(&fakeService{
		getFn: func(ctx context.Context) (leavepolicy.PolicyResponse, error) {
			return leavepolicy.PolicyResponse{Version: 2, LeaveTypes: []leavepolicy.LeaveTypeResponse{{Type: "Casual"}}}, nil
		},
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hr-policy2", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Ok)
	assert.Contains(t, string(env.Data), `"type":"Casual"`)
}

func TestLeavePolicyHandler_Save(t *testing.T) {
	body := `{"leave_types":[{"type":"Casual","mode":"Paid","frequency":"Yearly","max_per_request":3,"normal_days":12}]}`

	t.Run("created on first version", func(t *testing.T) {
		var gotActor string
		r := newRouter(&fakeService{
			saveFn: func(ctx context.Context, actorID string, req leavepolicy.SavePolicyRequest) (leavepolicy.PolicyResponse, bool, error) {
				gotActor = actorID
				return leavepolicy.PolicyResponse{Version: 1}, true, nil
			},
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/hr-policy2", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "hr-user", gotActor)
	})

	t.Run("ok on update", func(t *testing.T) {
		r := newRouter(&fakeService{
			saveFn: func(ctx context.Context, actorID string, req leavepolicy.SavePolicyRequest) (leavepolicy.PolicyResponse, bool, error) {
				return leavepolicy.PolicyResponse{Version: 5}, false, nil
			},
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/hr-policy2", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("validation error", func(t *testing.T) {
		r := newRouter(&fakeService{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/hr-policy2",
			strings.NewReader(`{"leave_types":[{"type":"Casual","mode":"Other","frequency":"Yearly","max_per_request":3,"normal_days":12}]}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decode(t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		r := newRouter(&fakeService{
			saveFn: func(ctx context.Context, actorID string, req leavepolicy.SavePolicyRequest) (leavepolicy.PolicyResponse, bool, error) {
				return leavepolicy.PolicyResponse{}, false, leavepolicyerrors.ErrVersionConflict
			},
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/hr-policy2", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestLeavePolicyHandler_ListVersions(t *testing.T) {
	r := newRouter(&fakeService{
		listVersionsFn: func(ctx context.Context) ([]leavepolicy.PolicyResponse, error) {
			return []leavepolicy.PolicyResponse{{Version: 2}, {Version: 1}}, nil
		},
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hr-policy2/versions", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":2`)
}
