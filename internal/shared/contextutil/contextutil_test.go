package contextutil_test

import (
	"context"
	"testing"

	"go-hrpayroll/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMetadata(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "rid-1")
	ctx = contextutil.WithUserID(ctx, "user-1")
	ctx = contextutil.WithEmployeeID(ctx, "emp-1")

	md := contextutil.ExtractMetadata(ctx)
	assert.Equal(t, "rid-1", md.RequestID)
	assert.Equal(t, "user-1", md.UserID)
	assert.Equal(t, "emp-1", md.EmployeeID)
	assert.Len(t, md.Fields(), 3)
}

func TestGetLoggerFallback(t *testing.T) {
	assert.NotNil(t, contextutil.GetLogger(context.Background(), nil))

	def := zap.NewExample()
	assert.Same(t, def, contextutil.GetLogger(context.Background(), def))

	ctxLogger := zap.NewNop()
	ctx := contextutil.WithLogger(context.Background(), ctxLogger)
	assert.Same(t, ctxLogger, contextutil.GetLogger(ctx, def))
}
