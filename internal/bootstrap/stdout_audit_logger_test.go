package bootstrap

import (
	"context"
	"testing"
	"time"

	"go-hrpayroll/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStdoutAuditLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewStdoutAuditLogger(zap.New(core))
	l.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }

	ctx := contextutil.WithRequestID(context.Background(), "req-9")
	l.Log(ctx, AuditLog{Action: "SLIP_SNAPSHOT_SAVED", Message: "saved", Meta: map[string]any{"month": "05"}})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "audit", entry.LoggerName)
	fields := entry.ContextMap()
	assert.Equal(t, "2024-05-01T09:30:00Z", fields["timestamp"])
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "SLIP_SNAPSHOT_SAVED", fields["action"])
}
