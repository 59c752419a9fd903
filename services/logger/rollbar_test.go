package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nexusalpri/academy/core"
	"github.com/nexusalpri/academy/core/user"
)

func newTestLogger() (*RollbarLogger, *observer.ObservedLogs) {
	obs, logs := observer.New(zapcore.DebugLevel)
	l := NewRollbarLogger(zap.New(obs).Sugar(), &core.Config{Env: "TEST", AppName: "test"})
	l.Enable(false)
	return l, logs
}

func TestRollbarLogger(t *testing.T) {
	l, logs := newTestLogger()
	usr := user.User{ID: "u1", Name: "Joe", Email: "joe@example.com"}

	l.Error("saving progress", errors.New("db down"), usr, map[string]interface{}{"courseId": "c1"})
	l.Info("started")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "saving progress", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "u1", fields["user"])
	assert.Equal(t, "c1", fields["courseId"])
	assert.Equal(t, "db down", fields["error"])

	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Empty(t, entries[1].Context)
}

func TestRollbarLogger_prepare(t *testing.T) {
	l, _ := newTestLogger()
	usr := user.User{ID: "u1"}
	other := user.User{ID: "u2"}

	rbArgs, kvs := l.prepare("msg", []interface{}{usr, other, 42})
	assert.Equal(t, []interface{}{"msg", 42}, rbArgs)
	assert.Equal(t, []interface{}{"user", "u1", "extra", 42}, kvs)
}
