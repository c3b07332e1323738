package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTestLoggerCapturesOutput(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.Info("server started", "transport", "stdio")
	logger.Debug("dispatching", "method", "tools/list")

	out := buf.String()
	assert.Contains(t, out, "server started")
	assert.Contains(t, out, "transport=stdio")
	assert.Contains(t, out, "dispatching")
}

func TestSetLevelFiltersBelowThreshold(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.SetLevel("error")
	logger.Info("quiet please")
	logger.Error("something broke")

	out := buf.String()
	assert.NotContains(t, out, "quiet please")
	assert.Contains(t, out, "something broke")
}

func TestDebugSuppressedWhenDisabled(t *testing.T) {
	logger, buf := NewTestLogger()
	logger.debug = false

	logger.Debug("invisible")
	assert.NotContains(t, buf.String(), "invisible")
}

func TestLogPerformanceEmitsOperationAndDuration(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.LogPerformance("vector_store_list", time.Now().Add(-10*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "Performance")
	assert.Contains(t, out, "vector_store_list")
	assert.Contains(t, out, "duration=")
}

func TestLogPerformanceSuppressedWhenDebugDisabled(t *testing.T) {
	logger, buf := NewTestLogger()
	logger.debug = false

	logger.LogPerformance("vector_store_list", time.Now())
	assert.Empty(t, buf.String())
}
