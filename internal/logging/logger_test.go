package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = NewLogger("chatty")
	assert.Error(t, err)
}

func TestNewCLILogger(t *testing.T) {
	logger, err := NewCLILogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestWithRequestID(t *testing.T) {
	logger := &Logger{zap.NewNop()}

	assert.Same(t, logger.Logger, logger.WithRequestID(context.Background()))

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	assert.NotNil(t, logger.WithRequestID(ctx))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
