package logger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"news-quiz/logger"
	"news-quiz/trace"
)

func TestFromContextAddsRequestID(t *testing.T) {
	ctx := trace.WithRequestID(context.Background(), "req-1")

	fields := logger.FromContext(ctx, logger.Fields{"uri": "art-1"})
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "art-1", fields["uri"])

	fields = logger.FromContext(context.Background(), nil)
	assert.NotContains(t, fields, "request_id")
}

func TestInitFromEnvPrefersEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	logger.InitFromEnv("LOG_LEVEL", "error")
	assert.NotNil(t, logger.Log)
	logger.Init("")
}
