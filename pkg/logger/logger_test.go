package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sdscatalog/pkg/logger"
)

func TestNew_ProductionIsJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New("production", &buf)

	log.Debug("hidden")
	log.Info("checkout", "pages", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "checkout", line["msg"])
	assert.Equal(t, float64(3), line["pages"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_LocalIsTextAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger.New("local", &buf).Debug("render", "stage", "cover")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "stage=cover")
}

func TestWithCtx(t *testing.T) {
	assert.Same(t, logger.L, logger.WithCtx(context.Background()))

	var buf bytes.Buffer
	scoped := logger.New("local", &buf).With("request_id", "abc")
	ctx := logger.InjectLogger(context.Background(), scoped)

	logger.WithCtx(ctx).Info("hello")
	assert.Contains(t, buf.String(), "request_id=abc")
}
