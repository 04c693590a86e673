package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/lvillar/layoutpdf/config"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Debug("hidden")
	assert.Zero(t, buf.Len(), "debug is filtered at info level")
	logger.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLoggerFromContext(t *testing.T) {
	assert.Same(t, log.Default(), loggerFromContext(context.Background()))

	l := newLogger(&bytes.Buffer{}, log.DebugLevel)
	ctx := withLogger(context.Background(), l)
	assert.Same(t, l, loggerFromContext(ctx))
}

func TestConfigFromContext(t *testing.T) {
	assert.Equal(t, config.Default(), configFromContext(context.Background()))

	cfg := config.Default()
	cfg.Render.DPI = 300
	ctx := withConfig(context.Background(), cfg)
	assert.Equal(t, 300.0, configFromContext(ctx).Render.DPI)
}
