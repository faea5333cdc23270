package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	zl, err := New(Options{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	NewZapAdapter(zl).Info("signup accepted", map[string]interface{}{"activity": "Chess Club"})
	_ = zl.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"signup accepted"`)
	assert.Contains(t, string(data), `"activity":"Chess Club"`)
}

func TestZapWrapper_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithFields(map[string]interface{}{"component": "registry"}).
		WithError(errors.New("boom")).
		Warn("operation failed", map[string]interface{}{"cause": errors.New("inner")})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "operation failed", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "registry", ctx["component"])
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, "inner", ctx["cause"])
}
