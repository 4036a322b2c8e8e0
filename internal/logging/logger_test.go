package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/pulse/internal/config"
)

func TestNew_WritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulse.log")

	logger, closeFn, err := New(config.LogConfig{
		Level:      "info",
		Format:     "json",
		File:       path,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})
	require.NoError(t, err)

	logger.Info("reminder sent")
	logger.Debug("suppressed below info")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"reminder sent"`)
	require.NotContains(t, string(data), "suppressed below info")
}

func TestNew_RejectsBadLevel(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "loud", Format: "console"})
	require.Error(t, err)
}

func TestNew_RejectsBadFormat(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "info", Format: "xml"})
	require.Error(t, err)
}
